package logger

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
)

// RequestIDInterceptor is a server interceptor that tags every inbound
// request context with a fresh request ID.
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx = context.WithValue(ctx, RequestIDKey, uuid.New().String())
		return handler(ctx, req)
	}
}
