package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// HandlerFunc handles one message pattern. It receives the raw request
// payload and returns the reply value, which is marshaled back as JSON.
// A returned error is propagated to the caller with its message intact.
type HandlerFunc func(ctx context.Context, data json.RawMessage) (any, error)

// Server dispatches incoming requests to handlers by message pattern.
// The pattern table is materialized as a grpc.ServiceDesc, so the transport
// loop, connection handling, and error propagation are gRPC's.
type Server struct {
	service string
	log     *zap.Logger
	grpc    *grpc.Server
	methods []grpc.MethodDesc
}

// NewServer creates a server that registers handlers under the given service
// name. Additional grpc.ServerOptions (interceptors etc.) are passed through.
func NewServer(service string, log *zap.Logger, opts ...grpc.ServerOption) *Server {
	return &Server{
		service: service,
		log:     log,
		grpc:    grpc.NewServer(opts...),
	}
}

// Handle registers a handler for a message pattern. All patterns must be
// registered before Serve is called.
func (s *Server) Handle(pattern string, h HandlerFunc) {
	s.methods = append(s.methods, s.methodDesc(pattern, h))
}

// Serve registers the accumulated pattern table and blocks serving the
// listener until GracefulStop or Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	desc := &grpc.ServiceDesc{
		ServiceName: s.service,
		HandlerType: (*any)(nil),
		Methods:     s.methods,
		Streams:     []grpc.StreamDesc{},
	}
	s.grpc.RegisterService(desc, s)

	s.log.Info("message server listening",
		zap.String("rpc_service", s.service),
		zap.String("address", lis.Addr().String()),
		zap.Int("patterns", len(s.methods)),
	)
	return s.grpc.Serve(lis)
}

// GracefulStop stops the server after in-flight requests complete.
func (s *Server) GracefulStop() { s.grpc.GracefulStop() }

// Stop stops the server immediately.
func (s *Server) Stop() { s.grpc.Stop() }

func (s *Server) methodDesc(pattern string, h HandlerFunc) grpc.MethodDesc {
	fullMethod := fmt.Sprintf("/%s/%s", s.service, pattern)
	return grpc.MethodDesc{
		MethodName: pattern,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			var payload json.RawMessage
			if err := dec(&payload); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "decode request: %v", err)
			}
			if interceptor == nil {
				return h(ctx, payload)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			return interceptor(ctx, payload, info, func(ctx context.Context, req any) (any, error) {
				return h(ctx, req.(json.RawMessage))
			})
		},
	}
}
