package usersvc

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gateway-services/internal/rpc"
)

// Handler binds the user service operations to their message patterns.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates the message handler for the user service.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register installs the get_users and create_user patterns on the server.
func (h *Handler) Register(srv *rpc.Server) {
	srv.Handle("get_users", h.getUsers)
	srv.Handle("create_user", h.createUser)
}

func (h *Handler) getUsers(ctx context.Context, _ json.RawMessage) (any, error) {
	h.log.Info("Service A: Received request to get users")
	return h.svc.ListUsers(ctx)
}

func (h *Handler) createUser(ctx context.Context, data json.RawMessage) (any, error) {
	var req CreateUserRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "create_user: malformed payload: %v", err)
	}
	h.log.Info(fmt.Sprintf("Service A: Received request to create user - %s", req.Name))
	return h.svc.CreateUser(ctx, req)
}
