package todosvc

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gateway-services/internal/rpc"
)

// CreateTodoRequest is the payload of the create_todo message.
type CreateTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// TodoIDRequest is the payload of the get_todo_by_id and delete_todo
// messages.
type TodoIDRequest struct {
	ID int64 `json:"id"`
}

// DeleteTodoResponse is the reply of the delete_todo message.
type DeleteTodoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler binds the todo service operations to their message patterns.
type Handler struct {
	svc *Service
	log *zap.Logger
}

// NewHandler creates the message handler for the todo service.
func NewHandler(svc *Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register installs the four todo patterns on the server.
func (h *Handler) Register(srv *rpc.Server) {
	srv.Handle("get_all_todos", h.getAllTodos)
	srv.Handle("get_todo_by_id", h.getTodoByID)
	srv.Handle("create_todo", h.createTodo)
	srv.Handle("delete_todo", h.deleteTodo)
}

func (h *Handler) getAllTodos(_ context.Context, _ json.RawMessage) (any, error) {
	h.log.Info("Service B: Received request to get all todos")
	return h.svc.GetAll(), nil
}

// getTodoByID replies with the todo, or JSON null when absent.
func (h *Handler) getTodoByID(_ context.Context, data json.RawMessage) (any, error) {
	var req TodoIDRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "get_todo_by_id: malformed payload: %v", err)
	}
	h.log.Info(fmt.Sprintf("Service B: Received request to get todo by ID %d", req.ID))
	return h.svc.GetByID(req.ID), nil
}

func (h *Handler) createTodo(_ context.Context, data json.RawMessage) (any, error) {
	var req CreateTodoRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "create_todo: malformed payload: %v", err)
	}
	h.log.Info(fmt.Sprintf("Service B: Received request to create todo - %s", req.Title))
	return h.svc.Create(req.Title, req.Description, req.Completed), nil
}

func (h *Handler) deleteTodo(_ context.Context, data json.RawMessage) (any, error) {
	var req TodoIDRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "delete_todo: malformed payload: %v", err)
	}
	h.log.Info(fmt.Sprintf("Service B: Received request to delete todo with ID %d", req.ID))

	success := h.svc.Delete(req.ID)
	msg := "Todo not found"
	if success {
		msg = "Todo deleted successfully"
	}
	return DeleteTodoResponse{Success: success, Message: msg}, nil
}
