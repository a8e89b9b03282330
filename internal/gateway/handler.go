// Package gateway implements the HTTP-facing process. Every route is exactly
// one request/reply exchange with a backend service; the reply payload is
// relayed to the HTTP caller unchanged, and a backend failure is surfaced
// with its original message.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gateway-services/internal/rpc"
)

// Handler translates gateway HTTP routes into backend message exchanges.
type Handler struct {
	serviceA rpc.Requester // user service
	serviceB rpc.Requester // todo service
	log      *zap.Logger
	timeout  time.Duration // zero means unbounded wait
}

// NewHandler creates the gateway handler. A zero timeout preserves the
// unbounded wait on backend calls.
func NewHandler(serviceA, serviceB rpc.Requester, log *zap.Logger, timeout time.Duration) *Handler {
	return &Handler{serviceA: serviceA, serviceB: serviceB, log: log, timeout: timeout}
}

// CreateUserBody is the request body of POST /service-a/users.
type CreateUserBody struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Age   *int   `json:"age,omitempty"`
}

// CreateTodoBody is the request body of POST /service-b/todos.
type CreateTodoBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type deleteTodoMessage struct {
	ID int64 `json:"id"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// GetUsers handles GET /service-a/users.
func (h *Handler) GetUsers(c *gin.Context) {
	h.log.Info("API Gateway: Fetching users from Service A")

	ctx, cancel := h.callContext(c)
	defer cancel()

	var users []json.RawMessage
	if err := h.serviceA.Send(ctx, "get_users", struct{}{}, &users); err != nil {
		h.log.Error(fmt.Sprintf("API Gateway: Error fetching users from Service A - %s", status.Convert(err).Message()))
		h.relayError(c, err)
		return
	}

	h.log.Info(fmt.Sprintf("API Gateway: Successfully fetched %d users from Service A", len(users)))
	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /service-a/users.
func (h *Handler) CreateUser(c *gin.Context) {
	var body CreateUserBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Warn("API Gateway: Invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	h.log.Info(fmt.Sprintf("API Gateway: Creating user in Service A - %s", body.Name))

	ctx, cancel := h.callContext(c)
	defer cancel()

	var created json.RawMessage
	if err := h.serviceA.Send(ctx, "create_user", body, &created); err != nil {
		h.log.Error(fmt.Sprintf("API Gateway: Error creating user in Service A - %s", status.Convert(err).Message()))
		h.relayError(c, err)
		return
	}

	h.log.Info(fmt.Sprintf("API Gateway: Successfully created user in Service A - %s", body.Name))
	c.Data(http.StatusCreated, "application/json; charset=utf-8", created)
}

// GetTodos handles GET /service-b/todos.
func (h *Handler) GetTodos(c *gin.Context) {
	h.log.Info("API Gateway: Fetching all todos from Service B")

	ctx, cancel := h.callContext(c)
	defer cancel()

	var todos []json.RawMessage
	if err := h.serviceB.Send(ctx, "get_all_todos", struct{}{}, &todos); err != nil {
		h.log.Error(fmt.Sprintf("API Gateway: Error fetching todos from Service B - %s", status.Convert(err).Message()))
		h.relayError(c, err)
		return
	}

	h.log.Info(fmt.Sprintf("API Gateway: Successfully fetched %d todos from Service B", len(todos)))
	c.JSON(http.StatusOK, todos)
}

// CreateTodo handles POST /service-b/todos.
func (h *Handler) CreateTodo(c *gin.Context) {
	var body CreateTodoBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.log.Warn("API Gateway: Invalid create todo request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	h.log.Info(fmt.Sprintf("API Gateway: Creating todo in Service B - %s", body.Title))

	ctx, cancel := h.callContext(c)
	defer cancel()

	var created json.RawMessage
	if err := h.serviceB.Send(ctx, "create_todo", body, &created); err != nil {
		h.log.Error(fmt.Sprintf("API Gateway: Error creating todo in Service B - %s", status.Convert(err).Message()))
		h.relayError(c, err)
		return
	}

	h.log.Info(fmt.Sprintf("API Gateway: Successfully created todo in Service B - %s", body.Title))
	c.Data(http.StatusCreated, "application/json; charset=utf-8", created)
}

// DeleteTodo handles DELETE /service-b/todos/:id.
func (h *Handler) DeleteTodo(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warn("API Gateway: Invalid todo ID", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Todo ID must be a valid number"})
		return
	}

	h.log.Info(fmt.Sprintf("API Gateway: Deleting todo with ID %d from Service B", id))

	ctx, cancel := h.callContext(c)
	defer cancel()

	var result json.RawMessage
	if err := h.serviceB.Send(ctx, "delete_todo", deleteTodoMessage{ID: id}, &result); err != nil {
		h.log.Error(fmt.Sprintf("API Gateway: Error deleting todo %d from Service B - %s", id, status.Convert(err).Message()))
		h.relayError(c, err)
		return
	}

	h.log.Info(fmt.Sprintf("API Gateway: Successfully deleted todo with ID %d from Service B", id))
	c.Data(http.StatusOK, "application/json; charset=utf-8", result)
}

// callContext derives the context a backend call runs under.
func (h *Handler) callContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		return context.WithTimeout(ctx, h.timeout)
	}
	return ctx, func() {}
}

// relayError maps a backend failure onto an HTTP response carrying the
// original failure message.
func (h *Handler) relayError(c *gin.Context, err error) {
	st := status.Convert(err)
	c.JSON(httpStatusFor(st.Code()), ErrorResponse{
		Error:   "upstream_error",
		Message: st.Message(),
	})
}

func httpStatusFor(code codes.Code) int {
	switch code {
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable:
		return http.StatusServiceUnavailable
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
