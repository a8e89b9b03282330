package todosvc

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"gateway-services/internal/domain/todo"
)

func newTestHandler(t *testing.T) *Handler {
	log := zaptest.NewLogger(t)
	return NewHandler(New(log), log)
}

func TestHandler_GetAllTodos(t *testing.T) {
	h := newTestHandler(t)

	res, err := h.getAllTodos(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)

	todos, ok := res.([]todo.Todo)
	require.True(t, ok)
	assert.Len(t, todos, 5)
}

func TestHandler_GetTodoByID_Found(t *testing.T) {
	h := newTestHandler(t)

	res, err := h.getTodoByID(context.Background(), json.RawMessage(`{"id":2}`))
	require.NoError(t, err)

	found, ok := res.(*todo.Todo)
	require.True(t, ok)
	require.NotNil(t, found)
	assert.Equal(t, "Read a book", found.Title)
}

func TestHandler_GetTodoByID_NotFoundRepliesNull(t *testing.T) {
	h := newTestHandler(t)

	res, err := h.getTodoByID(context.Background(), json.RawMessage(`{"id":999}`))
	require.NoError(t, err)

	found, ok := res.(*todo.Todo)
	require.True(t, ok)
	assert.Nil(t, found)

	// a nil pointer reply marshals to JSON null on the wire
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestHandler_CreateTodo(t *testing.T) {
	h := newTestHandler(t)

	res, err := h.createTodo(context.Background(), json.RawMessage(
		`{"title":"New Task","description":"write it down","completed":false}`))
	require.NoError(t, err)

	created, ok := res.(todo.Todo)
	require.True(t, ok)
	assert.Equal(t, int64(6), created.ID)
	assert.Equal(t, "New Task", created.Title)
	assert.False(t, created.Completed)
}

func TestHandler_DeleteTodo(t *testing.T) {
	h := newTestHandler(t)

	res, err := h.deleteTodo(context.Background(), json.RawMessage(`{"id":1}`))
	require.NoError(t, err)
	assert.Equal(t, DeleteTodoResponse{Success: true, Message: "Todo deleted successfully"}, res)

	res, err = h.deleteTodo(context.Background(), json.RawMessage(`{"id":1}`))
	require.NoError(t, err)
	assert.Equal(t, DeleteTodoResponse{Success: false, Message: "Todo not found"}, res)
}

func TestHandler_MalformedPayload(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.deleteTodo(context.Background(), json.RawMessage(`{"id":"one"}`))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
