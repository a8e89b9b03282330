// Package integration exercises the full path: HTTP request into the
// gateway, one request/reply exchange with a real backend service, reply
// relayed to the HTTP caller. Transport runs over in-memory bufconn
// listeners instead of TCP ports.
package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	"gorm.io/gorm"

	"gateway-services/internal/adapter/repository/postgres"
	"gateway-services/internal/config"
	"gateway-services/internal/domain/user"
	"gateway-services/internal/gateway"
	"gateway-services/internal/rpc"
	"gateway-services/internal/todosvc"
	"gateway-services/internal/usersvc"
)

const bufSize = 1024 * 1024

func startBackend(t *testing.T, service string, register func(*rpc.Server)) *rpc.Client {
	lis := bufconn.Listen(bufSize)

	srv := rpc.NewServer(service, zaptest.NewLogger(t))
	register(srv)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := rpc.Dial("passthrough:///bufnet", service,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func startUserBackend(t *testing.T) *rpc.Client {
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	repo := postgres.NewUserRepo(db, log)
	require.NoError(t, repo.Migrate())

	svc := usersvc.New(repo, log)
	return startBackend(t, usersvc.ServiceName, func(srv *rpc.Server) {
		usersvc.NewHandler(svc, log).Register(srv)
	})
}

func startTodoBackend(t *testing.T) *rpc.Client {
	log := zaptest.NewLogger(t)
	svc := todosvc.New(log)
	return startBackend(t, todosvc.ServiceName, func(srv *rpc.Server) {
		todosvc.NewHandler(svc, log).Register(srv)
	})
}

// brokenRepo simulates a user store outage.
type brokenRepo struct{}

func (brokenRepo) FindAll(context.Context) ([]user.User, error) {
	return nil, errors.New("user store offline")
}

func (brokenRepo) Insert(context.Context, user.User) (user.User, error) {
	return user.User{}, errors.New("user store offline")
}

func startBrokenUserBackend(t *testing.T) *rpc.Client {
	log := zaptest.NewLogger(t)
	svc := usersvc.New(brokenRepo{}, log)
	return startBackend(t, usersvc.ServiceName, func(srv *rpc.Server) {
		usersvc.NewHandler(svc, log).Register(srv)
	})
}

func setupGateway(t *testing.T, serviceA, serviceB rpc.Requester, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := gateway.NewHandler(serviceA, serviceB, log, 0)
	return gateway.SetupRouter(h, config.RateLimitConfig{}, nil, log)
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age"`
}

type todoResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func TestUserLifecycle(t *testing.T) {
	router := setupGateway(t, startUserBackend(t), startTodoBackend(t), zaptest.NewLogger(t))

	w := do(router, http.MethodGet, "/service-a/users", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	w = do(router, http.MethodPost, "/service-a/users",
		`{"name":"Jane Doe","email":"jane@example.com","age":30}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Jane Doe", created.Name)
	assert.Equal(t, "jane@example.com", created.Email)
	require.NotNil(t, created.Age)
	assert.Equal(t, 30, *created.Age)

	w = do(router, http.MethodGet, "/service-a/users", "")
	require.Equal(t, http.StatusOK, w.Code)

	var users []userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, created.ID, users[0].ID)
}

func TestUserDuplicateEmailsAccepted(t *testing.T) {
	router := setupGateway(t, startUserBackend(t), startTodoBackend(t), zaptest.NewLogger(t))

	body := `{"name":"Jane Doe","email":"jane@example.com"}`
	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/service-a/users", body).Code)
	require.Equal(t, http.StatusCreated, do(router, http.MethodPost, "/service-a/users", body).Code)

	w := do(router, http.MethodGet, "/service-a/users", "")
	var users []userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &users))
	assert.Len(t, users, 2)
}

func TestTodoLifecycle(t *testing.T) {
	router := setupGateway(t, startUserBackend(t), startTodoBackend(t), zaptest.NewLogger(t))

	w := do(router, http.MethodGet, "/service-b/todos", "")
	require.Equal(t, http.StatusOK, w.Code)

	var todos []todoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos))
	require.Len(t, todos, 5)

	w = do(router, http.MethodPost, "/service-b/todos",
		`{"title":"New Task","description":"write the report","completed":false}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created todoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, int64(6), created.ID)
	assert.Equal(t, "New Task", created.Title)

	w = do(router, http.MethodGet, "/service-b/todos", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos))
	require.Len(t, todos, 6)

	w = do(router, http.MethodDelete, "/service-b/todos/6", "")
	require.Equal(t, http.StatusOK, w.Code)

	var deleted deleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.True(t, deleted.Success)
	assert.Equal(t, "Todo deleted successfully", deleted.Message)

	w = do(router, http.MethodGet, "/service-b/todos", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos))
	assert.Len(t, todos, 5)
}

func TestTodoDeleteMissing(t *testing.T) {
	router := setupGateway(t, startUserBackend(t), startTodoBackend(t), zaptest.NewLogger(t))

	w := do(router, http.MethodDelete, "/service-b/todos/999", "")
	require.Equal(t, http.StatusOK, w.Code)

	var deleted deleteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.False(t, deleted.Success)
	assert.Equal(t, "Todo not found", deleted.Message)

	var todos []todoResponse
	w = do(router, http.MethodGet, "/service-b/todos", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos))
	assert.Len(t, todos, 5)
}

func TestUserStoreFailureSurfacedAndLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	gwLog := zap.New(core)

	router := setupGateway(t, startBrokenUserBackend(t), startTodoBackend(t), gwLog)

	w := do(router, http.MethodPost, "/service-a/users",
		`{"name":"Jane Doe","email":"jane@example.com"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "user store offline")

	var found bool
	for _, entry := range logs.All() {
		if strings.Contains(entry.Message, "Error creating user in Service A - user store offline") {
			found = true
		}
	}
	assert.True(t, found, "gateway should log the backend failure with its message")
}
