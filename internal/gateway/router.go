package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gateway-services/internal/config"
	"gateway-services/internal/gateway/middleware"
	redisclient "gateway-services/pkg/redis"
)

// SetupRouter configures the Gin router with all routes and middleware.
// redisClient may be nil when rate limiting is disabled.
func SetupRouter(h *Handler, rl config.RateLimitConfig, redisClient *redisclient.Client, log *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	if rl.Enabled && redisClient != nil {
		router.Use(middleware.RateLimiter(rl, redisClient.Client, log))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "api-gateway",
		})
	})

	serviceA := router.Group("/service-a")
	{
		serviceA.GET("/users", h.GetUsers)
		serviceA.POST("/users", h.CreateUser)
	}

	serviceB := router.Group("/service-b")
	{
		serviceB.GET("/todos", h.GetTodos)
		serviceB.POST("/todos", h.CreateTodo)
		serviceB.DELETE("/todos/:id", h.DeleteTodo)
	}

	return router
}
