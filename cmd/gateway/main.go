package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gateway-services/internal/config"
	"gateway-services/internal/gateway"
	"gateway-services/internal/rpc"
	"gateway-services/internal/todosvc"
	"gateway-services/internal/usersvc"
	"gateway-services/pkg/logger"
	redisclient "gateway-services/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("gateway exited with error: %v", err)
	}
}

func run() error {
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     cfg.Logger.OutputPath,
		EnableSampling: cfg.Logger.EnableSampling,
		ServiceName:    "api-gateway",
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    environment(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	serviceA, err := rpc.Dial(cfg.UserService.Addr(), usersvc.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to dial user service: %w", err)
	}
	defer serviceA.Close()

	serviceB, err := rpc.Dial(cfg.TodoService.Addr(), todosvc.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to dial todo service: %w", err)
	}
	defer serviceB.Close()

	var rdb *redisclient.Client
	if cfg.RateLimit.Enabled {
		rdb, err = redisclient.NewClient(redisclient.Config{
			Host:        cfg.Redis.Host,
			Port:        cfg.Redis.Port,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			PoolSize:    cfg.Redis.PoolSize,
			MinIdleConn: cfg.Redis.MinIdleConn,
		}, l)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer rdb.Close()
	}

	if environment() == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	timeout := time.Duration(cfg.Gateway.RequestTimeoutSeconds) * time.Second
	h := gateway.NewHandler(serviceA, serviceB, l, timeout)
	router := gateway.SetupRouter(h, cfg.RateLimit, rdb, l)

	srv := &http.Server{
		Addr:              ":" + cfg.Gateway.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l.Info("gateway starting",
		zap.String("port", cfg.Gateway.HTTPPort),
		zap.String("user_service", cfg.UserService.Addr()),
		zap.String("todo_service", cfg.TodoService.Addr()),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		l.Info("gateway shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.Gateway.ShutdownTimeoutSec)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}

func environment() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return "development"
}
