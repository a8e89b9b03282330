package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"gateway-services/internal/config"
	"gateway-services/internal/rpc"
	"gateway-services/internal/todosvc"
	"gateway-services/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("todo service exited with error: %v", err)
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
		ServiceName:    "todo-service",
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    environment(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	svc := todosvc.New(l)

	srv := rpc.NewServer(todosvc.ServiceName, l,
		grpc.ChainUnaryInterceptor(logger.RequestIDInterceptor()),
	)
	todosvc.NewHandler(svc, l).Register(srv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", ":"+cfg.TodoService.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on :%s: %w", cfg.TodoService.Port, err)
	}

	l.Info("todo service starting", zap.String("port", cfg.TodoService.Port))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		l.Info("todo service shutting down")
		srv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
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
