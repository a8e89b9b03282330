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
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"gateway-services/internal/adapter/repository/postgres"
	"gateway-services/internal/config"
	"gateway-services/internal/rpc"
	"gateway-services/internal/usersvc"
	"gateway-services/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("user service exited with error: %v", err)
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
		ServiceName:    "user-service",
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    environment(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer syncLogger(l)

	db, err := gorm.Open(pgdriver.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer closeDB(db, l)

	repo := postgres.NewUserRepo(db, l)
	if err := repo.Migrate(); err != nil {
		return fmt.Errorf("failed to prepare users table: %w", err)
	}

	svc := usersvc.New(repo, l)

	srv := rpc.NewServer(usersvc.ServiceName, l,
		grpc.ChainUnaryInterceptor(logger.RequestIDInterceptor()),
	)
	usersvc.NewHandler(svc, l).Register(srv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", ":"+cfg.UserService.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on :%s: %w", cfg.UserService.Port, err)
	}

	l.Info("user service starting", zap.String("port", cfg.UserService.Port))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		l.Info("user service shutting down")
		srv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func closeDB(db *gorm.DB, l *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		l.Error("failed to get underlying sql.DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		l.Error("failed to close database", zap.Error(err))
	}
}

func syncLogger(l *zap.Logger) {
	// Sync errors on stdout/stderr are expected and harmless
	_ = l.Sync()
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
