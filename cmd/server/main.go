package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/runsapi/runs-api/internal/config"
	"github.com/runsapi/runs-api/internal/pkg/telemetry"
	"github.com/runsapi/runs-api/internal/server"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		os.Exit(1)
	}
}

// run serves until a shutdown signal or a server failure. Errors are
// logged and returned only after the deferred telemetry flush has run.
func run(ctx context.Context, cfg *config.Config) error {
	// Logger, crash reporting and tracing
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize telemetry: %v\n", err)
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		tel.Close(closeCtx)
	}()
	defer tel.RecoverPanic()

	logger := tel.Logger

	// Initialize dependencies
	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", zap.Error(err))
		return err
	}
	defer deps.Close()

	app := server.New(server.Options{
		Config:        cfg,
		Logger:        logger,
		Tracer:        tel.Tracer(),
		SentryEnabled: tel.SentryEnabled,
		Runs:          deps.RunsHandler,
		Health:        deps.HealthHandler,
	})

	// Start server
	serverErr := make(chan error, 1)
	go func() {
		addr := cfg.Server.Addr()
		logger.Info("starting server", zap.String("addr", addr))
		serverErr <- app.Listen(addr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("shutting down server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server failed", zap.Error(err))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("server stopped")
	return nil
}
