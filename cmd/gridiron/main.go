package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/fortuna/gridiron/internal/api/rest"
	"github.com/fortuna/gridiron/internal/api/websocket"
	"github.com/fortuna/gridiron/internal/app"
	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/logging"
	"github.com/fortuna/gridiron/internal/scheduler"
)

const (
	serviceName    = "gridiron"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet; config decides its level and format.
		logging.New("info", "json").Fatal("invalid configuration", zap.Error(err))
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With(zap.String("service", serviceName))
	defer func() { _ = logger.Sync() }()

	logger.Info("starting", zap.String("version", serviceVersion))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise", zap.Error(err))
	}
	defer a.Close()

	go a.Hub.Run(ctx)

	if cfg.EnableWarmer {
		warmer := scheduler.NewWarmer(a.Games, a.Purger, scheduler.Config{Interval: cfg.WarmInterval}, logger)
		go warmer.Run(ctx)
	}

	handler := rest.NewHandler(a.Games, a.Teams, a.Parlays, a.HealthCheck, a.Telemetry, logger)
	restServer := rest.NewServer(cfg.RESTPort, handler, rest.Options{
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		RateLimitRPS:     cfg.APIRateLimitRPS,
		Slates:           websocket.NewHandler(ctx, a.Hub, logger),
		Logger:           logger,
	})
	go func() {
		logger.Info("REST API listening", zap.String("port", cfg.RESTPort))
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("REST server error", zap.Error(err))
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("REST server shutdown error", zap.Error(err))
	}

	logger.Info("stopped")
}
