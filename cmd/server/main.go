package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-app/internal/api"
	"github.com/bobby-s-dev/weather-app/internal/config"
	"github.com/bobby-s-dev/weather-app/internal/logging"
	"github.com/bobby-s-dev/weather-app/internal/metrics"
	"github.com/bobby-s-dev/weather-app/internal/scheduler"
	"github.com/bobby-s-dev/weather-app/internal/services"
)

func main() {
	// Bootstrap logger until the configured one is available
	bootstrap, _ := zap.NewProduction()
	zap.ReplaceGlobals(bootstrap)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := logging.New(cfg.Server.LogLevel, cfg.Server.Environment)
	if err != nil {
		bootstrap.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	logger.Info("Starting Weather Aggregator Service",
		zap.String("environment", cfg.Server.Environment))

	m := metrics.New()

	// Initialize aggregator
	aggregator, err := services.NewAggregator(cfg, logger, m)
	if err != nil {
		logger.Fatal("Failed to initialize aggregator", zap.Error(err))
	}
	if !aggregator.Available() {
		logger.Warn("OPENWEATHER_API_KEY not set, weather lookups will report unavailable")
	}

	sessions := services.NewSessionStore(aggregator, logger)

	// Initialize scheduler
	weatherScheduler := scheduler.NewScheduler(
		aggregator,
		sessions,
		cfg.Scheduler.DefaultCities,
		cfg.Scheduler.FetchInterval,
		cfg.Scheduler.SessionIdleTTL,
		logger,
	)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: api.ErrorHandler(logger),
	})

	// Setup handlers and routes
	handler := api.NewHandler(aggregator, sessions, weatherScheduler, cfg.Scheduler.DefaultCities, m, logger)
	api.SetupRoutes(app, handler, m.Handler(), logger)

	// Start scheduler
	if err := weatherScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))

		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop scheduler
	weatherScheduler.Stop()

	// Shutdown Fiber app
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	aggregator.Stop()

	logger.Info("Server stopped")
}
