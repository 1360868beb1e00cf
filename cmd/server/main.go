package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"membership-service/internal/app"
	"membership-service/internal/config"
	"membership-service/internal/logger"
	"membership-service/internal/telemetry"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	slogLogger := logger.NewWithServiceContext(app.ServiceName, app.Version)

	// Set as default logger so slog.Info() uses the same format
	slog.SetDefault(slogLogger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	shutdownTelemetry, err := telemetry.Init(context.Background(), cfg.OTel.Endpoint, app.ServiceName, app.Version, slogLogger)
	if err != nil {
		slogLogger.Warn("failed to initialize telemetry", "error", err)
	}

	application, err := app.New(cfg, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Shutdown(ctx); err != nil {
		slogLogger.Error("server forced to shutdown", "error", err)
	}
	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(ctx); err != nil {
			slogLogger.Warn("failed to flush telemetry", "error", err)
		}
	}

	slogLogger.Info("server exited gracefully")
}
