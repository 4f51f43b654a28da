// Package main is the entry point for the API server.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tcw1/internal/app"
	"tcw1/internal/config"
	"tcw1/internal/logger"
	"tcw1/internal/metrics"
	"tcw1/internal/repositories"
	"tcw1/internal/routes"
	"tcw1/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 15 * time.Second

// main performs the following setup:
// - Loads configuration and the logger
// - Connects PostgreSQL and Redis
// - Builds services, handlers and routes
// - Resumes pending confirmations and starts the scheduler
// - Serves until SIGINT/SIGTERM, then shuts down gracefully
func main() {
	config.LoadEnv()
	cfg := config.Load()

	if _, err := logger.Init(config.IsProduction()); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := repositories.InitDB(cfg); err != nil {
		logger.Log.Fatalw("❌ Database initialization failed", "error", err)
	}
	defer repositories.Close()

	collector := metrics.New()
	services, err := app.NewServices(cfg, repositories.DB, repositories.CacheService, collector)
	if err != nil {
		logger.Log.Fatalw("❌ Service initialization failed", "error", err)
	}

	resumeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := services.Blockchain.ResumePending(resumeCtx); err != nil {
		logger.Log.Warnw("⚠️ Failed to resume pending transactions", "error", err)
	} else if n > 0 {
		logger.Log.Infow("⏳ Resumed pending transactions", "count", n)
	}
	cancel()

	sched, err := services.Scheduler(cfg, collector)
	if err != nil {
		logger.Log.Fatalw("❌ Scheduler setup failed", "error", err)
	}
	sched.Start()

	server := fiber.New(fiber.Config{
		AppName:      "TCW1 API " + app.Version,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: errorHandler,
	})

	routes.SetupMiddleware(server, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     collector,
		AccessLog:   cfg.AccessLog,
	})
	routes.SetupRoutes(server, services.Handlers(cfg, repositories.DB, repositories.CacheService), services.AuthMiddleware())

	go func() {
		logger.Log.Infow("🚀 Server listening", "port", cfg.Port)
		if err := server.Listen(":" + cfg.Port); err != nil {
			logger.Log.Errorw("Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("🛑 Shutting down")

	ctx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.ShutdownWithContext(ctx); err != nil {
		logger.Log.Warnw("⚠️ HTTP shutdown incomplete", "error", err)
	}
	if err := sched.Stop(ctx); err != nil {
		logger.Log.Warnw("⚠️ Scheduler shutdown incomplete", "error", err)
	}
	if err := services.Blockchain.Shutdown(ctx); err != nil {
		logger.Log.Warnw("⚠️ Pending confirmations interrupted", "error", err)
	}
}

// errorHandler renders errors that escape handlers, such as unknown routes
// and body size violations, in the response envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return response.Error(c, fe.Code, fe.Message)
	}
	logger.Log.Errorw("Unhandled error", "path", c.Path(), "error", err)
	return response.ServerError(c, "internal server error")
}
