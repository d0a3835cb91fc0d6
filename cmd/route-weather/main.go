package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	redisv9 "github.com/redis/go-redis/v9"

	httpapi "github.com/akozyrev/route-weather/internal/api/http"
	"github.com/akozyrev/route-weather/internal/config"
	"github.com/akozyrev/route-weather/internal/conversation"
	"github.com/akozyrev/route-weather/internal/scheduler"
	"github.com/akozyrev/route-weather/internal/store"
	"github.com/akozyrev/route-weather/internal/weather"
	"github.com/akozyrev/route-weather/internal/weather/providers"
)

func main() {
	zlog, err := config.NewLogger()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatalw("failed to load config", "error", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewAccuWeatherProvider(
		httpClient, cfg.AccuWeatherAPIKey, cfg.AccuWeatherBaseURL, cfg.AccuWeatherLang)

	datasetStore, closeStore := buildStore(cfg)
	defer closeStore()

	// Core service orchestrating the provider and the dataset store.
	service := weather.NewService(provider, datasetStore, cfg.HTTPTimeout, zlog)

	// Conversation layer for the chat surface; sessions are an explicit
	// dependency so nothing holds dialogue state globally.
	sessions := conversation.NewSessions()
	conv := conversation.NewManager(sessions, service, cfg.DashboardURL, zlog)

	// Background refresh of the last aggregated route.
	sched := scheduler.New(service, cfg.RefreshInterval, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "route-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "route-weather",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, conv)

	// Start server with graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Errorw("error during shutdown", "error", err)
	}
}

// buildStore picks the dataset backend from config. The returned func releases
// backend resources on shutdown.
func buildStore(cfg *config.AppConfig) (weather.DatasetStore, func()) {
	switch cfg.DatasetBackend {
	case config.BackendRedis:
		client := redisv9.NewClient(&redisv9.Options{Addr: cfg.RedisAddr})
		return store.NewRedisStore(client, cfg.DatasetRedisKey), func() { _ = client.Close() }
	case config.BackendMemory:
		return store.NewMemoryStore(), func() {}
	default:
		return store.NewFileStore(cfg.DatasetFile), func() {}
	}
}
