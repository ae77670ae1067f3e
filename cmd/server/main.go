// Package main is the entry point of the wallet API server.
// It wires the ledger services, mounts the HTTP routes and serves them
// until SIGINT or SIGTERM.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"walletd/internal/bootstrap"
	"walletd/internal/config"
	applogger "walletd/internal/logger"
	"walletd/internal/routes"
	"walletd/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	_, syncLogger := applogger.Initialize()
	defer syncLogger()

	deps, err := bootstrap.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			zap.L().Warn("failed to release resources", zap.Error(err))
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      "walletd",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	if cfg.RateLimit > 0 {
		app.Use("/api", limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return response.Error(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
			},
		}))
	}

	routes.SetupRoutes(app, routes.Dependencies{
		WalletService:  deps.WalletService,
		HistoryService: deps.HistoryService,
		Queue:          deps.Queue,
		HealthChecks:   deps.HealthChecks(),
		JWTSecret:      cfg.JWTSecret,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down api server")
		if err := app.ShutdownWithTimeout(bootstrap.ShutdownTimeout); err != nil {
			zap.L().Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zap.L().Info("api server listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}
