// Package main runs the transaction worker: a pool of consumers executing
// queued withdrawals and transfers, plus the scheduler that promotes delayed
// retries and reconciles balances against the ledger.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"walletd/internal/bootstrap"
	"walletd/internal/config"
	applogger "walletd/internal/logger"
	"walletd/internal/services/notification"
	"walletd/internal/workers"

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

	outcomes := notification.NewService(notification.NewKafkaWriter(cfg.Kafka))
	defer func() {
		if err := outcomes.Close(); err != nil {
			zap.L().Warn("failed to close outcome writer", zap.Error(err))
		}
	}()

	scheduler, err := workers.NewScheduler(deps.Queue, deps.Wallets, deps.WalletService, deps.Metrics, workers.SchedulerConfig{
		PromoteInterval:   cfg.Queue.PromoteInterval,
		ReconcileInterval: cfg.Worker.ReconcileInterval,
	})
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			zap.L().Warn("scheduler shutdown failed", zap.Error(err))
		}
	}()

	pool := workers.NewPool(deps.Queue, deps.WalletService, outcomes, deps.Metrics, workers.PoolConfig{
		Concurrency: cfg.Worker.Concurrency,
		PollTimeout: cfg.Queue.PollTimeout,
		BackoffBase: cfg.Queue.BackoffBase,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zap.L().Info("worker started",
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("queue", cfg.Queue.Name),
		zap.Bool("kafka_outcomes", len(cfg.Kafka.Brokers) > 0))

	if err := pool.Run(ctx); err != nil {
		zap.L().Error("worker pool stopped", zap.Error(err))
	}
	zap.L().Info("worker stopped")
}
