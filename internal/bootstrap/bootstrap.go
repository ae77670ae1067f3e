// Package bootstrap wires the stores and services shared by the API server,
// the worker and the seeding tool.
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"walletd/internal/config"
	"walletd/internal/handlers"
	"walletd/internal/metrics"
	"walletd/internal/queue"
	"walletd/internal/repositories"
	"walletd/internal/repositories/cache"
	"walletd/internal/services/transaction"
	"walletd/internal/services/wallet"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds every long-lived dependency of a process.
type Container struct {
	Config  *config.Config
	DB      *gorm.DB
	Redis   *redis.Client
	Store   *cache.CacheService
	Cache   *cache.WalletCache
	Queue   *queue.RedisQueue
	Wallets repositories.WalletRepository
	Metrics *metrics.Collector

	WalletService  wallet.Service
	HistoryService transaction.Service
}

// New opens the database, migrates the schema and connects to Redis.
// Resources opened before a failure are released.
func New(cfg *config.Config) (*Container, error) {
	db, err := repositories.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db); err != nil {
		_ = repositories.Close(db)
		return nil, err
	}

	client := cache.NewRedisClient(cfg.Redis)
	store := cache.NewCacheService(client, cfg.Cache.WalletTTL)
	walletCache := cache.NewWalletCache(store, cfg.Cache.WalletTTL, cfg.Cache.HistoryTTL)

	jobs := queue.NewRedisQueue(client, queue.Options{
		Name:        cfg.Queue.Name,
		MaxAttempts: cfg.Queue.MaxAttempts,
		Retention:   cfg.Queue.Retention,
	})

	collector := metrics.New()
	wallets := repositories.NewWalletRepository(db)
	walletService := wallet.NewService(wallets, walletCache, jobs, wallet.WalletConfig{}, collector)
	historyService := transaction.NewService(repositories.NewTransactionRepository(db), walletCache, collector)

	zap.L().Info("dependencies initialized",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("redis", fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)),
		zap.String("queue", cfg.Queue.Name))

	return &Container{
		Config:         cfg,
		DB:             db,
		Redis:          client,
		Store:          store,
		Cache:          walletCache,
		Queue:          jobs,
		Wallets:        wallets,
		Metrics:        collector,
		WalletService:  walletService,
		HistoryService: historyService,
	}, nil
}

// HealthChecks lists the stores reported by /health.
func (c *Container) HealthChecks() map[string]handlers.Pinger {
	return map[string]handlers.Pinger{
		"database": repositories.NewDBHealth(c.DB),
		"redis":    c.Store,
	}
}

// Close releases the Redis pool and the database pool.
func (c *Container) Close() error {
	var errs []error
	if err := c.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
	}
	if err := repositories.Close(c.DB); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	return errors.Join(errs...)
}

// ShutdownTimeout bounds graceful shutdown of both binaries.
const ShutdownTimeout = 15 * time.Second
