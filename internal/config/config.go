package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable (e.g. "90s", "2h")
// or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// GetListEnv splits a comma separated environment variable.
func GetListEnv(key string) []string {
	raw := GetEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite". sqlite is meant for local runs and
	// tests; it serializes all writers on one connection.
	Driver          string
	Path            string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN builds a key/value postgres connection string.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
}

type QueueConfig struct {
	Name            string
	MaxAttempts     int
	BackoffBase     time.Duration
	PollTimeout     time.Duration
	PromoteInterval time.Duration
	Retention       time.Duration
}

type WorkerConfig struct {
	Concurrency       int
	ReconcileInterval time.Duration
}

type CacheConfig struct {
	WalletTTL  time.Duration
	HistoryTTL time.Duration
}

type KafkaConfig struct {
	Brokers      []string
	OutcomeTopic string
}

// Config is the full runtime configuration of both binaries.
type Config struct {
	Port      string
	JWTSecret string
	// CORSOrigins is passed verbatim to the CORS middleware.
	CORSOrigins string
	// RateLimit is the number of API requests one client IP may make per
	// minute. Zero disables the limiter.
	RateLimit int
	Database  DatabaseConfig
	Redis     RedisConfig
	Queue     QueueConfig
	Worker    WorkerConfig
	Cache     CacheConfig
	Kafka     KafkaConfig
}

// Load assembles a Config from the environment.
func Load() *Config {
	return &Config{
		Port:        GetEnv("PORT", "3000"),
		JWTSecret:   GetEnv("JWT_SECRET", "walletd-dev-secret"),
		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		RateLimit:   GetIntEnv("RATE_LIMIT_PER_MINUTE", 120),
		Database: DatabaseConfig{
			Driver:          GetEnv("DB_DRIVER", "postgres"),
			Path:            GetEnv("DB_PATH", "walletd.db"),
			Host:            GetEnv("DB_HOST", "localhost"),
			Port:            GetEnv("DB_PORT", "5432"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "walletd"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:         GetEnv("REDIS_HOST", "localhost"),
			Port:         GetEnv("REDIS_PORT", "6379"),
			Password:     GetEnv("REDIS_PASSWORD", ""),
			DB:           GetIntEnv("REDIS_DB", 0),
			PoolSize:     GetIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: GetIntEnv("REDIS_MIN_IDLE_CONNS", 5),
			DialTimeout:  GetDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
		},
		Queue: QueueConfig{
			Name:            GetEnv("QUEUE_NAME", "transaction-queue"),
			MaxAttempts:     GetIntEnv("QUEUE_MAX_ATTEMPTS", 3),
			BackoffBase:     GetDurationEnv("QUEUE_BACKOFF_BASE", time.Minute),
			PollTimeout:     GetDurationEnv("QUEUE_POLL_TIMEOUT", 2*time.Second),
			PromoteInterval: GetDurationEnv("QUEUE_PROMOTE_INTERVAL", time.Second),
			Retention:       GetDurationEnv("QUEUE_JOB_RETENTION", 24*time.Hour),
		},
		Worker: WorkerConfig{
			Concurrency:       GetIntEnv("WORKER_CONCURRENCY", 4),
			ReconcileInterval: GetDurationEnv("RECONCILE_INTERVAL", time.Hour),
		},
		Cache: CacheConfig{
			WalletTTL:  GetDurationEnv("CACHE_WALLET_TTL", 2*time.Hour),
			HistoryTTL: GetDurationEnv("CACHE_HISTORY_TTL", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:      GetListEnv("KAFKA_BROKERS"),
			OutcomeTopic: GetEnv("KAFKA_OUTCOME_TOPIC", "wallet.job-outcomes"),
		},
	}
}
