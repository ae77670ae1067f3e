// Package metrics exposes the wallet service's Prometheus instruments.
package metrics

import (
	"time"

	"walletd/internal/queue"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "walletd_operation_duration_seconds",
			Help:    "Duration of wallet operations",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"operation"},
	)

	operationResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletd_operation_results_total",
			Help: "Wallet operations by result",
		},
		[]string{"operation", "result"},
	)

	cacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletd_cache_requests_total",
			Help: "Cache lookups by cache and outcome",
		},
		[]string{"cache", "result"},
	)

	operationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletd_errors_total",
			Help: "Wallet operation errors by type",
		},
		[]string{"operation", "type"},
	)

	transactionVolume = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletd_transaction_volume_total",
			Help: "Sum of applied transaction amounts",
		},
		[]string{"type"},
	)

	jobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "walletd_jobs_processed_total",
			Help: "Queued commands by kind and final status of the attempt",
		},
		[]string{"kind", "status"},
	)

	queueJobs = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "walletd_queue_jobs",
			Help: "Jobs currently held in each queue list",
		},
		[]string{"list"},
	)
)

// Collector records wallet, cache and job metrics into the default registry.
type Collector struct{}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) RecordOperationDuration(operation string, duration time.Duration) {
	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (c *Collector) RecordOperationResult(operation, result string) {
	operationResults.WithLabelValues(operation, result).Inc()
}

func (c *Collector) RecordCacheHit(cache string) {
	cacheRequests.WithLabelValues(cache, "hit").Inc()
}

func (c *Collector) RecordCacheMiss(cache string) {
	cacheRequests.WithLabelValues(cache, "miss").Inc()
}

func (c *Collector) RecordError(operation, errType string) {
	operationErrors.WithLabelValues(operation, errType).Inc()
}

func (c *Collector) RecordTransaction(txType string, amount float64) {
	transactionVolume.WithLabelValues(txType).Add(amount)
}

func (c *Collector) RecordJob(kind string, status queue.Status) {
	jobsProcessed.WithLabelValues(kind, string(status)).Inc()
}

func (c *Collector) SetQueueStats(stats *queue.Stats) {
	queueJobs.WithLabelValues("ready").Set(float64(stats.Ready))
	queueJobs.WithLabelValues("processing").Set(float64(stats.Processing))
	queueJobs.WithLabelValues("delayed").Set(float64(stats.Delayed))
	queueJobs.WithLabelValues("dead").Set(float64(stats.Dead))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
