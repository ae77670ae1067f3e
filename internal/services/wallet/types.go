package wallet

import (
	"time"

	"walletd/internal/models"

	"github.com/shopspring/decimal"
)

// WalletConfig holds configuration for wallet operations
type WalletConfig struct {
	MinTransactionAmount decimal.Decimal
	// OperationTimeout bounds a single locked execution.
	OperationTimeout time.Duration
}

// ExecutionResult describes what a worker-side execution did.
type ExecutionResult struct {
	// Replayed is true when the command had already been applied and
	// nothing was written.
	Replayed bool
	Entries  []*models.LedgerEntry
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)

	// Error metrics
	RecordError(operation, errType string)

	// Transaction metrics
	RecordTransaction(txType string, amount float64)
}

// noopMetrics is used when no collector is configured.
type noopMetrics struct{}

func (noopMetrics) RecordOperationDuration(string, time.Duration) {}
func (noopMetrics) RecordOperationResult(string, string)          {}
func (noopMetrics) RecordCacheHit(string)                         {}
func (noopMetrics) RecordCacheMiss(string)                        {}
func (noopMetrics) RecordError(string, string)                    {}
func (noopMetrics) RecordTransaction(string, float64)             {}
