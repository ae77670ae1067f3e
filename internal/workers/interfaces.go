package workers

import (
	"context"
	"time"

	"walletd/internal/models"
	"walletd/internal/queue"
	"walletd/internal/repositories"
	"walletd/internal/services/notification"
	"walletd/internal/services/wallet"
)

// Queue is the consumer side of the job queue.
type Queue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Complete(ctx context.Context, job *queue.Job) error
	Fail(ctx context.Context, job *queue.Job, cause error) error
	Retry(ctx context.Context, job *queue.Job, delay time.Duration, cause error) error
	DeadLetter(ctx context.Context, job *queue.Job, cause error) error
	PromoteDue(ctx context.Context, now time.Time) (int, error)
	RecoverStalled(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*queue.Stats, error)
}

// Executor applies queued commands and audits wallets.
type Executor interface {
	WithdrawFunds(ctx context.Context, cmd models.WithdrawCommand) (*wallet.ExecutionResult, error)
	TransferFunds(ctx context.Context, cmd models.TransferCommand) (*wallet.ExecutionResult, error)
	VerifyConservation(ctx context.Context, walletID string) (*repositories.LedgerTotals, error)
}

type Publisher interface {
	PublishOutcome(ctx context.Context, outcome notification.JobOutcome) error
}

type Metrics interface {
	RecordJob(kind string, status queue.Status)
	SetQueueStats(stats *queue.Stats)
}

// WalletLister pages through wallet ids in ascending order.
type WalletLister interface {
	ListIDs(ctx context.Context, afterID string, limit int) ([]string, error)
}

type noopMetrics struct{}

func (noopMetrics) RecordJob(string, queue.Status) {}
func (noopMetrics) SetQueueStats(*queue.Stats)     {}
