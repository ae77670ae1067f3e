package wallet

import (
	"context"

	"walletd/internal/models"
	"walletd/internal/queue"
	"walletd/internal/repositories"
)

// Service defines the main wallet service interface
type Service interface {
	// Wallet lifecycle
	CreateWallet(ctx context.Context, userID string) (*models.Wallet, error)
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)

	// Synchronous credit
	Deposit(ctx context.Context, req models.DepositRequest, userID string) (*models.LedgerEntry, error)

	// Admission: lock-free checks, then enqueue
	RequestWithdrawal(ctx context.Context, req models.WithdrawRequest, userID string) (*models.JobHandle, error)
	RequestTransfer(ctx context.Context, req models.TransferRequest, userID string) (*models.JobHandle, error)

	// Execution: run by workers under row locks
	WithdrawFunds(ctx context.Context, cmd models.WithdrawCommand) (*ExecutionResult, error)
	TransferFunds(ctx context.Context, cmd models.TransferCommand) (*ExecutionResult, error)

	// Outcome and audit
	GetJobStatus(ctx context.Context, jobID string) (*queue.Job, error)
	VerifyConservation(ctx context.Context, walletID string) (*repositories.LedgerTotals, error)
}

// JobQueue is the durable queue admission hands commands to.
type JobQueue interface {
	Enqueue(ctx context.Context, cmd models.Command) (*queue.Job, error)
	Status(ctx context.Context, id string) (*queue.Job, error)
}

// CacheOperator defines the caching operations needed by the wallet service.
// All writes are best-effort: failures are logged, never returned to callers.
type CacheOperator interface {
	GetWallet(ctx context.Context, userID string) (*models.Wallet, bool, error)
	SetWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID string) error
	InvalidateHistory(ctx context.Context, walletID string) error
}
