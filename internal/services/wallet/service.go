package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "walletd/internal/errors"
	"walletd/internal/models"
	"walletd/internal/queue"
	"walletd/internal/repositories"
	"walletd/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type service struct {
	repo    repositories.WalletRepository
	cache   CacheOperator
	queue   JobQueue
	config  WalletConfig
	metrics MetricsCollector
}

// NewService creates a new wallet service
func NewService(
	repo repositories.WalletRepository,
	cache CacheOperator,
	jobs JobQueue,
	config WalletConfig,
	metrics MetricsCollector,
) Service {
	if repo == nil {
		panic("repo is required")
	}
	if cache == nil {
		panic("cache is required")
	}
	if jobs == nil {
		panic("job queue is required")
	}

	if config.MinTransactionAmount.IsZero() {
		config.MinTransactionAmount = validation.DefaultMinTransactionAmount
	}
	if config.OperationTimeout == 0 {
		config.OperationTimeout = DefaultTimeout
	}

	// Metrics is optional, create no-op collector if nil
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &service{
		repo:    repo,
		cache:   cache,
		queue:   jobs,
		config:  config,
		metrics: metrics,
	}
}

func (s *service) CreateWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	if userID == "" {
		return nil, domain.ErrInvalidRequest.WithMessage("user id is required")
	}

	if _, err := s.repo.GetByUserID(ctx, userID); err == nil {
		return nil, ErrWalletExists
	} else if !errors.Is(err, repositories.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to check existing wallet: %w", err)
	}

	wallet := &models.Wallet{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	if err := s.repo.Create(ctx, wallet); err != nil {
		if errors.Is(err, repositories.ErrDuplicateWallet) {
			return nil, ErrWalletExists
		}
		s.metrics.RecordError(OperationCreate, "store")
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	zap.L().Info("wallet created", zap.String("wallet_id", wallet.ID), zap.String("user_id", userID))
	s.metrics.RecordOperationResult(OperationCreate, ResultApplied)
	return wallet, nil
}

func (s *service) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	// Try cache first
	wallet, found, err := s.cache.GetWallet(ctx, userID)
	if err != nil {
		zap.L().Warn("wallet cache read failed", zap.String("user_id", userID), zap.Error(err))
	}
	if found {
		s.metrics.RecordCacheHit(CacheNameWallet)
		return wallet, nil
	}
	s.metrics.RecordCacheMiss(CacheNameWallet)

	wallet, err = s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if err := s.cache.SetWallet(ctx, wallet); err != nil {
		zap.L().Warn("failed to cache wallet", zap.String("user_id", userID), zap.Error(err))
	}
	return wallet, nil
}

// Deposit credits the caller's wallet inside one locked transaction and
// returns the ledger entry it wrote.
func (s *service) Deposit(ctx context.Context, req models.DepositRequest, userID string) (*models.LedgerEntry, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OperationDeposit, time.Since(start)) }()

	if err := validation.ValidateDepositRequest(req, s.config.MinTransactionAmount); err != nil {
		s.metrics.RecordOperationResult(OperationDeposit, ResultRejected)
		return nil, err
	}

	var (
		wallet *models.Wallet
		entry  *models.LedgerEntry
	)
	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		w, err := tx.GetOwnedForUpdate(ctx, req.WalletID, userID)
		if err != nil {
			return walletLookupError(err, req.WalletID)
		}

		before := w.Balance
		w.Balance = before.Add(req.Amount)
		if err := tx.UpdateBalance(ctx, w); err != nil {
			return err
		}

		entry = &models.LedgerEntry{
			ID:                  uuid.NewString(),
			WalletID:            w.ID,
			SourceWalletID:      w.ID,
			DestinationWalletID: w.ID,
			Amount:              req.Amount,
			Type:                models.EntryTypeCredit,
			Description:         fmt.Sprintf("Wallet deposit of %s", req.Amount.StringFixed(2)),
			BalanceBefore:       before,
			BalanceAfter:        w.Balance,
			Reference:           uuid.NewString(),
			PaymentStatus:       models.PaymentStatusSuccess,
		}
		if err := tx.CreateEntries(ctx, entry); err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		s.recordFailure(OperationDeposit, err)
		return nil, wrapExecutionError("deposit", err)
	}

	s.invalidateWalletCaches(ctx, wallet.UserID, wallet.ID)
	s.metrics.RecordOperationResult(OperationDeposit, ResultApplied)
	s.metrics.RecordTransaction(OperationDeposit, req.Amount.InexactFloat64())
	zap.L().Info("deposit applied",
		zap.String("wallet_id", wallet.ID),
		zap.String("amount", req.Amount.String()),
		zap.String("reference", entry.Reference))
	return entry, nil
}

func (s *service) GetJobStatus(ctx context.Context, jobID string) (*queue.Job, error) {
	job, err := s.queue.Status(ctx, jobID)
	if err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job status: %w", err)
	}
	return job, nil
}

// VerifyConservation checks that the stored balance of walletID equals the
// sum of its credits minus its debits. Both are read under the wallet's row
// lock so a concurrent mutation cannot commit between the two reads.
func (s *service) VerifyConservation(ctx context.Context, walletID string) (*repositories.LedgerTotals, error) {
	var (
		balance decimal.Decimal
		totals  *repositories.LedgerTotals
	)
	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		wallet, err := tx.GetByIDForUpdate(ctx, walletID)
		if err != nil {
			return walletLookupError(err, walletID)
		}
		balance = wallet.Balance

		totals, err = tx.GetLedgerTotals(ctx, walletID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !totals.Net().Equal(balance) {
		s.metrics.RecordError(OperationReconcile, "ledger_mismatch")
		return totals, fmt.Errorf("%w: wallet %s balance %s, ledger %s",
			ErrLedgerMismatch, walletID, balance.String(), totals.Net().String())
	}
	return totals, nil
}

// Helper methods

func (s *service) recordFailure(operation string, err error) {
	if IsTerminal(err) {
		s.metrics.RecordOperationResult(operation, ResultRejected)
		return
	}
	s.metrics.RecordOperationResult(operation, ResultFailed)
	s.metrics.RecordError(operation, "store")
}

func walletLookupError(err error, walletID string) error {
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return ErrWalletNotFound.WithMessage("wallet %s not found", walletID)
	}
	return err
}

// wrapExecutionError keeps domain errors as they are so callers can map them
// and adds context to everything else.
func wrapExecutionError(operation string, err error) error {
	if _, ok := domain.KindOf(err); ok {
		return err
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}
