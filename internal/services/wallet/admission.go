package wallet

import (
	"context"
	"errors"
	"fmt"

	"walletd/internal/models"
	"walletd/internal/repositories"
	"walletd/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestWithdrawal checks a withdrawal against the current balance without
// locking and enqueues it. Nothing is enqueued when a check fails.
func (s *service) RequestWithdrawal(ctx context.Context, req models.WithdrawRequest, userID string) (*models.JobHandle, error) {
	if err := validation.ValidateWithdrawRequest(req, s.config.MinTransactionAmount); err != nil {
		s.metrics.RecordOperationResult(OperationRequestWithdrawal, ResultRejected)
		return nil, err
	}

	wallet, err := s.ownedWallet(ctx, req.WalletID, userID)
	if err != nil {
		s.recordFailure(OperationRequestWithdrawal, err)
		return nil, err
	}
	if wallet.Balance.LessThan(req.Amount) {
		s.metrics.RecordOperationResult(OperationRequestWithdrawal, ResultRejected)
		return nil, ErrInsufficientBalance
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.NewString()
	}

	cmd := models.WithdrawCommand{
		WalletID:    wallet.ID,
		UserID:      userID,
		Amount:      req.Amount,
		Reference:   reference,
		Description: req.Description,
	}
	return s.enqueue(ctx, OperationRequestWithdrawal, cmd)
}

// RequestTransfer checks a transfer without locking and enqueues it. The
// source must belong to userID; the destination only has to exist.
func (s *service) RequestTransfer(ctx context.Context, req models.TransferRequest, userID string) (*models.JobHandle, error) {
	if err := validation.ValidateTransferRequest(req, s.config.MinTransactionAmount); err != nil {
		s.metrics.RecordOperationResult(OperationRequestTransfer, ResultRejected)
		return nil, err
	}

	source, err := s.ownedWallet(ctx, req.SourceWalletID, userID)
	if err != nil {
		s.recordFailure(OperationRequestTransfer, err)
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, req.DestinationWalletID); err != nil {
		err = walletLookupError(err, req.DestinationWalletID)
		s.recordFailure(OperationRequestTransfer, err)
		return nil, err
	}
	if source.Balance.LessThan(req.Amount) {
		s.metrics.RecordOperationResult(OperationRequestTransfer, ResultRejected)
		return nil, ErrInsufficientBalance
	}

	cmd := models.TransferCommand{
		SourceWalletID:      source.ID,
		DestinationWalletID: req.DestinationWalletID,
		UserID:              userID,
		Amount:              req.Amount,
		Reference:           req.Reference,
		Description:         req.Description,
	}
	return s.enqueue(ctx, OperationRequestTransfer, cmd)
}

func (s *service) enqueue(ctx context.Context, operation string, cmd models.Command) (*models.JobHandle, error) {
	job, err := s.queue.Enqueue(ctx, cmd)
	if err != nil {
		s.metrics.RecordError(operation, "queue")
		return nil, fmt.Errorf("failed to queue %s: %w", cmd.Kind(), err)
	}

	zap.L().Info("command queued",
		zap.String("job_id", job.ID),
		zap.String("kind", string(cmd.Kind())),
		zap.String("reference", cmd.IdempotencyKey()))
	s.metrics.RecordOperationResult(operation, ResultAccepted)

	return &models.JobHandle{
		ID:        job.ID,
		Kind:      cmd.Kind(),
		Status:    string(job.Status),
		Reference: cmd.IdempotencyKey(),
	}, nil
}

// ownedWallet reads walletID without locking. A wallet owned by someone else
// is reported as not found.
func (s *service) ownedWallet(ctx context.Context, walletID, userID string) (*models.Wallet, error) {
	wallet, err := s.repo.GetByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, walletLookupError(err, walletID)
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet.UserID != userID {
		return nil, ErrWalletNotFound.WithMessage("wallet %s not found", walletID)
	}
	return wallet, nil
}
