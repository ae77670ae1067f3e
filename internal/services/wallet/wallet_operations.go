package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walletd/internal/models"
	"walletd/internal/repositories"
	"walletd/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type jobIDKey struct{}

// WithJobID attaches the id of the job being executed so it is recorded in
// the metadata of the entries the execution writes.
func WithJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, jobIDKey{}, jobID)
}

func entryMetadata(ctx context.Context) models.JSON {
	if id, ok := ctx.Value(jobIDKey{}).(string); ok && id != "" {
		return models.JSON{"job_id": id}
	}
	return nil
}

// WithdrawFunds applies a queued withdrawal. It locks the wallet, re-checks
// the balance and writes one DEBIT entry carrying the command reference.
func (s *service) WithdrawFunds(ctx context.Context, cmd models.WithdrawCommand) (*ExecutionResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OperationWithdraw, time.Since(start)) }()

	if err := s.validateCommand(cmd.Amount, cmd.Reference); err != nil {
		s.metrics.RecordOperationResult(OperationWithdraw, ResultRejected)
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	want := appliedDebit{walletID: cmd.WalletID, destinationID: cmd.WalletID, amount: cmd.Amount}
	result := &ExecutionResult{}
	var wallet *models.Wallet
	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		if applied, err := referenceApplied(ctx, tx, cmd.Reference, want); err != nil || applied {
			result.Replayed = applied
			return err
		}

		w, err := tx.GetByIDForUpdate(ctx, cmd.WalletID)
		if err != nil {
			return walletLookupError(err, cmd.WalletID)
		}

		// A duplicate delivery may have committed while we waited on the lock.
		if applied, err := referenceApplied(ctx, tx, cmd.Reference, want); err != nil || applied {
			result.Replayed = applied
			return err
		}

		if w.Balance.LessThan(cmd.Amount) {
			return ErrInsufficientBalance.WithMessage(
				"insufficient balance in wallet %s: have %s, need %s",
				w.ID, w.Balance.StringFixed(2), cmd.Amount.StringFixed(2))
		}

		before := w.Balance
		w.Balance = before.Sub(cmd.Amount)
		if err := tx.UpdateBalance(ctx, w); err != nil {
			return err
		}

		description := cmd.Description
		if description == "" {
			description = fmt.Sprintf("Wallet withdrawal of %s", cmd.Amount.StringFixed(2))
		}
		entry := &models.LedgerEntry{
			ID:                  uuid.NewString(),
			WalletID:            w.ID,
			SourceWalletID:      w.ID,
			DestinationWalletID: w.ID,
			Amount:              cmd.Amount,
			Type:                models.EntryTypeDebit,
			Description:         description,
			BalanceBefore:       before,
			BalanceAfter:        w.Balance,
			Reference:           cmd.Reference,
			PaymentStatus:       models.PaymentStatusSuccess,
			Metadata:            entryMetadata(ctx),
		}
		if err := tx.CreateEntries(ctx, entry); err != nil {
			return err
		}

		result.Entries = []*models.LedgerEntry{entry}
		wallet = w
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateReference) {
			if err = s.duplicateReference(ctx, cmd.Reference, want, err); err == nil {
				return s.replayed(OperationWithdraw, cmd.Reference), nil
			}
		}
		s.recordFailure(OperationWithdraw, err)
		return nil, wrapExecutionError("withdrawal", err)
	}
	if result.Replayed {
		return s.replayed(OperationWithdraw, cmd.Reference), nil
	}

	s.invalidateWalletCaches(ctx, wallet.UserID, wallet.ID)
	s.metrics.RecordOperationResult(OperationWithdraw, ResultApplied)
	s.metrics.RecordTransaction(OperationWithdraw, cmd.Amount.InexactFloat64())
	zap.L().Info("withdrawal applied",
		zap.String("wallet_id", wallet.ID),
		zap.String("amount", cmd.Amount.String()),
		zap.String("reference", cmd.Reference))
	return result, nil
}

// TransferFunds applies a queued transfer. Both wallets are locked in
// ascending id order; the DEBIT carries the reference R and the CREDIT
// carries credit-R.
func (s *service) TransferFunds(ctx context.Context, cmd models.TransferCommand) (*ExecutionResult, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OperationTransfer, time.Since(start)) }()

	if err := s.validateCommand(cmd.Amount, cmd.Reference); err != nil {
		s.metrics.RecordOperationResult(OperationTransfer, ResultRejected)
		return nil, err
	}
	if cmd.SourceWalletID == cmd.DestinationWalletID {
		s.metrics.RecordOperationResult(OperationTransfer, ResultRejected)
		return nil, ErrSameWallet
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	want := appliedDebit{walletID: cmd.SourceWalletID, destinationID: cmd.DestinationWalletID, amount: cmd.Amount}
	result := &ExecutionResult{}
	var source, dest *models.Wallet
	err := s.repo.ExecuteInTransaction(ctx, func(tx repositories.WalletRepository) error {
		if applied, err := referenceApplied(ctx, tx, cmd.Reference, want); err != nil || applied {
			result.Replayed = applied
			return err
		}

		src, dst, err := tx.LockPair(ctx, cmd.SourceWalletID, cmd.DestinationWalletID)
		if err != nil {
			return walletLookupError(err, cmd.SourceWalletID+" or "+cmd.DestinationWalletID)
		}

		if applied, err := referenceApplied(ctx, tx, cmd.Reference, want); err != nil || applied {
			result.Replayed = applied
			return err
		}

		if src.Balance.LessThan(cmd.Amount) {
			return ErrInsufficientBalance.WithMessage(
				"insufficient balance in wallet %s: have %s, need %s",
				src.ID, src.Balance.StringFixed(2), cmd.Amount.StringFixed(2))
		}

		srcBefore, dstBefore := src.Balance, dst.Balance
		src.Balance = srcBefore.Sub(cmd.Amount)
		dst.Balance = dstBefore.Add(cmd.Amount)
		if err := tx.UpdateBalance(ctx, src); err != nil {
			return err
		}
		if err := tx.UpdateBalance(ctx, dst); err != nil {
			return err
		}

		metadata := entryMetadata(ctx)
		debit := &models.LedgerEntry{
			ID:                  uuid.NewString(),
			WalletID:            src.ID,
			SourceWalletID:      src.ID,
			DestinationWalletID: dst.ID,
			Amount:              cmd.Amount,
			Type:                models.EntryTypeDebit,
			Description:         transferDescription(cmd.Description, "Transfer to wallet "+dst.ID),
			BalanceBefore:       srcBefore,
			BalanceAfter:        src.Balance,
			Reference:           cmd.Reference,
			PaymentStatus:       models.PaymentStatusSuccess,
			Metadata:            metadata,
		}
		credit := &models.LedgerEntry{
			ID:                  uuid.NewString(),
			WalletID:            dst.ID,
			SourceWalletID:      src.ID,
			DestinationWalletID: dst.ID,
			Amount:              cmd.Amount,
			Type:                models.EntryTypeCredit,
			Description:         transferDescription(cmd.Description, "Transfer from wallet "+src.ID),
			BalanceBefore:       dstBefore,
			BalanceAfter:        dst.Balance,
			Reference:           models.CreditReference(cmd.Reference),
			PaymentStatus:       models.PaymentStatusSuccess,
			Metadata:            metadata,
		}
		if err := tx.CreateEntries(ctx, debit, credit); err != nil {
			return err
		}

		result.Entries = []*models.LedgerEntry{debit, credit}
		source, dest = src, dst
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateReference) {
			if err = s.duplicateReference(ctx, cmd.Reference, want, err); err == nil {
				return s.replayed(OperationTransfer, cmd.Reference), nil
			}
		}
		s.recordFailure(OperationTransfer, err)
		return nil, wrapExecutionError("transfer", err)
	}
	if result.Replayed {
		return s.replayed(OperationTransfer, cmd.Reference), nil
	}

	s.invalidateTransferCaches(ctx, source.UserID, source.ID, dest.UserID, dest.ID)
	s.metrics.RecordOperationResult(OperationTransfer, ResultApplied)
	s.metrics.RecordTransaction(OperationTransfer, cmd.Amount.InexactFloat64())
	zap.L().Info("transfer applied",
		zap.String("source_wallet_id", source.ID),
		zap.String("destination_wallet_id", dest.ID),
		zap.String("amount", cmd.Amount.String()),
		zap.String("reference", cmd.Reference))
	return result, nil
}

func (s *service) validateCommand(amount decimal.Decimal, reference string) error {
	if reference == "" {
		return ErrInvalidRequest.WithMessage("command reference is required")
	}
	// Admission already enforced the minimum; execution only guards the sign
	// and scale in case the configured minimum changed in between.
	return validation.ValidateAmount(amount, decimal.Zero)
}

func (s *service) replayed(operation, reference string) *ExecutionResult {
	zap.L().Info("command already applied", zap.String("operation", operation), zap.String("reference", reference))
	s.metrics.RecordOperationResult(operation, ResultReplayed)
	return &ExecutionResult{Replayed: true}
}

// appliedDebit is the DEBIT entry a command writes under its own reference.
type appliedDebit struct {
	walletID      string
	destinationID string
	amount        decimal.Decimal
}

func (d appliedDebit) matches(entry *models.LedgerEntry) bool {
	return entry.Type == models.EntryTypeDebit &&
		entry.WalletID == d.walletID &&
		entry.DestinationWalletID == d.destinationID &&
		entry.Amount.Equal(d.amount)
}

// referenceApplied reports whether the command owning reference has already
// committed. An entry under the reference that the command would not have
// written is a conflict, never a replay.
func referenceApplied(ctx context.Context, repo repositories.WalletRepository, reference string, want appliedDebit) (bool, error) {
	entry, err := repo.GetEntryByReference(ctx, reference)
	switch {
	case errors.Is(err, repositories.ErrEntryNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up reference %s: %w", reference, err)
	case !want.matches(entry):
		return false, ErrReferenceConflict.WithMessage("reference %s is already used by another operation", reference)
	}
	return true, nil
}

// duplicateReference resolves a unique violation raised at commit. It returns
// nil when a concurrent delivery of the same command won the race.
func (s *service) duplicateReference(ctx context.Context, reference string, want appliedDebit, cause error) error {
	applied, err := referenceApplied(ctx, s.repo, reference, want)
	switch {
	case err != nil:
		return err
	case applied:
		return nil
	}
	return cause
}

func transferDescription(custom, fallback string) string {
	if custom != "" {
		return custom
	}
	return fallback
}
