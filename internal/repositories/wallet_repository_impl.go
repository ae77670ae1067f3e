package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walletd/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.NewString()
	}
	result := r.db.WithContext(ctx).Create(wallet)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByID(ctx context.Context, id string) (*models.Wallet, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	return r.first(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

func (r *walletRepository) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return ids, nil
}

func (r *walletRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Wallet, error) {
	return r.first(r.locking(ctx).Where("id = ?", id))
}

func (r *walletRepository) GetOwnedForUpdate(ctx context.Context, id, userID string) (*models.Wallet, error) {
	return r.first(r.locking(ctx).Where("id = ? AND user_id = ?", id, userID))
}

// LockPair locks both wallets in ascending id order so that two transfers
// touching the same pair can never wait on each other in a cycle. The
// wallets are returned in argument order.
func (r *walletRepository) LockPair(ctx context.Context, firstID, secondID string) (*models.Wallet, *models.Wallet, error) {
	lowID, highID := firstID, secondID
	if highID < lowID {
		lowID, highID = highID, lowID
	}

	low, err := r.GetByIDForUpdate(ctx, lowID)
	if err != nil {
		return nil, nil, fmt.Errorf("wallet %s: %w", lowID, err)
	}
	high, err := r.GetByIDForUpdate(ctx, highID)
	if err != nil {
		return nil, nil, fmt.Errorf("wallet %s: %w", highID, err)
	}

	if low.ID == firstID {
		return low, high, nil
	}
	return high, low, nil
}

func (r *walletRepository) UpdateBalance(ctx context.Context, wallet *models.Wallet) error {
	wallet.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance":    wallet.Balance,
			"updated_at": wallet.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *walletRepository) CreateEntries(ctx context.Context, entries ...*models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
	}
	result := r.db.WithContext(ctx).Create(&entries)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create ledger entries: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetEntryByReference(ctx context.Context, reference string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

func (r *walletRepository) GetLedgerTotals(ctx context.Context, walletID string) (*LedgerTotals, error) {
	var totals LedgerTotals
	err := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Select(`
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS credits,
			COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) AS debits,
			COUNT(*) AS entries
		`, models.EntryTypeCredit, models.EntryTypeDebit).
		Where("wallet_id = ? AND payment_status = ?", walletID, models.PaymentStatusSuccess).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger totals: %w", err)
	}
	return &totals, nil
}

func (r *walletRepository) ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &walletRepository{db: tx}
		return fn(txRepo)
	})
}

func (r *walletRepository) locking(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *walletRepository) first(query *gorm.DB) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := query.First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}
