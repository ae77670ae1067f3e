package repositories

import (
	"context"
	"errors"

	"walletd/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrDuplicateWallet    = errors.New("wallet already exists")
	ErrEntryNotFound      = errors.New("ledger entry not found")
	ErrDuplicateReference = errors.New("ledger reference already used")
)

// WalletRepository defines the interface for wallet and ledger writes.
// Methods ending in ForUpdate take a row lock that is held until the
// enclosing ExecuteInTransaction returns; outside a transaction they lock
// nothing useful.
type WalletRepository interface {
	// Core wallet operations
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByID(ctx context.Context, id string) (*models.Wallet, error)
	GetByUserID(ctx context.Context, userID string) (*models.Wallet, error)
	ListIDs(ctx context.Context, afterID string, limit int) ([]string, error)

	// Locked reads
	GetByIDForUpdate(ctx context.Context, id string) (*models.Wallet, error)
	GetOwnedForUpdate(ctx context.Context, id, userID string) (*models.Wallet, error)
	LockPair(ctx context.Context, firstID, secondID string) (*models.Wallet, *models.Wallet, error)

	UpdateBalance(ctx context.Context, wallet *models.Wallet) error

	// Ledger operations
	CreateEntries(ctx context.Context, entries ...*models.LedgerEntry) error
	GetEntryByReference(ctx context.Context, reference string) (*models.LedgerEntry, error)
	GetLedgerTotals(ctx context.Context, walletID string) (*LedgerTotals, error)

	ExecuteInTransaction(ctx context.Context, fn func(WalletRepository) error) error
}

// LedgerTotals aggregates the committed entries recorded against one wallet.
type LedgerTotals struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
	Entries int64
}

// Net is the balance implied by the ledger.
func (t *LedgerTotals) Net() decimal.Decimal {
	return t.Credits.Sub(t.Debits)
}
