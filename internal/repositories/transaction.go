package repositories

import (
	"context"
	"time"

	"walletd/internal/models"
)

// TransactionRepository is the read side of the ledger.
type TransactionRepository interface {
	// GetHistory pages through the entries whose source is walletID: its
	// deposits and withdrawals plus both legs of the transfers it sent.
	GetHistory(ctx context.Context, walletID string, filter HistoryFilter) ([]models.LedgerEntry, int64, error)
}

// HistoryFilter selects and orders the ledger entries of one wallet.
// Nil bounds are open; To is inclusive.
type HistoryFilter struct {
	Status    models.PaymentStatus
	From      *time.Time
	To        *time.Time
	Ascending bool
	Limit     int
	Offset    int
}
