package transaction

import (
	"context"

	"walletd/internal/models"
)

// Service is the read path over a wallet's ledger.
type Service interface {
	GetHistory(ctx context.Context, walletID string, q HistoryQuery) (*models.HistoryPage, error)
}

// HistoryCache stores rendered history pages per wallet and query.
type HistoryCache interface {
	GetHistoryPage(ctx context.Context, walletID, queryHash string) (*models.HistoryPage, bool, error)
	SetHistoryPage(ctx context.Context, walletID, queryHash string, page *models.HistoryPage) error
}

// MetricsCollector is the subset of wallet metrics the history path reports.
type MetricsCollector interface {
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
}
