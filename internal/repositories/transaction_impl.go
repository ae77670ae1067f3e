package repositories

import (
	"context"
	"fmt"

	"walletd/internal/models"

	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) GetHistory(ctx context.Context, walletID string, filter HistoryFilter) ([]models.LedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("source_wallet_id = ?", walletID)

	if filter.Status != "" {
		query = query.Where("payment_status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transaction history: %w", err)
	}

	order := "created_at DESC, id DESC"
	if filter.Ascending {
		order = "created_at ASC, id ASC"
	}

	entries := make([]models.LedgerEntry, 0, filter.Limit)
	err := query.
		Order(order).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return entries, total, nil
}
