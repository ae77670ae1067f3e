package cache

import (
	"context"
	"time"

	"walletd/internal/models"
)

const (
	walletKeyPrefix       = "wallet:"
	historyKeyPrefix      = "tx-history:"
	historyIndexKeyPrefix = "tx-history-index:"
)

func WalletKey(userID string) string {
	return walletKeyPrefix + userID
}

// HistoryKey names one cached history page of walletID; queryHash
// identifies the filters and pagination that produced it.
func HistoryKey(walletID, queryHash string) string {
	return historyKeyPrefix + walletID + ":" + queryHash
}

func HistoryIndexKey(walletID string) string {
	return historyIndexKeyPrefix + walletID
}

// WalletCache stores wallet balances by owner and history pages by wallet.
type WalletCache struct {
	store      *CacheService
	walletTTL  time.Duration
	historyTTL time.Duration
}

func NewWalletCache(store *CacheService, walletTTL, historyTTL time.Duration) *WalletCache {
	return &WalletCache{
		store:      store,
		walletTTL:  walletTTL,
		historyTTL: historyTTL,
	}
}

// Wallet caching
func (c *WalletCache) GetWallet(ctx context.Context, userID string) (*models.Wallet, bool, error) {
	var wallet models.Wallet
	found, err := c.store.Get(ctx, WalletKey(userID), &wallet)
	if err != nil || !found {
		return nil, false, err
	}
	return &wallet, true, nil
}

func (c *WalletCache) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	return c.store.SetWithTTL(ctx, WalletKey(wallet.UserID), wallet, c.walletTTL)
}

func (c *WalletCache) InvalidateWallet(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, WalletKey(userID))
}

// History caching
func (c *WalletCache) GetHistoryPage(ctx context.Context, walletID, queryHash string) (*models.HistoryPage, bool, error) {
	var page models.HistoryPage
	found, err := c.store.Get(ctx, HistoryKey(walletID, queryHash), &page)
	if err != nil || !found {
		return nil, false, err
	}
	return &page, true, nil
}

func (c *WalletCache) SetHistoryPage(ctx context.Context, walletID, queryHash string, page *models.HistoryPage) error {
	return c.store.SetIndexed(ctx, HistoryIndexKey(walletID), HistoryKey(walletID, queryHash), page, c.historyTTL)
}

// InvalidateHistory drops every cached history page of walletID.
func (c *WalletCache) InvalidateHistory(ctx context.Context, walletID string) error {
	_, err := c.store.DeleteIndexed(ctx, HistoryIndexKey(walletID))
	return err
}
