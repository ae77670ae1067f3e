package cache

import (
	"context"
	"testing"
	"time"

	"walletd/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*WalletCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewCacheService(client, time.Hour)
	return NewWalletCache(store, 2*time.Hour, 24*time.Hour), mr
}

func TestWalletCache_Wallet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, found, err := c.GetWallet(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, found)

	wallet := &models.Wallet{ID: "w-1", UserID: "user-1", Balance: decimal.RequireFromString("12.50")}
	require.NoError(t, c.SetWallet(ctx, wallet))
	assert.True(t, mr.Exists("wallet:user-1"))
	assert.Equal(t, 2*time.Hour, mr.TTL("wallet:user-1"))

	cached, found, err := c.GetWallet(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "w-1", cached.ID)
	assert.True(t, wallet.Balance.Equal(cached.Balance))

	require.NoError(t, c.InvalidateWallet(ctx, "user-1"))
	assert.False(t, mr.Exists("wallet:user-1"))
}

func TestWalletCache_HistoryInvalidation(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	page := &models.HistoryPage{
		Data: []models.LedgerEntry{{ID: "e-1", WalletID: "w-1", Reference: "r-1"}},
		Meta: models.PageMeta{Page: 1, Limit: 10, ItemCount: 1, PageCount: 1},
	}
	require.NoError(t, c.SetHistoryPage(ctx, "w-1", "aaa", page))
	require.NoError(t, c.SetHistoryPage(ctx, "w-1", "bbb", page))
	require.NoError(t, c.SetHistoryPage(ctx, "w-2", "aaa", page))

	assert.Equal(t, 24*time.Hour, mr.TTL("tx-history:w-1:aaa"))
	members, err := mr.Members("tx-history-index:w-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tx-history:w-1:aaa", "tx-history:w-1:bbb"}, members)

	cached, found, err := c.GetHistoryPage(ctx, "w-1", "aaa")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "r-1", cached.Data[0].Reference)

	require.NoError(t, c.InvalidateHistory(ctx, "w-1"))
	assert.False(t, mr.Exists("tx-history:w-1:aaa"))
	assert.False(t, mr.Exists("tx-history:w-1:bbb"))
	assert.False(t, mr.Exists("tx-history-index:w-1"))
	assert.True(t, mr.Exists("tx-history:w-2:aaa"), "other wallets keep their pages")

	// invalidating an empty index is a no-op
	require.NoError(t, c.InvalidateHistory(ctx, "w-3"))
}

func TestCacheService_GetCorruptValue(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewCacheService(client, time.Minute)

	require.NoError(t, mr.Set("wallet:broken", "{not json"))
	var wallet models.Wallet
	found, err := store.Get(ctx, "wallet:broken", &wallet)
	assert.Error(t, err)
	assert.False(t, found)

	require.NoError(t, store.HealthCheck(ctx))
	mr.Close()
	assert.Error(t, store.HealthCheck(ctx))
}
