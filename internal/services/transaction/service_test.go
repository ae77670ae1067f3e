package transaction

import (
	"context"
	"fmt"
	"testing"
	"time"

	domain "walletd/internal/errors"
	"walletd/internal/models"
	"walletd/internal/repositories"
	"walletd/internal/repositories/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepo records how often the store is read.
type countingRepo struct {
	repositories.TransactionRepository
	calls int
}

func (r *countingRepo) GetHistory(ctx context.Context, walletID string, filter repositories.HistoryFilter) ([]models.LedgerEntry, int64, error) {
	r.calls++
	return r.TransactionRepository.GetHistory(ctx, walletID, filter)
}

type historyEnv struct {
	svc     Service
	repo    *countingRepo
	wallets repositories.WalletRepository
	cache   *cache.WalletCache
	wallet  *models.Wallet
}

func newHistoryEnv(t *testing.T, entries int) *historyEnv {
	t.Helper()
	ctx := context.Background()

	db, err := repositories.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, repositories.Migrate(db))
	t.Cleanup(func() { _ = repositories.Close(db) })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	wallets := repositories.NewWalletRepository(db)
	wallet := &models.Wallet{UserID: "user-1"}
	require.NoError(t, wallets.Create(ctx, wallet))

	env := &historyEnv{
		repo:    &countingRepo{TransactionRepository: repositories.NewTransactionRepository(db)},
		wallets: wallets,
		cache:   cache.NewWalletCache(cache.NewCacheService(client, time.Hour), time.Hour, time.Hour),
		wallet:  wallet,
	}
	env.svc = NewService(env.repo, env.cache, nil)

	for i := 0; i < entries; i++ {
		env.addEntry(t, fmt.Sprintf("dep-%02d", i))
	}
	return env
}

func (e *historyEnv) addEntry(t *testing.T, reference string) {
	t.Helper()
	one := decimal.NewFromInt(1)
	err := e.wallets.CreateEntries(context.Background(), &models.LedgerEntry{
		WalletID: e.wallet.ID, SourceWalletID: e.wallet.ID, DestinationWalletID: e.wallet.ID,
		Amount: one, Type: models.EntryTypeCredit,
		BalanceBefore: decimal.Zero, BalanceAfter: one,
		Reference: reference, PaymentStatus: models.PaymentStatusSuccess,
	})
	require.NoError(t, err)
}

func TestService_GetHistoryFirstPageThenCache(t *testing.T) {
	env := newHistoryEnv(t, 12)
	ctx := context.Background()

	page, err := env.svc.GetHistory(ctx, env.wallet.ID, HistoryQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 10)
	for i := 1; i < len(page.Data); i++ {
		assert.False(t, page.Data[i].CreatedAt.After(page.Data[i-1].CreatedAt), "entries must be newest first")
	}
	assert.Equal(t, models.PageMeta{
		Page: 1, Limit: 10, ItemCount: 12, PageCount: 2,
		HasPreviousPage: false, HasNextPage: true,
	}, page.Meta)
	assert.Equal(t, 1, env.repo.calls)

	cached, err := env.svc.GetHistory(ctx, env.wallet.ID, HistoryQuery{Page: 1, Limit: 10, Order: "desc"})
	require.NoError(t, err)
	assert.Equal(t, 1, env.repo.calls, "equivalent query must be served from cache")
	assert.Len(t, cached.Data, 10)
	assert.Equal(t, page.Meta, cached.Meta)

	second, err := env.svc.GetHistory(ctx, env.wallet.ID, HistoryQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Data, 2)
	assert.True(t, second.Meta.HasPreviousPage)
	assert.False(t, second.Meta.HasNextPage)
	assert.Equal(t, 2, env.repo.calls)
}

func TestService_GetHistoryListsSourceSide(t *testing.T) {
	env := newHistoryEnv(t, 1)
	ctx := context.Background()

	other := &models.Wallet{UserID: "user-2"}
	require.NoError(t, env.wallets.Create(ctx, other))

	// the pair a transfer of 40 from env.wallet to other writes
	forty := decimal.NewFromInt(40)
	err := env.wallets.CreateEntries(ctx,
		&models.LedgerEntry{
			WalletID: env.wallet.ID, SourceWalletID: env.wallet.ID, DestinationWalletID: other.ID,
			Amount: forty, Type: models.EntryTypeDebit,
			BalanceBefore: decimal.NewFromInt(100), BalanceAfter: decimal.NewFromInt(60),
			Reference: "r1", PaymentStatus: models.PaymentStatusSuccess,
		},
		&models.LedgerEntry{
			WalletID: other.ID, SourceWalletID: env.wallet.ID, DestinationWalletID: other.ID,
			Amount: forty, Type: models.EntryTypeCredit,
			BalanceBefore: decimal.Zero, BalanceAfter: forty,
			Reference: models.CreditReference("r1"), PaymentStatus: models.PaymentStatusSuccess,
		},
	)
	require.NoError(t, err)

	sent, err := env.svc.GetHistory(ctx, env.wallet.ID, HistoryQuery{})
	require.NoError(t, err)
	var refs []string
	for _, e := range sent.Data {
		assert.Equal(t, env.wallet.ID, e.SourceWalletID)
		refs = append(refs, e.Reference)
	}
	assert.ElementsMatch(t, []string{"dep-00", "r1", "credit-r1"}, refs)

	received, err := env.svc.GetHistory(ctx, other.ID, HistoryQuery{})
	require.NoError(t, err)
	assert.Empty(t, received.Data)
	assert.Zero(t, received.Meta.ItemCount)
}

func TestService_GetHistoryAfterInvalidation(t *testing.T) {
	env := newHistoryEnv(t, 3)
	ctx := context.Background()

	_, err := env.svc.GetHistory(ctx, env.wallet.ID, HistoryQuery{})
	require.NoError(t, err)

	env.addEntry(t, "dep-new")
	require.NoError(t, env.cache.InvalidateHistory(ctx, env.wallet.ID))

	page, err := env.svc.GetHistory(ctx, env.wallet.ID, HistoryQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Meta.ItemCount)
	assert.Equal(t, 2, env.repo.calls)
}

func TestService_GetHistoryEmptyWallet(t *testing.T) {
	env := newHistoryEnv(t, 0)

	page, err := env.svc.GetHistory(context.Background(), env.wallet.ID, HistoryQuery{Status: "success"})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.Meta.PageCount)
	assert.False(t, page.Meta.HasNextPage)
}

func TestService_GetHistoryValidation(t *testing.T) {
	env := newHistoryEnv(t, 0)

	tests := []struct {
		name  string
		query HistoryQuery
	}{
		{name: "negative page", query: HistoryQuery{Page: -1}},
		{name: "limit too large", query: HistoryQuery{Limit: 51}},
		{name: "negative limit", query: HistoryQuery{Limit: -5}},
		{name: "unknown order", query: HistoryQuery{Order: "sideways"}},
		{name: "unknown status", query: HistoryQuery{Status: "REVERSED"}},
		{name: "to without from", query: HistoryQuery{To: "2026-01-31"}},
		{name: "from after to", query: HistoryQuery{From: "2026-02-01", To: "2026-01-31"}},
		{name: "garbage date", query: HistoryQuery{From: "yesterday"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.GetHistory(context.Background(), env.wallet.ID, tt.query)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindInvalidRange), "got %v", err)
		})
	}
	assert.Zero(t, env.repo.calls)
}

func TestNormalize(t *testing.T) {
	t.Run("date-only to covers the whole day", func(t *testing.T) {
		nq, err := normalize(HistoryQuery{From: "2026-01-31", To: "2026-01-31"})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), *nq.from)
		assert.Equal(t, time.Date(2026, 1, 31, 23, 59, 59, 999999999, time.UTC), *nq.to)
	})

	t.Run("rfc3339 bounds are kept as given", func(t *testing.T) {
		nq, err := normalize(HistoryQuery{From: "2026-01-31T10:00:00Z", To: "2026-01-31T12:00:00+02:00"})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC), *nq.to)
	})

	t.Run("equivalent queries share a hash", func(t *testing.T) {
		a, err := normalize(HistoryQuery{})
		require.NoError(t, err)
		b, err := normalize(HistoryQuery{Page: 1, Limit: 10, Order: "DESC"})
		require.NoError(t, err)
		c, err := normalize(HistoryQuery{Order: "ASC"})
		require.NoError(t, err)
		assert.Equal(t, a.hash(), b.hash())
		assert.NotEqual(t, a.hash(), c.hash())
	})
}
