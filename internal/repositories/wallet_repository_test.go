package repositories

import (
	"context"
	"testing"
	"time"

	"walletd/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWalletRepository_Create(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))

	wallet := &models.Wallet{UserID: "user-1"}
	require.NoError(t, repo.Create(ctx, wallet))
	assert.NotEmpty(t, wallet.ID)

	err := repo.Create(ctx, &models.Wallet{UserID: "user-1"})
	assert.ErrorIs(t, err, ErrDuplicateWallet)

	got, err := repo.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, got.ID)
	assert.True(t, got.Balance.IsZero())

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestWalletRepository_SoftDeletedWalletFreesUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewWalletRepository(db)

	first := &models.Wallet{UserID: "user-1"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, db.Delete(&models.Wallet{}, "id = ?", first.ID).Error)

	_, err := repo.GetByUserID(ctx, "user-1")
	assert.ErrorIs(t, err, ErrWalletNotFound)

	require.NoError(t, repo.Create(ctx, &models.Wallet{UserID: "user-1"}))
}

func TestWalletRepository_LockPairReturnsArgumentOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))

	a := &models.Wallet{ID: "aaaaaaaa-0000-0000-0000-000000000000", UserID: "user-a"}
	b := &models.Wallet{ID: "bbbbbbbb-0000-0000-0000-000000000000", UserID: "user-b"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	err := repo.ExecuteInTransaction(ctx, func(tx WalletRepository) error {
		first, second, err := tx.LockPair(ctx, b.ID, a.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, first.ID)
		assert.Equal(t, a.ID, second.ID)

		_, _, err = tx.LockPair(ctx, a.ID, "missing")
		assert.ErrorIs(t, err, ErrWalletNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestWalletRepository_EntriesAndTotals(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))

	wallet := &models.Wallet{UserID: "user-1"}
	require.NoError(t, repo.Create(ctx, wallet))

	err := repo.ExecuteInTransaction(ctx, func(tx WalletRepository) error {
		wallet.Balance = amount("70")
		if err := tx.UpdateBalance(ctx, wallet); err != nil {
			return err
		}
		return tx.CreateEntries(ctx,
			&models.LedgerEntry{
				WalletID: wallet.ID, SourceWalletID: wallet.ID, DestinationWalletID: wallet.ID,
				Amount: amount("100"), Type: models.EntryTypeCredit,
				BalanceBefore: amount("0"), BalanceAfter: amount("100"),
				Reference: "dep-1", PaymentStatus: models.PaymentStatusSuccess,
			},
			&models.LedgerEntry{
				WalletID: wallet.ID, SourceWalletID: wallet.ID, DestinationWalletID: wallet.ID,
				Amount: amount("30"), Type: models.EntryTypeDebit,
				BalanceBefore: amount("100"), BalanceAfter: amount("70"),
				Reference: "wd-1", PaymentStatus: models.PaymentStatusSuccess,
			},
		)
	})
	require.NoError(t, err)

	totals, err := repo.GetLedgerTotals(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, amount("100").Equal(totals.Credits))
	assert.True(t, amount("30").Equal(totals.Debits))
	assert.Equal(t, int64(2), totals.Entries)

	stored, err := repo.GetByID(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, totals.Net().Equal(stored.Balance))

	entry, err := repo.GetEntryByReference(ctx, "wd-1")
	require.NoError(t, err)
	assert.Equal(t, models.EntryTypeDebit, entry.Type)

	_, err = repo.GetEntryByReference(ctx, "nope")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestWalletRepository_DuplicateReferenceRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))

	wallet := &models.Wallet{UserID: "user-1"}
	require.NoError(t, repo.Create(ctx, wallet))

	entry := func() *models.LedgerEntry {
		return &models.LedgerEntry{
			WalletID: wallet.ID, SourceWalletID: wallet.ID, DestinationWalletID: wallet.ID,
			Amount: amount("5"), Type: models.EntryTypeCredit,
			BalanceBefore: amount("0"), BalanceAfter: amount("5"),
			Reference: "same-ref", PaymentStatus: models.PaymentStatusSuccess,
		}
	}
	require.NoError(t, repo.CreateEntries(ctx, entry()))

	err := repo.ExecuteInTransaction(ctx, func(tx WalletRepository) error {
		wallet.Balance = amount("5")
		if err := tx.UpdateBalance(ctx, wallet); err != nil {
			return err
		}
		return tx.CreateEntries(ctx, entry())
	})
	assert.ErrorIs(t, err, ErrDuplicateReference)

	stored, err := repo.GetByID(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.IsZero(), "balance update must roll back with the entry")
}

func TestWalletRepository_ListIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletRepository(newTestDB(t))

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Create(ctx, &models.Wallet{ID: id, UserID: "user-" + id}))
	}

	ids, err := repo.ListIDs(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	ids, err = repo.ListIDs(ctx, "b", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)
}

func TestTransactionRepository_GetHistory(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTransactionRepository(db)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := models.LedgerEntry{
			ID:       "e-" + string(rune('a'+i)),
			WalletID: "w-1", SourceWalletID: "w-1", DestinationWalletID: "w-1",
			Amount: amount("1"), Type: models.EntryTypeCredit,
			BalanceBefore: amount("0"), BalanceAfter: amount("1"),
			Reference: "ref-" + string(rune('a'+i)), PaymentStatus: models.PaymentStatusSuccess,
			CreatedAt: base.AddDate(0, 0, i),
		}
		require.NoError(t, db.Create(&entry).Error)
	}
	require.NoError(t, db.Create(&models.LedgerEntry{
		ID: "other", WalletID: "w-2", SourceWalletID: "w-2", DestinationWalletID: "w-2",
		Amount: amount("1"), Type: models.EntryTypeCredit, BalanceBefore: amount("0"), BalanceAfter: amount("1"),
		Reference: "ref-other", PaymentStatus: models.PaymentStatusSuccess, CreatedAt: base,
	}).Error)

	t.Run("newest first with paging", func(t *testing.T) {
		entries, total, err := repo.GetHistory(ctx, "w-1", HistoryFilter{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, entries, 2)
		assert.Equal(t, "ref-e", entries[0].Reference)
		assert.Equal(t, "ref-d", entries[1].Reference)

		entries, _, err = repo.GetHistory(ctx, "w-1", HistoryFilter{Limit: 2, Offset: 4})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "ref-a", entries[0].Reference)
	})

	t.Run("ascending within range", func(t *testing.T) {
		from := base.AddDate(0, 0, 1)
		to := base.AddDate(0, 0, 3)
		entries, total, err := repo.GetHistory(ctx, "w-1", HistoryFilter{From: &from, To: &to, Ascending: true, Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, entries, 3)
		assert.Equal(t, "ref-b", entries[0].Reference)
		assert.Equal(t, "ref-d", entries[2].Reference)
	})

	t.Run("status filter", func(t *testing.T) {
		entries, total, err := repo.GetHistory(ctx, "w-1", HistoryFilter{Status: models.PaymentStatusFailed, Limit: 10})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, entries)
	})
}
