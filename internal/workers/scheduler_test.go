package workers

import (
	"context"
	"fmt"
	"testing"

	"walletd/internal/repositories"
	"walletd/internal/services/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListIDs(ctx context.Context, afterID string, limit int) ([]string, error) {
	args := m.Called(ctx, afterID, limit)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func TestScheduler_Reconcile(t *testing.T) {
	lister, exec := new(mockLister), new(mockExecutor)
	lister.On("ListIDs", mock.Anything, "", reconcileBatchSize).Return([]string{"a", "b"}, nil)
	lister.On("ListIDs", mock.Anything, "b", reconcileBatchSize).Return([]string{"c"}, nil)
	lister.On("ListIDs", mock.Anything, "c", reconcileBatchSize).Return([]string{}, nil)

	exec.On("VerifyConservation", mock.Anything, "a").Return(&repositories.LedgerTotals{}, nil)
	exec.On("VerifyConservation", mock.Anything, "b").
		Return(&repositories.LedgerTotals{}, fmt.Errorf("%w: wallet b", wallet.ErrLedgerMismatch))
	exec.On("VerifyConservation", mock.Anything, "c").Return(nil, wallet.ErrWalletNotFound)

	s, err := NewScheduler(new(mockQueue), lister, exec, nil, SchedulerConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })

	checked, mismatched, err := s.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, checked)
	assert.Equal(t, 1, mismatched)
	lister.AssertExpectations(t)
}

func TestScheduler_PromoteDueRefreshesStats(t *testing.T) {
	q := new(mockQueue)
	q.On("PromoteDue", mock.Anything, mock.Anything).Return(2, nil)
	q.On("Stats", mock.Anything).Return(nil, fmt.Errorf("stats unavailable"))

	s, err := NewScheduler(q, new(mockLister), new(mockExecutor), nil, SchedulerConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })

	promoted, err := s.PromoteDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, promoted)
}
