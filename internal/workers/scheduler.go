package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walletd/internal/services/wallet"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const reconcileBatchSize = 200

type SchedulerConfig struct {
	PromoteInterval   time.Duration
	ReconcileInterval time.Duration
}

// Scheduler promotes delayed jobs whose retry time has come and periodically
// checks every wallet balance against its ledger.
type Scheduler struct {
	sched    gocron.Scheduler
	queue    Queue
	wallets  WalletLister
	executor Executor
	metrics  Metrics
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(q Queue, wallets WalletLister, executor Executor, metrics Metrics, config SchedulerConfig) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		sched:    sched,
		queue:    q,
		wallets:  wallets,
		executor: executor,
		metrics:  metrics,
		ctx:      ctx,
		cancel:   cancel,
	}

	if config.PromoteInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(config.PromoteInterval),
			gocron.NewTask(func() {
				if _, err := s.PromoteDue(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
					zap.L().Error("failed to promote delayed jobs", zap.Error(err))
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to schedule promotion: %w", err)
		}
	}

	if config.ReconcileInterval > 0 {
		_, err = sched.NewJob(
			gocron.DurationJob(config.ReconcileInterval),
			gocron.NewTask(func() {
				if _, _, err := s.Reconcile(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
					zap.L().Error("ledger reconciliation failed", zap.Error(err))
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to schedule reconciliation: %w", err)
		}
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
}

func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.sched.Shutdown()
}

// PromoteDue moves due delayed jobs back to the ready list and refreshes the
// queue gauges.
func (s *Scheduler) PromoteDue(ctx context.Context) (int, error) {
	promoted, err := s.queue.PromoteDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if promoted > 0 {
		zap.L().Debug("promoted delayed jobs", zap.Int("count", promoted))
	}

	if stats, err := s.queue.Stats(ctx); err == nil {
		s.metrics.SetQueueStats(stats)
	}
	return promoted, nil
}

// Reconcile verifies every wallet and logs the ones whose balance drifted
// from their ledger. It returns how many wallets were checked and how many
// mismatched.
func (s *Scheduler) Reconcile(ctx context.Context) (checked, mismatched int, err error) {
	start := time.Now()
	afterID := ""
	for {
		ids, err := s.wallets.ListIDs(ctx, afterID, reconcileBatchSize)
		if err != nil {
			return checked, mismatched, fmt.Errorf("failed to list wallets: %w", err)
		}
		if len(ids) == 0 {
			break
		}

		for _, id := range ids {
			if ctx.Err() != nil {
				return checked, mismatched, ctx.Err()
			}
			checked++
			_, err := s.executor.VerifyConservation(ctx, id)
			switch {
			case err == nil:
			case errors.Is(err, wallet.ErrLedgerMismatch):
				mismatched++
				zap.L().Error("ledger mismatch", zap.String("wallet_id", id), zap.Error(err))
			case errors.Is(err, wallet.ErrWalletNotFound):
				// deleted between listing and checking
			default:
				return checked, mismatched, fmt.Errorf("failed to verify wallet %s: %w", id, err)
			}
		}
		afterID = ids[len(ids)-1]
	}

	zap.L().Info("ledger reconciliation finished",
		zap.Int("checked", checked),
		zap.Int("mismatched", mismatched),
		zap.Duration("took", time.Since(start)))
	return checked, mismatched, nil
}
