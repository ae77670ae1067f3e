// Package workers consumes queued wallet commands and runs the periodic
// queue and ledger maintenance.
package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walletd/internal/models"
	"walletd/internal/queue"
	"walletd/internal/services/notification"
	"walletd/internal/services/wallet"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type PoolConfig struct {
	Concurrency int
	PollTimeout time.Duration
	// BackoffBase is the delay before the first retry; it doubles on every
	// further attempt.
	BackoffBase time.Duration
}

// Pool runs Concurrency consumers against one queue.
type Pool struct {
	queue     Queue
	executor  Executor
	publisher Publisher
	metrics   Metrics
	config    PoolConfig
}

func NewPool(q Queue, executor Executor, publisher Publisher, metrics Metrics, config PoolConfig) *Pool {
	if q == nil {
		panic("queue is required")
	}
	if executor == nil {
		panic("executor is required")
	}
	if publisher == nil {
		publisher = notification.NewService(nil)
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.PollTimeout <= 0 {
		config.PollTimeout = 2 * time.Second
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = time.Minute
	}
	return &Pool{
		queue:     q,
		executor:  executor,
		publisher: publisher,
		metrics:   metrics,
		config:    config,
	}
}

// Run hands jobs left in processing by a previous run back to the ready
// list, then consumes until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	recovered, err := p.queue.RecoverStalled(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover stalled jobs: %w", err)
	}
	if recovered > 0 {
		zap.L().Warn("requeued stalled jobs", zap.Int("count", recovered))
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.config.Concurrency; i++ {
		worker := i
		g.Go(func() error {
			return p.consume(ctx, worker)
		})
	}
	zap.L().Info("worker pool started", zap.Int("concurrency", p.config.Concurrency))
	return g.Wait()
}

func (p *Pool) consume(ctx context.Context, worker int) error {
	log := zap.L().With(zap.Int("worker", worker))
	for {
		if ctx.Err() != nil {
			return nil
		}

		job, err := p.queue.Dequeue(ctx, p.config.PollTimeout)
		switch {
		case err == nil:
			p.Process(ctx, job)
		case errors.Is(err, queue.ErrNoJob), errors.Is(err, queue.ErrJobNotFound):
		case errors.Is(err, queue.ErrMalformedJob):
			log.Error("dropping malformed job", zap.String("job_id", job.ID), zap.Error(err))
			p.settle(ctx, job, queue.StatusFailed, err, nil)
		default:
			if ctx.Err() != nil {
				return nil
			}
			log.Error("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(p.config.PollTimeout):
			}
		}
	}
}

// Process executes one dequeued job and acknowledges it. Business rejections
// fail the job at once; other errors are retried with exponential backoff
// and dead-lettered once the attempts are used up.
func (p *Pool) Process(ctx context.Context, job *queue.Job) {
	result, err := p.execute(wallet.WithJobID(ctx, job.ID), job)

	switch {
	case err == nil:
		p.settle(ctx, job, queue.StatusCompleted, nil, result)
	case wallet.IsTerminal(err), errors.Is(err, models.ErrUnknownCommand):
		p.settle(ctx, job, queue.StatusFailed, err, nil)
	case job.AttemptsLeft():
		delay := p.Backoff(job.Attempts)
		zap.L().Warn("job failed, retrying",
			zap.String("job_id", job.ID),
			zap.Int("attempt", job.Attempts),
			zap.Duration("delay", delay),
			zap.Error(err))
		if rerr := p.queue.Retry(context.WithoutCancel(ctx), job, delay, err); rerr != nil {
			zap.L().Error("failed to schedule retry", zap.String("job_id", job.ID), zap.Error(rerr))
		}
		p.metrics.RecordJob(job.Kind, queue.StatusRetrying)
	default:
		p.settle(ctx, job, queue.StatusDead, err, nil)
	}
}

// Backoff is the delay before the retry that follows the given attempt.
func (p *Pool) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.config.BackoffBase << (attempt - 1)
}

func (p *Pool) execute(ctx context.Context, job *queue.Job) (*wallet.ExecutionResult, error) {
	switch cmd := job.Command.(type) {
	case models.WithdrawCommand:
		return p.executor.WithdrawFunds(ctx, cmd)
	case models.TransferCommand:
		return p.executor.TransferFunds(ctx, cmd)
	default:
		return nil, fmt.Errorf("%w: %T", models.ErrUnknownCommand, job.Command)
	}
}

// settle records a terminal outcome on the queue and publishes it. The ack
// must land even when ctx was cancelled during execution.
func (p *Pool) settle(ctx context.Context, job *queue.Job, status queue.Status, cause error, result *wallet.ExecutionResult) {
	ctx = context.WithoutCancel(ctx)

	var err error
	switch status {
	case queue.StatusCompleted:
		err = p.queue.Complete(ctx, job)
	case queue.StatusFailed:
		err = p.queue.Fail(ctx, job, cause)
	case queue.StatusDead:
		err = p.queue.DeadLetter(ctx, job, cause)
	}
	if err != nil {
		zap.L().Error("failed to acknowledge job",
			zap.String("job_id", job.ID), zap.String("status", string(status)), zap.Error(err))
	}
	p.metrics.RecordJob(job.Kind, status)

	outcome := notification.JobOutcome{
		JobID:    job.ID,
		Kind:     job.Kind,
		Status:   string(status),
		Attempts: job.Attempts,
	}
	if job.Command != nil {
		outcome.Reference = job.Command.IdempotencyKey()
	}
	if cause != nil {
		outcome.Error = cause.Error()
	}
	if result != nil {
		outcome.Replayed = result.Replayed
	}
	if err := p.publisher.PublishOutcome(ctx, outcome); err != nil {
		zap.L().Warn("failed to publish job outcome", zap.String("job_id", job.ID), zap.Error(err))
	}
}
