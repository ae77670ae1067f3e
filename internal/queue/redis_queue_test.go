package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"walletd/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisQueue(client, Options{Name: "test-queue", MaxAttempts: 3, Retention: time.Hour}), mr
}

func withdrawCommand(ref string) models.WithdrawCommand {
	return models.WithdrawCommand{
		WalletID:  "w-1",
		UserID:    "u-1",
		Amount:    decimal.NewFromInt(25),
		Reference: ref,
	}
}

func TestRedisQueue_EnqueueDequeueComplete(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)

	first, err := q.Enqueue(ctx, withdrawCommand("r-1"))
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, withdrawCommand("r-2"))
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, first.Status)
	assert.Len(t, first.ID, 26)

	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first.ID, job.ID, "jobs are delivered in enqueue order")
	assert.Equal(t, StatusProcessing, job.Status)
	assert.Equal(t, 1, job.Attempts)
	cmd, ok := job.Command.(models.WithdrawCommand)
	require.True(t, ok)
	assert.Equal(t, "r-1", cmd.Reference)

	stats, err := q.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Ready)
	assert.Equal(t, int64(1), stats.Processing)

	require.NoError(t, q.Complete(ctx, job))
	status, err := q.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status.Status)
	assert.True(t, status.Status.Terminal())
	assert.Equal(t, time.Hour, mr.TTL("test-queue:job:"+job.ID))

	stats, err = q.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Processing)
}

func TestRedisQueue_DequeueEmpty(t *testing.T) {
	q, _ := newTestQueue(t)
	_, err := q.Dequeue(context.Background(), time.Second)
	assert.ErrorIs(t, err, ErrNoJob)
}

func TestRedisQueue_RetryAndPromote(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	_, err := q.Enqueue(ctx, withdrawCommand("r-1"))
	require.NoError(t, err)
	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	require.NoError(t, q.Retry(ctx, job, time.Minute, errors.New("connection reset")))
	status, err := q.Status(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRetrying, status.Status)
	assert.Equal(t, "connection reset", status.LastError)
	require.NotNil(t, status.ReadyAt)

	promoted, err := q.PromoteDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, promoted, "not due yet")

	promoted, err = q.PromoteDue(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	again, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, job.ID, again.ID)
	assert.Equal(t, 2, again.Attempts)
	assert.Nil(t, again.ReadyAt)
}

func TestRedisQueue_PromoteDueOnlyMovesDueJobs(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)

	for _, ref := range []string{"r-1", "r-2"} {
		_, err := q.Enqueue(ctx, withdrawCommand(ref))
		require.NoError(t, err)
	}
	soon, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	later, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, q.Retry(ctx, soon, time.Minute, errors.New("timeout")))
	require.NoError(t, q.Retry(ctx, later, 10*time.Minute, errors.New("timeout")))

	promoted, err := q.PromoteDue(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	ready, err := mr.List(q.readyKey())
	require.NoError(t, err)
	assert.Equal(t, []string{soon.ID}, ready)
	delayed, err := mr.ZMembers(q.delayedKey())
	require.NoError(t, err)
	assert.Equal(t, []string{later.ID}, delayed)

	status, err := q.Status(ctx, soon.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, status.Status)
	assert.Nil(t, status.ReadyAt)

	status, err = q.Status(ctx, later.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRetrying, status.Status)
	assert.NotNil(t, status.ReadyAt)

	promoted, err = q.PromoteDue(ctx, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, promoted)
}

func TestRedisQueue_FailAndDeadLetter(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)

	for _, ref := range []string{"r-1", "r-2"} {
		_, err := q.Enqueue(ctx, withdrawCommand(ref))
		require.NoError(t, err)
	}

	failed, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, q.Fail(ctx, failed, errors.New("insufficient wallet balance")))

	dead, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NoError(t, q.DeadLetter(ctx, dead, errors.New("database unavailable")))

	status, err := q.Status(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, status.Status)
	assert.Equal(t, "insufficient wallet balance", status.LastError)

	status, err = q.Status(ctx, dead.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDead, status.Status)
	assert.Zero(t, mr.TTL("test-queue:job:"+dead.ID), "dead jobs are kept")

	ids, err := q.DeadLetters(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{dead.ID}, ids)
}

func TestRedisQueue_RecoverStalled(t *testing.T) {
	ctx := context.Background()
	q, _ := newTestQueue(t)

	_, err := q.Enqueue(ctx, withdrawCommand("r-1"))
	require.NoError(t, err)
	job, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	recovered, err := q.RecoverStalled(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, recovered)

	redelivered, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, job.ID, redelivered.ID)
	assert.Equal(t, 2, redelivered.Attempts)
}

func TestRedisQueue_StatusUnknown(t *testing.T) {
	q, _ := newTestQueue(t)
	_, err := q.Status(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestRedisQueue_MalformedJob(t *testing.T) {
	ctx := context.Background()
	q, mr := newTestQueue(t)

	mr.HSet("test-queue:job:bad", "command", `{"kind":"refund","payload":{}}`, "status", "queued")
	_, err := mr.Lpush("test-queue:ready", "bad")
	require.NoError(t, err)

	job, err := q.Dequeue(ctx, time.Second)
	assert.ErrorIs(t, err, ErrMalformedJob)
	require.NotNil(t, job)
	assert.Equal(t, "bad", job.ID)
	assert.Nil(t, job.Command)
}
