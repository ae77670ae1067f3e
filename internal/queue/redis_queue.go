package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"walletd/internal/models"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

const (
	fieldCommand     = "command"
	fieldKind        = "kind"
	fieldStatus      = "status"
	fieldAttempts    = "attempts"
	fieldMaxAttempts = "max_attempts"
	fieldError       = "error"
	fieldEnqueuedAt  = "enqueued_at"
	fieldUpdatedAt   = "updated_at"
	fieldReadyAt     = "ready_at"
)

type Options struct {
	// Name prefixes every key of the queue.
	Name        string
	MaxAttempts int
	// Retention is how long completed and failed job records stay
	// available for status polling.
	Retention time.Duration
}

type RedisQueue struct {
	client      *redis.Client
	name        string
	maxAttempts int
	retention   time.Duration
	now         func() time.Time
}

func NewRedisQueue(client *redis.Client, opts Options) *RedisQueue {
	if client == nil {
		panic("redis client is required")
	}
	if opts.Name == "" {
		opts.Name = "transaction-queue"
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.Retention <= 0 {
		opts.Retention = 24 * time.Hour
	}
	return &RedisQueue{
		client:      client,
		name:        opts.Name,
		maxAttempts: opts.MaxAttempts,
		retention:   opts.Retention,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (q *RedisQueue) readyKey() string      { return q.name + ":ready" }
func (q *RedisQueue) processingKey() string { return q.name + ":processing" }
func (q *RedisQueue) delayedKey() string    { return q.name + ":delayed" }
func (q *RedisQueue) deadKey() string       { return q.name + ":dead" }
func (q *RedisQueue) jobKey(id string) string {
	return q.name + ":job:" + id
}

// Enqueue stores cmd and makes it immediately available to consumers.
func (q *RedisQueue) Enqueue(ctx context.Context, cmd models.Command) (*Job, error) {
	payload, err := models.EncodeCommand(cmd)
	if err != nil {
		return nil, err
	}

	now := q.now()
	job := &Job{
		ID:          ulid.Make().String(),
		Kind:        string(cmd.Kind()),
		Command:     cmd,
		Status:      StatusQueued,
		MaxAttempts: q.maxAttempts,
		EnqueuedAt:  now,
		UpdatedAt:   now,
	}

	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, q.jobKey(job.ID), map[string]interface{}{
			fieldCommand:     payload,
			fieldKind:        job.Kind,
			fieldStatus:      string(job.Status),
			fieldAttempts:    0,
			fieldMaxAttempts: job.MaxAttempts,
			fieldEnqueuedAt:  formatTime(now),
			fieldUpdatedAt:   formatTime(now),
		})
		pipe.LPush(ctx, q.readyKey(), job.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return job, nil
}

// Dequeue blocks up to timeout for a ready job and moves it to the
// processing list. It returns ErrNoJob when the wait times out. A job whose
// command cannot be decoded is returned together with ErrMalformedJob so the
// caller can fail it.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	id, err := q.client.BRPopLPush(ctx, q.readyKey(), q.processingKey(), timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoJob
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	key := q.jobKey(id)
	var fields *redis.MapStringStringCmd
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, fieldAttempts, 1)
		pipe.HSet(ctx, key, fieldStatus, string(StatusProcessing), fieldUpdatedAt, formatTime(q.now()))
		fields = pipe.HGetAll(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim job %s: %w", id, err)
	}

	job, err := parseJob(id, fields.Val())
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			// drop the orphaned id and the counters we just created for it
			q.client.LRem(ctx, q.processingKey(), 1, id)
			q.client.Del(ctx, key)
		}
		return job, err
	}
	return job, nil
}

// Complete acknowledges a successfully processed job.
func (q *RedisQueue) Complete(ctx context.Context, job *Job) error {
	return q.finish(ctx, job, StatusCompleted, nil)
}

// Fail acknowledges a job that must not be retried.
func (q *RedisQueue) Fail(ctx context.Context, job *Job, cause error) error {
	return q.finish(ctx, job, StatusFailed, cause)
}

// DeadLetter parks a job that exhausted its attempts. Dead jobs keep their
// record until an operator reconciles them.
func (q *RedisQueue) DeadLetter(ctx context.Context, job *Job, cause error) error {
	now := q.now()
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processingKey(), 1, job.ID)
		pipe.LPush(ctx, q.deadKey(), job.ID)
		pipe.HSet(ctx, q.jobKey(job.ID),
			fieldStatus, string(StatusDead),
			fieldError, errorText(cause),
			fieldUpdatedAt, formatTime(now))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to dead-letter job %s: %w", job.ID, err)
	}
	job.Status, job.LastError, job.UpdatedAt = StatusDead, errorText(cause), now
	return nil
}

// Retry schedules another attempt of job after delay.
func (q *RedisQueue) Retry(ctx context.Context, job *Job, delay time.Duration, cause error) error {
	now := q.now()
	readyAt := now.Add(delay)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processingKey(), 1, job.ID)
		pipe.ZAdd(ctx, q.delayedKey(), redis.Z{Score: float64(readyAt.UnixMilli()), Member: job.ID})
		pipe.HSet(ctx, q.jobKey(job.ID),
			fieldStatus, string(StatusRetrying),
			fieldError, errorText(cause),
			fieldReadyAt, formatTime(readyAt),
			fieldUpdatedAt, formatTime(now))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retry of job %s: %w", job.ID, err)
	}
	job.Status, job.LastError, job.UpdatedAt, job.ReadyAt = StatusRetrying, errorText(cause), now, &readyAt
	return nil
}

// promoteScript moves every delayed job due at ARGV[1] to the ready list and
// marks its record queued, in one step so a job is never outside both lists.
var promoteScript = redis.NewScript(`
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
for _, id in ipairs(ids) do
	redis.call('ZREM', KEYS[1], id)
	redis.call('LPUSH', KEYS[2], id)
	local key = ARGV[2] .. id
	redis.call('HSET', key, ARGV[3], ARGV[4], ARGV[5], ARGV[6])
	redis.call('HDEL', key, ARGV[7])
end
return #ids
`)

// PromoteDue moves delayed jobs whose retry time is not after now back to
// the ready list. Safe to run from several processes: the move is atomic, so
// each job is promoted exactly once.
func (q *RedisQueue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	n, err := promoteScript.Run(ctx, q.client,
		[]string{q.delayedKey(), q.readyKey()},
		strconv.FormatInt(now.UnixMilli(), 10),
		q.jobKey(""),
		fieldStatus, string(StatusQueued),
		fieldUpdatedAt, formatTime(q.now()),
		fieldReadyAt,
	).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to promote delayed jobs: %w", err)
	}
	return n, nil
}

// RecoverStalled returns every job left in the processing list to the ready
// list. Call it only while no consumer of this queue is running, typically at
// worker start-up after a crash.
func (q *RedisQueue) RecoverStalled(ctx context.Context) (int, error) {
	recovered := 0
	for {
		id, err := q.client.RPopLPush(ctx, q.processingKey(), q.readyKey()).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return recovered, nil
			}
			return recovered, fmt.Errorf("failed to recover stalled jobs: %w", err)
		}
		if err := q.client.HSet(ctx, q.jobKey(id), fieldStatus, string(StatusQueued), fieldUpdatedAt, formatTime(q.now())).Err(); err != nil {
			return recovered, fmt.Errorf("failed to reset job %s: %w", id, err)
		}
		recovered++
	}
}

// Status returns the current record of job id.
func (q *RedisQueue) Status(ctx context.Context, id string) (*Job, error) {
	fields, err := q.client.HGetAll(ctx, q.jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", id, err)
	}
	job, err := parseJob(id, fields)
	if err != nil && !errors.Is(err, ErrMalformedJob) {
		return nil, err
	}
	return job, nil
}

// DeadLetters lists up to limit dead job ids, newest first.
func (q *RedisQueue) DeadLetters(ctx context.Context, limit int64) ([]string, error) {
	ids, err := q.client.LRange(ctx, q.deadKey(), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list dead jobs: %w", err)
	}
	return ids, nil
}

func (q *RedisQueue) Stats(ctx context.Context) (*Stats, error) {
	var ready, processing, delayed, dead *redis.IntCmd
	_, err := q.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		ready = pipe.LLen(ctx, q.readyKey())
		processing = pipe.LLen(ctx, q.processingKey())
		delayed = pipe.ZCard(ctx, q.delayedKey())
		dead = pipe.LLen(ctx, q.deadKey())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read queue stats: %w", err)
	}
	return &Stats{
		Ready:      ready.Val(),
		Processing: processing.Val(),
		Delayed:    delayed.Val(),
		Dead:       dead.Val(),
	}, nil
}

func (q *RedisQueue) finish(ctx context.Context, job *Job, status Status, cause error) error {
	now := q.now()
	key := q.jobKey(job.ID)
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processingKey(), 1, job.ID)
		pipe.HSet(ctx, key,
			fieldStatus, string(status),
			fieldError, errorText(cause),
			fieldUpdatedAt, formatTime(now))
		pipe.Expire(ctx, key, q.retention)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to mark job %s %s: %w", job.ID, status, err)
	}
	job.Status, job.LastError, job.UpdatedAt = status, errorText(cause), now
	return nil
}

func parseJob(id string, fields map[string]string) (*Job, error) {
	if len(fields) == 0 || fields[fieldCommand] == "" {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}

	job := &Job{
		ID:        id,
		Kind:      fields[fieldKind],
		Status:    Status(fields[fieldStatus]),
		LastError: fields[fieldError],
	}
	job.Attempts, _ = strconv.Atoi(fields[fieldAttempts])
	job.MaxAttempts, _ = strconv.Atoi(fields[fieldMaxAttempts])
	job.EnqueuedAt = parseTime(fields[fieldEnqueuedAt])
	job.UpdatedAt = parseTime(fields[fieldUpdatedAt])
	if raw := fields[fieldReadyAt]; raw != "" {
		readyAt := parseTime(raw)
		job.ReadyAt = &readyAt
	}

	cmd, err := models.DecodeCommand([]byte(fields[fieldCommand]))
	if err != nil {
		return job, fmt.Errorf("%w %s: %v", ErrMalformedJob, id, err)
	}
	job.Command = cmd
	return job, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
