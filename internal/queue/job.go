// Package queue is a durable job queue on Redis. Jobs move between a ready
// list, a processing list, a delayed set and a dead-letter list; each job's
// state lives in its own hash so that callers can poll it by id.
//
// Delivery is at-least-once: a job that was dequeued but never acknowledged
// is handed out again by RecoverStalled. Consumers must be idempotent.
package queue

import (
	"errors"
	"time"

	"walletd/internal/models"
)

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusRetrying   Status = "retrying"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusDead       Status = "dead"
)

// Terminal reports whether no further processing will happen.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusDead
}

var (
	ErrNoJob        = errors.New("queue: no job ready")
	ErrJobNotFound  = errors.New("queue: job not found")
	ErrMalformedJob = errors.New("queue: malformed job")
)

// Job is one queued command and its delivery state.
type Job struct {
	ID          string         `json:"id"`
	Kind        string         `json:"kind"`
	Command     models.Command `json:"-"`
	Status      Status         `json:"status"`
	Attempts    int            `json:"attempts"`
	MaxAttempts int            `json:"max_attempts"`
	LastError   string         `json:"last_error,omitempty"`
	EnqueuedAt  time.Time      `json:"enqueued_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ReadyAt     *time.Time     `json:"ready_at,omitempty"`
}

// AttemptsLeft reports whether a failed attempt may be retried.
func (j *Job) AttemptsLeft() bool {
	return j.Attempts < j.MaxAttempts
}

// Stats is a point-in-time count of jobs per list.
type Stats struct {
	Ready      int64 `json:"ready"`
	Processing int64 `json:"processing"`
	Delayed    int64 `json:"delayed"`
	Dead       int64 `json:"dead"`
}
