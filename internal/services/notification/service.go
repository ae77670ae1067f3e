// Package notification publishes the outcome of executed wallet commands.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"walletd/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// JobOutcome is the event emitted once a queued command reaches a terminal
// state.
type JobOutcome struct {
	JobID      string    `json:"job_id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	Reference  string    `json:"reference"`
	Attempts   int       `json:"attempts"`
	Replayed   bool      `json:"replayed,omitempty"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Service publishes outcomes to Kafka, or only logs them when no writer is
// configured.
type Service struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewKafkaWriter returns a nil MessageWriter when no brokers are configured.
func NewKafkaWriter(cfg config.KafkaConfig) MessageWriter {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OutcomeTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// NewService creates a notification service. A nil writer makes every
// publish a log line.
func NewService(writer MessageWriter) *Service {
	return &Service{writer: writer, timeout: 10 * time.Second}
}

// PublishOutcome emits outcome keyed by its reference, so every event about
// one command lands on the same partition.
func (s *Service) PublishOutcome(ctx context.Context, outcome JobOutcome) error {
	if outcome.OccurredAt.IsZero() {
		outcome.OccurredAt = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.String("job_id", outcome.JobID),
		zap.String("kind", outcome.Kind),
		zap.String("status", outcome.Status),
		zap.String("reference", outcome.Reference),
		zap.Int("attempts", outcome.Attempts),
	}
	if outcome.Error != "" {
		fields = append(fields, zap.String("error", outcome.Error))
	}

	if s.writer == nil {
		zap.L().Info("job outcome", fields...)
		return nil
	}

	value, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal job outcome: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(outcome.Reference),
		Value: value,
		Time:  outcome.OccurredAt,
	})
	if err != nil {
		zap.L().Error("failed to publish job outcome", append(fields, zap.Error(err))...)
		return fmt.Errorf("failed to publish job outcome: %w", err)
	}
	return nil
}

func (s *Service) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close()
}
