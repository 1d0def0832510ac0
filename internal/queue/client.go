// Package queue runs background analysis of journal entries on Asynq.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Task type constants
const (
	TypeAnalyzeEntry = "journal:analyze_entry"
)

// AnalyzeEntryPayload carries everything the worker needs to analyze an
// entry. The content itself is not included; the worker reloads the entry so
// it always analyzes the latest revision.
type AnalyzeEntryPayload struct {
	EntryID string `json:"entry_id"`
	UserID  string `json:"user_id"`
	// Tracing and timing fields
	TraceID    string `json:"trace_id,omitempty"`
	SpanID     string `json:"span_id,omitempty"`
	EnqueuedAt int64  `json:"enqueued_at"` // Unix timestamp in nanoseconds
}

// Client wraps the Asynq client for enqueueing tasks
type Client struct {
	client *asynq.Client
}

// ClientConfig contains configuration for the queue client
type ClientConfig struct {
	RedisAddr string
}

// NewClient creates a new queue client
func NewClient(cfg ClientConfig) *Client {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	return &Client{
		client: asynq.NewClient(redisOpt),
	}
}

// EnqueueAnalyzeEntry enqueues background analysis for a saved entry. Using
// the entry ID as task ID deduplicates rapid successive edits: while a task
// for the entry is still pending, re-enqueueing is a no-op.
func (c *Client) EnqueueAnalyzeEntry(ctx context.Context, entryID, userID string) (string, error) {
	payload := AnalyzeEntryPayload{
		EntryID:    entryID,
		UserID:     userID,
		EnqueuedAt: time.Now().UnixNano(),
	}

	// Propagate tracing context if available
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		spanCtx := span.SpanContext()
		payload.TraceID = spanCtx.TraceID().String()
		payload.SpanID = spanCtx.SpanID().String()

		span.AddEvent("task_enqueued", trace.WithAttributes(
			attribute.String("task.type", TypeAnalyzeEntry),
			attribute.String("entry_id", entryID),
			attribute.Int64("enqueued_at", payload.EnqueuedAt),
		))
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeAnalyzeEntry, payloadBytes, asynq.TaskID(entryID))

	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(1 * time.Minute),
		asynq.Queue("analysis"),
		asynq.Retention(24 * time.Hour),
	}

	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			// A task for this entry is already pending; it will pick up
			// the latest revision when it runs.
			return entryID, nil
		}
		return "", fmt.Errorf("failed to enqueue analyze entry task: %w", err)
	}

	return info.ID, nil
}

// Close closes the client connection
func (c *Client) Close() error {
	return c.client.Close()
}
