package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexomaset/journal-entries/internal/database"
	"github.com/alexomaset/journal-entries/internal/models"
)

// handleAnalyzeEntry analyzes a stored entry and persists the derived
// results: the detected mood when the author left it blank, and the
// extracted themes merged into the entry's tags.
func (w *Worker) handleAnalyzeEntry(ctx context.Context, t *asynq.Task) error {
	var payload AnalyzeEntryPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		w.logger.Error("failed to unmarshal task payload", "error", err)
		return fmt.Errorf("invalid task payload: %w", err)
	}

	var queueWaitTime time.Duration
	if payload.EnqueuedAt > 0 {
		queueWaitTime = time.Since(time.Unix(0, payload.EnqueuedAt))
	}

	w.logger.Info("analyzing entry",
		"entry_id", payload.EntryID,
		"queue_wait_seconds", queueWaitTime.Seconds(),
	)

	ctx, span := w.startTaskSpan(ctx, payload, queueWaitTime)
	if span != nil {
		defer span.End()
	}

	entry, err := w.db.GetEntry(payload.EntryID, payload.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Deleted before the task ran; nothing to do.
			w.logger.Info("entry gone, skipping analysis", "entry_id", payload.EntryID)
			return nil
		}
		return fmt.Errorf("failed to load entry: %w", err)
	}

	catalog, err := w.db.ListCategoriesForUser(payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}
	flat := make([]models.Category, 0, len(catalog))
	for _, c := range catalog {
		flat = append(flat, *c)
	}

	start := time.Now()
	result := w.analyzer.Analyze(entry.Content, flat)
	w.business.AnalysisRun("task", time.Since(start))

	if entry.Mood == "" {
		if err := w.db.SetEntryMood(entry.ID, result.Sentiment.Mood); err != nil {
			return fmt.Errorf("failed to store detected mood: %w", err)
		}
	}

	if len(result.Themes) > 0 {
		if err := w.db.MergeEntryTags(entry.ID, result.Themes); err != nil {
			return fmt.Errorf("failed to merge theme tags: %w", err)
		}
	}

	w.logger.Info("entry analysis completed",
		"entry_id", entry.ID,
		"mood", result.Sentiment.Mood,
		"themes", len(result.Themes),
	)

	return nil
}

// startTaskSpan reattaches the task to the trace that enqueued it, when the
// payload carries one.
func (w *Worker) startTaskSpan(ctx context.Context, payload AnalyzeEntryPayload,
	queueWaitTime time.Duration) (context.Context, trace.Span) {
	if payload.TraceID == "" || payload.SpanID == "" {
		return ctx, nil
	}

	traceID, err := trace.TraceIDFromHex(payload.TraceID)
	if err != nil {
		return ctx, nil
	}
	spanID, err := trace.SpanIDFromHex(payload.SpanID)
	if err != nil {
		return ctx, nil
	}

	remoteSpanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx = trace.ContextWithRemoteSpanContext(ctx, remoteSpanCtx)

	ctx, span := otel.Tracer("journal").Start(ctx, "asynq.task.process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("task.type", TypeAnalyzeEntry),
			attribute.String("entry.id", payload.EntryID),
			attribute.Float64("queue.wait_time_seconds", queueWaitTime.Seconds()),
			attribute.Int64("enqueued_at", payload.EnqueuedAt),
		),
	)
	span.AddEvent("task_processing_started", trace.WithAttributes(
		attribute.Float64("wait_time_seconds", queueWaitTime.Seconds()),
	))
	return ctx, span
}
