package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/alexomaset/journal-entries/internal/analyzer"
	"github.com/alexomaset/journal-entries/internal/database"
	"github.com/alexomaset/journal-entries/pkg/metrics"
)

// Worker wraps the Asynq server for processing tasks
type Worker struct {
	server      *asynq.Server
	mux         *asynq.ServeMux
	db          *database.DB
	analyzer    *analyzer.Analyzer
	concurrency int
	logger      *slog.Logger
	business    *metrics.BusinessMetrics
}

// WorkerConfig contains configuration for the queue worker
type WorkerConfig struct {
	RedisAddr   string
	Concurrency int
}

// NewWorker creates a new queue worker
func NewWorker(cfg WorkerConfig, db *database.DB, textAnalyzer *analyzer.Analyzer,
	business *metrics.BusinessMetrics) *Worker {
	redisOpt := asynq.RedisClientOpt{
		Addr: cfg.RedisAddr,
	}

	serverCfg := asynq.Config{
		Concurrency: cfg.Concurrency,

		Queues: map[string]int{
			"analysis": 5,
		},

		RetryDelayFunc: retryDelay,

		ShutdownTimeout: 30 * time.Second,

		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)

			slog.Error("task processing error",
				"task_type", task.Type(),
				"error", err,
				"retry_count", retried,
				"max_retries", maxRetry,
			)
		}),
	}

	w := &Worker{
		server:      asynq.NewServer(redisOpt, serverCfg),
		mux:         asynq.NewServeMux(),
		db:          db,
		analyzer:    textAnalyzer,
		concurrency: cfg.Concurrency,
		logger:      slog.Default(),
		business:    business,
	}

	w.mux.HandleFunc(TypeAnalyzeEntry, w.handleAnalyzeEntry)

	return w
}

// retryDelay backs off quickly; analysis tasks fail almost only when the
// database is down, and a few short retries cover a restart.
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	delays := []time.Duration{
		30 * time.Second,
		2 * time.Minute,
		10 * time.Minute,
	}
	if n < len(delays) {
		return delays[n]
	}
	return delays[len(delays)-1]
}

// Start starts the worker to begin processing tasks. Blocks until shutdown.
func (w *Worker) Start() error {
	w.logger.Info("starting asynq worker", "concurrency", w.concurrency)

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("asynq server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the worker
func (w *Worker) Shutdown() {
	w.logger.Info("shutting down asynq worker")
	w.server.Shutdown()
}
