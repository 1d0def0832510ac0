package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alexomaset/journal-entries/internal/analyzer"
	"github.com/alexomaset/journal-entries/internal/api"
	"github.com/alexomaset/journal-entries/internal/auth"
	"github.com/alexomaset/journal-entries/internal/database"
	"github.com/alexomaset/journal-entries/internal/queue"
	"github.com/alexomaset/journal-entries/pkg/logging"
	"github.com/alexomaset/journal-entries/pkg/metrics"
	"github.com/alexomaset/journal-entries/pkg/tracing"
)

func main() {
	// Local development convenience; absent .env is fine
	_ = godotenv.Load()

	logFormat := getEnv("LOG_FORMAT", "json")
	logger := logging.NewLogger(logFormat)
	slog.SetDefault(logger)

	logger.Info("journal service initializing", "version", "1.0.0")

	// Initialize tracing
	tp, err := tracing.InitTracer("journal-entries")
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer", "error", err)
			}
		}()
		logger.Info("tracing initialized successfully")
	}

	// Get default values from environment variables, with fallbacks
	portDefault := getEnv("PORT", "8080")
	dbURLDefault := getEnv("DATABASE_URL",
		"host=localhost user=postgres password=postgres dbname=journal port=5432 sslmode=disable")
	redisAddrDefault := getEnv("REDIS_ADDR", "localhost:6379")
	workerDefault := getEnvBool("RUN_WORKER", true)

	var (
		port        = flag.String("port", portDefault, "Server port (env: PORT)")
		dbURL       = flag.String("db", dbURLDefault, "PostgreSQL connection string (env: DATABASE_URL)")
		redisAddr   = flag.String("redis", redisAddrDefault, "Redis address for the task queue (env: REDIS_ADDR)")
		runWorker   = flag.Bool("worker", workerDefault, "Run the analysis worker in-process (env: RUN_WORKER)")
		concurrency = flag.Int("concurrency", 4, "Worker concurrency")
	)
	flag.Parse()

	// Initialize database
	db, err := database.New(*dbURL)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database metrics
	dbMetrics := metrics.NewDatabaseMetrics("journal")
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			dbMetrics.UpdateDBStats(db.Conn())
		}
	}()

	httpMetrics := metrics.NewHTTPMetrics("journal")
	business := metrics.NewBusinessMetrics("journal")

	textAnalyzer := analyzer.New()
	authService := auth.NewService(db)

	// Expired sessions are swept in the background rather than on login
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if n, err := authService.PurgeExpired(); err != nil {
				logger.Error("failed to purge expired sessions", "error", err)
			} else if n > 0 {
				logger.Info("purged expired sessions", "count", n)
			}
		}
	}()

	// Queue client for enqueueing background analysis
	queueClient := queue.NewClient(queue.ClientConfig{RedisAddr: *redisAddr})
	defer queueClient.Close()

	// Optionally run the worker in the same process
	var worker *queue.Worker
	if *runWorker {
		worker = queue.NewWorker(queue.WorkerConfig{
			RedisAddr:   *redisAddr,
			Concurrency: *concurrency,
		}, db, textAnalyzer, business)

		go func() {
			if err := worker.Start(); err != nil {
				logger.Error("worker stopped", "error", err)
			}
		}()
	}

	// Initialize API handler
	apiHandler := api.NewHandler(db, textAnalyzer, authService, queueClient, business)

	// Middleware chain: HTTP logging -> metrics -> tracing -> handlers
	handler := logging.HTTPLoggingMiddleware(logger)(
		httpMetrics.Middleware(
			tracing.HTTPMiddleware("journal-entries")(apiHandler),
		),
	)

	srv := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("journal service starting",
			"port", *port,
			"redis", *redisAddr,
			"worker", *runWorker,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if worker != nil {
		worker.Shutdown()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
