package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexomaset/journal-entries/internal/analyzer"
	"github.com/alexomaset/journal-entries/internal/database"
	"github.com/alexomaset/journal-entries/internal/models"
	"github.com/alexomaset/journal-entries/pkg/metrics"
)

// setupTestDB creates a throwaway PostgreSQL database for one test and
// returns its connection string. Tests skip when no server is reachable.
func setupTestDB(t *testing.T, testName string) (connStr string, cleanup func()) {
	t.Helper()

	host := getTestEnv("TEST_DB_HOST", "localhost")
	port := getTestEnv("TEST_DB_PORT", "5432")
	user := getTestEnv("TEST_DB_USER", "postgres")
	password := getTestEnv("TEST_DB_PASSWORD", "postgres")

	dbName := fmt.Sprintf("test_%s_%d", testName, time.Now().UnixNano())

	adminConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		host, port, user, password)

	adminDB, err := sql.Open("postgres", adminConnStr)
	if err != nil {
		t.Skipf("Could not connect to PostgreSQL for testing: %v (set TEST_DB_* env vars if needed)", err)
		return "", func() {}
	}
	defer adminDB.Close()

	if err := adminDB.Ping(); err != nil {
		t.Skipf("Could not ping PostgreSQL for testing: %v", err)
		return "", func() {}
	}

	if _, err := adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		t.Skipf("Could not create test database: %v", err)
		return "", func() {}
	}

	testConnStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbName)

	cleanup = func() {
		adminDB, err := sql.Open("postgres", adminConnStr)
		if err != nil {
			return
		}
		defer adminDB.Close()

		adminDB.Exec(fmt.Sprintf("SELECT pg_terminate_backend(pg_stat_activity.pid) FROM pg_stat_activity WHERE pg_stat_activity.datname = '%s'", dbName))
		adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName))
	}

	return testConnStr, cleanup
}

func getTestEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupTestWorker builds a worker on a throwaway database; the asynq server
// is left nil because the task handler is invoked directly
func setupTestWorker(t *testing.T) (*Worker, func()) {
	t.Helper()

	// Avoid metric registration conflicts between tests
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	connStr, dbCleanup := setupTestDB(t, "queue")

	db, err := database.New(connStr)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	w := &Worker{
		db:       db,
		analyzer: analyzer.New(),
		logger:   slog.Default(),
		business: metrics.NewBusinessMetrics("journal_queue_test"),
	}

	cleanup := func() {
		db.Close()
		dbCleanup()
	}

	return w, cleanup
}

func createTestEntry(t *testing.T, db *database.DB, mood models.Mood, tags []string) *models.Entry {
	t.Helper()

	now := time.Now().UTC()
	user := &models.User{
		ID:           fmt.Sprintf("user-%d", time.Now().UnixNano()),
		Username:     fmt.Sprintf("worker_%d", time.Now().UnixNano()),
		Email:        fmt.Sprintf("worker_%d@example.com", time.Now().UnixNano()),
		PasswordHash: "x",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, db.CreateUser(user))

	entry := &models.Entry{
		ID:        fmt.Sprintf("entry-%d", time.Now().UnixNano()),
		UserID:    user.ID,
		Title:     "Rough day",
		Content:   "Terrible, awful, horrible day at the office.",
		Mood:      mood,
		Tags:      tags,
		WordCount: 7,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.SaveEntry(entry))
	return entry
}

func runAnalyzeTask(t *testing.T, w *Worker, entryID, userID string) error {
	t.Helper()

	payloadBytes, err := json.Marshal(AnalyzeEntryPayload{
		EntryID:    entryID,
		UserID:     userID,
		EnqueuedAt: time.Now().UnixNano(),
	})
	require.NoError(t, err)

	return w.handleAnalyzeEntry(context.Background(), asynq.NewTask(TypeAnalyzeEntry, payloadBytes))
}

func TestHandleAnalyzeEntryDetectsMood(t *testing.T) {
	w, cleanup := setupTestWorker(t)
	defer cleanup()

	entry := createTestEntry(t, w.db, "", nil)

	require.NoError(t, runAnalyzeTask(t, w, entry.ID, entry.UserID))

	got, err := w.db.GetEntry(entry.ID, entry.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.MoodNegative, got.Mood)
}

func TestHandleAnalyzeEntryKeepsAuthorMood(t *testing.T) {
	w, cleanup := setupTestWorker(t)
	defer cleanup()

	// Content scores Negative, but the author already chose a mood
	entry := createTestEntry(t, w.db, models.MoodPositive, nil)

	require.NoError(t, runAnalyzeTask(t, w, entry.ID, entry.UserID))

	got, err := w.db.GetEntry(entry.ID, entry.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.MoodPositive, got.Mood)
}

func TestHandleAnalyzeEntryMergesThemeTags(t *testing.T) {
	w, cleanup := setupTestWorker(t)
	defer cleanup()

	entry := createTestEntry(t, w.db, "", []string{"work"})

	require.NoError(t, runAnalyzeTask(t, w, entry.ID, entry.UserID))

	got, err := w.db.GetEntry(entry.ID, entry.UserID)
	require.NoError(t, err)
	assert.Contains(t, got.Tags, "work")
	assert.Contains(t, got.Tags, "terrible")
	assert.Contains(t, got.Tags, "office")
}

func TestHandleAnalyzeEntryGoneEntry(t *testing.T) {
	w, cleanup := setupTestWorker(t)
	defer cleanup()

	// Deleted before the task ran; the task must not report failure
	assert.NoError(t, runAnalyzeTask(t, w, "missing-entry", "missing-user"))
}
