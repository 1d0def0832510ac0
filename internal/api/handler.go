package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/alexomaset/journal-entries/internal/analyzer"
	"github.com/alexomaset/journal-entries/internal/auth"
	"github.com/alexomaset/journal-entries/internal/database"
	"github.com/alexomaset/journal-entries/pkg/metrics"
)

// QueueClient enqueues background analysis of a saved entry. A nil client
// disables background analysis without affecting entry writes.
type QueueClient interface {
	EnqueueAnalyzeEntry(ctx context.Context, entryID, userID string) (string, error)
}

// Handler handles HTTP requests
type Handler struct {
	db          *database.DB
	analyzer    *analyzer.Analyzer
	auth        *auth.Service
	queueClient QueueClient
	business    *metrics.BusinessMetrics
	mux         *http.ServeMux
}

// NewHandler creates the API handler with CORS support
func NewHandler(db *database.DB, textAnalyzer *analyzer.Analyzer, authService *auth.Service,
	queueClient QueueClient, business *metrics.BusinessMetrics) http.Handler {
	h := &Handler{
		db:          db,
		analyzer:    textAnalyzer,
		auth:        authService,
		queueClient: queueClient,
		business:    business,
		mux:         http.NewServeMux(),
	}

	h.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(h.mux)
}

// setupRoutes configures all API routes
func (h *Handler) setupRoutes() {
	h.mux.Handle("/metrics", promhttp.Handler())
	h.mux.HandleFunc("/health", h.handleHealth)

	h.mux.HandleFunc("/api/auth/register", h.handleRegister)
	h.mux.HandleFunc("/api/auth/login", h.handleLogin)
	h.mux.HandleFunc("/api/auth/logout", h.handleLogout)
	h.mux.Handle("/api/auth/me", h.auth.Middleware(http.HandlerFunc(h.handleMe)))

	h.mux.Handle("/api/entries", h.auth.Middleware(http.HandlerFunc(h.handleEntries)))
	h.mux.Handle("/api/entries/", h.auth.Middleware(http.HandlerFunc(h.handleEntryOperations)))
	h.mux.Handle("/api/categories", h.auth.Middleware(http.HandlerFunc(h.handleCategories)))
	h.mux.Handle("/api/categories/", h.auth.Middleware(http.HandlerFunc(h.handleCategoryOperations)))
	h.mux.Handle("/api/tags", h.auth.Middleware(http.HandlerFunc(h.handleTags)))
	h.mux.Handle("/api/stats", h.auth.Middleware(http.HandlerFunc(h.handleStats)))
	h.mux.Handle("/api/analyze", h.auth.Middleware(http.HandlerFunc(h.handleAnalyze)))

	h.mux.Handle("/api/admin/users", h.auth.AdminMiddleware(http.HandlerFunc(h.handleAdminUsers)))
	h.mux.Handle("/api/admin/users/", h.auth.AdminMiddleware(http.HandlerFunc(h.handleAdminUserOperations)))
	h.mux.Handle("/api/admin/categories", h.auth.AdminMiddleware(http.HandlerFunc(h.handleAdminCategories)))
	h.mux.Handle("/api/admin/categories/", h.auth.AdminMiddleware(http.HandlerFunc(h.handleAdminCategoryOperations)))
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// respondStorageError maps database sentinel errors onto HTTP statuses
func respondStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, database.ErrDuplicate):
		respondError(w, err.Error(), http.StatusConflict)
	default:
		respondError(w, err.Error(), http.StatusInternalServerError)
	}
}
