package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/alexomaset/journal-entries/internal/auth"
	"github.com/alexomaset/journal-entries/internal/models"
	"github.com/alexomaset/journal-entries/pkg/tracing"
)

type analyzeRequest struct {
	Content string `json:"content"`
}

// handleAnalyze runs content analysis on demand, without persisting anything.
// The category catalog is the caller's own plus the global set, so
// recommendations line up with what the entry editor offers.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := auth.UserFromContext(r.Context())

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, "Content field is required", http.StatusBadRequest)
		return
	}

	catalog, err := h.db.ListCategoriesForUser(user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	start := time.Now()
	result := h.analyzer.Analyze(req.Content, derefCategories(catalog))
	h.business.AnalysisRun("request", time.Since(start))

	tracing.SetSpanAttributes(r.Context(),
		attribute.String("analysis.mood", string(result.Sentiment.Mood)),
		attribute.Int("analysis.word_count", result.WordCount),
	)

	respondJSON(w, result, http.StatusOK)
}

// handleTags lists the user's tags with usage counts
func (h *Handler) handleTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := auth.UserFromContext(r.Context())

	tags, err := h.db.ListTags(user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if tags == nil {
		tags = []models.TagCount{}
	}
	respondJSON(w, tags, http.StatusOK)
}

// handleStats returns aggregate statistics for the user's journal
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := auth.UserFromContext(r.Context())

	stats, err := h.db.GetStats(user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, stats, http.StatusOK)
}

// derefCategories flattens the storage layer's pointer slice for the analyzer
func derefCategories(categories []*models.Category) []models.Category {
	out := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		out = append(out, *c)
	}
	return out
}
