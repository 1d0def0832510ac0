package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexomaset/journal-entries/internal/auth"
	"github.com/alexomaset/journal-entries/internal/database"
	"github.com/alexomaset/journal-entries/internal/models"
)

type entryRequest struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	CategoryID string   `json:"category_id"`
	Mood       string   `json:"mood"`
	Tags       []string `json:"tags"`
}

// handleEntries handles listing and creating entries
func (h *Handler) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listEntries(w, r)
	case http.MethodPost:
		h.createEntry(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listEntries lists the user's entries with optional filters
func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	q := r.URL.Query()

	filter := database.EntryFilter{
		CategoryID: q.Get("category"),
		Tag:        q.Get("tag"),
		Search:     q.Get("q"),
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	if fromStr := q.Get("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			filter.From = from
		}
	}
	if toStr := q.Get("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			filter.To = to.Add(24 * time.Hour)
		}
	}

	entries, err := h.db.ListEntries(user.ID, filter)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if entries == nil {
		entries = []*models.Entry{}
	}
	respondJSON(w, entries, http.StatusOK)
}

// createEntry stores a new entry and queues its background analysis
func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, "Content field is required", http.StatusBadRequest)
		return
	}
	if !h.validateEntryFields(w, user.ID, &req) {
		return
	}

	now := time.Now().UTC()
	entry := &models.Entry{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		CategoryID: req.CategoryID,
		Title:      strings.TrimSpace(req.Title),
		Content:    req.Content,
		Mood:       models.Mood(req.Mood),
		Tags:       normalizeTags(req.Tags),
		WordCount:  len(strings.Fields(req.Content)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.db.SaveEntry(entry); err != nil {
		respondStorageError(w, err)
		return
	}

	h.business.EntryCreated()
	h.enqueueAnalysis(r, entry)

	respondJSON(w, entry, http.StatusCreated)
}

// handleEntryOperations handles GET, PUT and DELETE for a specific entry
func (h *Handler) handleEntryOperations(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/entries/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, "Entry ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getEntry(w, r, id)
	case http.MethodPut:
		h.updateEntry(w, r, id)
	case http.MethodDelete:
		h.deleteEntry(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request, id string) {
	user := auth.UserFromContext(r.Context())

	entry, err := h.db.GetEntry(id, user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, entry, http.StatusOK)
}

func (h *Handler) updateEntry(w http.ResponseWriter, r *http.Request, id string) {
	user := auth.UserFromContext(r.Context())

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, "Content field is required", http.StatusBadRequest)
		return
	}
	if !h.validateEntryFields(w, user.ID, &req) {
		return
	}

	entry, err := h.db.GetEntry(id, user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	entry.Title = strings.TrimSpace(req.Title)
	entry.Content = req.Content
	entry.CategoryID = req.CategoryID
	entry.Mood = models.Mood(req.Mood)
	entry.Tags = normalizeTags(req.Tags)
	entry.WordCount = len(strings.Fields(req.Content))
	entry.UpdatedAt = time.Now().UTC()

	if err := h.db.UpdateEntry(entry); err != nil {
		respondStorageError(w, err)
		return
	}

	h.enqueueAnalysis(r, entry)

	respondJSON(w, entry, http.StatusOK)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request, id string) {
	user := auth.UserFromContext(r.Context())

	if err := h.db.DeleteEntry(id, user.ID); err != nil {
		respondStorageError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateEntryFields checks the optional mood and category of an entry
// request, writing the error response itself. Reports whether the request
// may proceed.
func (h *Handler) validateEntryFields(w http.ResponseWriter, userID string, req *entryRequest) bool {
	if req.Mood != "" && !models.Mood(req.Mood).Valid() {
		respondError(w, "unknown mood", http.StatusBadRequest)
		return false
	}
	if req.CategoryID != "" {
		category, err := h.db.GetCategory(req.CategoryID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				respondError(w, "unknown category", http.StatusBadRequest)
				return false
			}
			respondStorageError(w, err)
			return false
		}
		if !category.IsGlobal && category.UserID != userID {
			respondError(w, "category does not belong to you", http.StatusForbidden)
			return false
		}
	}
	return true
}

// enqueueAnalysis schedules background analysis of a saved entry. Queue
// failures are logged, never surfaced: entry writes must not depend on
// Redis being up.
func (h *Handler) enqueueAnalysis(r *http.Request, entry *models.Entry) {
	if h.queueClient == nil {
		return
	}
	if _, err := h.queueClient.EnqueueAnalyzeEntry(r.Context(), entry.ID, entry.UserID); err != nil {
		slog.Warn("failed to enqueue entry analysis",
			"entry_id", entry.ID,
			"error", err,
		)
	}
}

// normalizeTags lower-cases, trims and deduplicates tags, keeping order
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		normalized = append(normalized, tag)
	}
	return normalized
}
