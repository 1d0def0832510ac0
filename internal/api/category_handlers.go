package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexomaset/journal-entries/internal/auth"
	"github.com/alexomaset/journal-entries/internal/models"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// handleCategories handles listing and creating the user's categories
func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listCategories(w, r)
	case http.MethodPost:
		h.createCategory(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// listCategories returns the user's categories merged with global ones
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	categories, err := h.db.ListCategoriesForUser(user.ID)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	respondJSON(w, categories, http.StatusOK)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, "Name field is required", http.StatusBadRequest)
		return
	}

	category := &models.Category{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Name:      req.Name,
		Color:     req.Color,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.db.CreateCategory(category); err != nil {
		respondStorageError(w, err)
		return
	}
	respondJSON(w, category, http.StatusCreated)
}

// handleCategoryOperations handles PUT and DELETE for a specific category.
// Global categories are read-only here; they are managed through the admin
// endpoints.
func (h *Handler) handleCategoryOperations(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/categories/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, "Category ID is required", http.StatusBadRequest)
		return
	}

	user := auth.UserFromContext(r.Context())

	category, err := h.db.GetCategory(id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if category.IsGlobal || category.UserID != user.ID {
		respondError(w, "category does not belong to you", http.StatusForbidden)
		return
	}

	switch r.Method {
	case http.MethodGet:
		respondJSON(w, category, http.StatusOK)
	case http.MethodPut:
		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			respondError(w, "Name field is required", http.StatusBadRequest)
			return
		}
		category.Name = req.Name
		category.Color = req.Color
		if err := h.db.UpdateCategory(category); err != nil {
			respondStorageError(w, err)
			return
		}
		respondJSON(w, category, http.StatusOK)
	case http.MethodDelete:
		if err := h.db.DeleteCategory(id); err != nil {
			respondStorageError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
