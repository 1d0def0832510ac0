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

// handleAdminUsers lists all accounts
func (h *Handler) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	users, err := h.db.ListUsers()
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	respondJSON(w, users, http.StatusOK)
}

type adminUserRequest struct {
	IsAdmin bool `json:"is_admin"`
}

// handleAdminUserOperations handles GET, PUT (admin flag) and DELETE for a
// specific account
func (h *Handler) handleAdminUserOperations(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, "User ID is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := h.db.GetUserByID(id)
		if err != nil {
			respondStorageError(w, err)
			return
		}
		respondJSON(w, user, http.StatusOK)
	case http.MethodPut:
		var req adminUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := h.db.SetUserAdmin(id, req.IsAdmin); err != nil {
			respondStorageError(w, err)
			return
		}
		user, err := h.db.GetUserByID(id)
		if err != nil {
			respondStorageError(w, err)
			return
		}
		respondJSON(w, user, http.StatusOK)
	case http.MethodDelete:
		// Admins cannot delete themselves; locking every admin out by
		// accident is too easy otherwise.
		if caller := auth.UserFromContext(r.Context()); caller != nil && caller.ID == id {
			respondError(w, "cannot delete your own account", http.StatusBadRequest)
			return
		}
		if err := h.db.DeleteUser(id); err != nil {
			respondStorageError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAdminCategories handles listing and creating global categories
func (h *Handler) handleAdminCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := h.db.ListGlobalCategories()
		if err != nil {
			respondStorageError(w, err)
			return
		}
		if categories == nil {
			categories = []*models.Category{}
		}
		respondJSON(w, categories, http.StatusOK)
	case http.MethodPost:
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
			Name:      req.Name,
			Color:     req.Color,
			IsGlobal:  true,
			CreatedAt: time.Now().UTC(),
		}
		if err := h.db.CreateCategory(category); err != nil {
			respondStorageError(w, err)
			return
		}
		respondJSON(w, category, http.StatusCreated)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAdminCategoryOperations handles PUT and DELETE for a global category
func (h *Handler) handleAdminCategoryOperations(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/admin/categories/")
	if id == "" || strings.Contains(id, "/") {
		respondError(w, "Category ID is required", http.StatusBadRequest)
		return
	}

	category, err := h.db.GetCategory(id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	if !category.IsGlobal {
		respondError(w, "not a global category", http.StatusBadRequest)
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
