package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexomaset/journal-entries/internal/auth"
	"github.com/alexomaset/journal-entries/internal/database"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleRegister creates an account and logs it in
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			respondError(w, "username or email already taken", http.StatusConflict)
			return
		}
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, session, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, session.Token)
	respondJSON(w, map[string]interface{}{
		"user":  user,
		"token": session.Token,
	}, http.StatusCreated)
}

// handleLogin verifies credentials and issues a session
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	username := req.Username
	if username == "" {
		username = req.Email
	}

	user, session, err := h.auth.Login(username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, "invalid username or password", http.StatusUnauthorized)
			return
		}
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, session.Token)
	respondJSON(w, map[string]interface{}{
		"user":  user,
		"token": session.Token,
	}, http.StatusOK)
}

// handleLogout invalidates the current session
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if token := auth.TokenFromRequest(r); token != "" {
		if err := h.auth.Logout(token); err != nil {
			respondError(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the authenticated user
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, auth.UserFromContext(r.Context()), http.StatusOK)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
