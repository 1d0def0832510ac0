package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexomaset/journal-entries/internal/models"
)

type contextKey string

const userContextKey contextKey = "auth.user"

// UserFromContext returns the authenticated user placed by Middleware, or
// nil outside an authenticated request.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// TokenFromRequest extracts the session token from the session cookie or an
// Authorization: Bearer header
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return ""
}

// Middleware resolves the request's session to a user and stores it on the
// context. Requests without a valid session get 401.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			unauthorized(w)
			return
		}

		user, err := s.Resolve(token)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware requires an authenticated admin; layer it after Middleware
func (s *Service) AdminMiddleware(next http.Handler) http.Handler {
	return s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := UserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"admin access required"}`))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"authentication required"}`))
}
