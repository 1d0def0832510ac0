// Package auth implements password hashing and DB-backed login sessions.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alexomaset/journal-entries/internal/database"
	"github.com/alexomaset/journal-entries/internal/models"
)

// SessionTTL is how long a login session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_token"

// ErrInvalidCredentials is returned on login with a bad username or password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service issues and resolves sessions against the database.
type Service struct {
	db *database.DB
}

// NewService creates an auth service backed by db
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// Register creates a user with a bcrypt-hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" || email == "" || len(password) < 8 {
		return nil, fmt.Errorf("username, email and a password of at least 8 characters are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.db.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a session token. The username field
// also accepts the account email.
func (s *Service) Login(username, password string) (*models.User, *models.Session, error) {
	user, err := s.db.GetUserByUsername(username)
	if errors.Is(err, database.ErrNotFound) {
		user, err = s.db.GetUserByEmail(strings.ToLower(username))
	}
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.db.CreateSession(session); err != nil {
		return nil, nil, err
	}

	return user, session, nil
}

// Logout invalidates a session token. Unknown tokens are not an error.
func (s *Service) Logout(token string) error {
	err := s.db.DeleteSession(token)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	return err
}

// Resolve maps a session token to its user
func (s *Service) Resolve(token string) (*models.User, error) {
	session, err := s.db.GetSession(token)
	if err != nil {
		return nil, err
	}
	return s.db.GetUserByID(session.UserID)
}

// PurgeExpired removes expired sessions; meant to run periodically
func (s *Service) PurgeExpired() (int64, error) {
	return s.db.DeleteExpiredSessions()
}
