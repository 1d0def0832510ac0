package database

import (
	"database/sql"
	"fmt"

	"github.com/alexomaset/journal-entries/internal/models"
)

// CreateSession stores a login session
func (db *DB) CreateSession(session *models.Session) error {
	_, err := db.conn.Exec(`
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, session.Token, session.UserID, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves an unexpired session by token
func (db *DB) GetSession(token string) (*models.Session, error) {
	var session models.Session
	err := db.conn.QueryRow(`
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`, token).Scan(&session.Token, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// DeleteSession removes a session (logout)
func (db *DB) DeleteSession(token string) error {
	result, err := db.conn.Exec("DELETE FROM sessions WHERE token = $1", token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return requireRowsAffected(result, "session")
}

// DeleteExpiredSessions purges sessions past their expiry and returns the
// number removed
func (db *DB) DeleteExpiredSessions() (int64, error) {
	result, err := db.conn.Exec("DELETE FROM sessions WHERE expires_at <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
