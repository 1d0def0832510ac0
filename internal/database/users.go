package database

import (
	"database/sql"
	"fmt"

	"github.com/alexomaset/journal-entries/internal/models"
)

// CreateUser inserts a new user. Returns ErrDuplicate when the username or
// email is already taken.
func (db *DB) CreateUser(user *models.User) error {
	_, err := db.conn.Exec(`
		INSERT INTO users (id, username, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, user.ID, user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(id string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(`
		SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
}

// GetUserByUsername retrieves a user by username
func (db *DB) GetUserByUsername(username string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(`
		SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE username = $1
	`, username))
}

// GetUserByEmail retrieves a user by email
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	return scanUser(db.conn.QueryRow(`
		SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE email = $1
	`, email))
}

// ListUsers retrieves all users ordered by creation time
func (db *DB) ListUsers() ([]*models.User, error) {
	rows, err := db.conn.Query(`
		SELECT id, username, email, password_hash, is_admin, created_at, updated_at
		FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
			&user.IsAdmin, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return users, nil
}

// SetUserAdmin toggles the admin flag on a user
func (db *DB) SetUserAdmin(id string, isAdmin bool) error {
	result, err := db.conn.Exec(`
		UPDATE users SET is_admin = $1, updated_at = NOW() WHERE id = $2
	`, isAdmin, id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRowsAffected(result, "user")
}

// DeleteUser deletes a user and, via cascades, their sessions, categories
// and entries.
func (db *DB) DeleteUser(id string) error {
	result, err := db.conn.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRowsAffected(result, "user")
}

// requireRowsAffected converts a zero-row write into ErrNotFound
func requireRowsAffected(result sql.Result, subject string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", subject, ErrNotFound)
	}
	return nil
}
