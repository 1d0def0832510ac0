package database

import (
	"database/sql"
	"fmt"

	"github.com/alexomaset/journal-entries/internal/models"
)

// CreateCategory inserts a category. A category with an empty UserID is
// global. Returns ErrDuplicate when the (user, name) pair already exists.
func (db *DB) CreateCategory(category *models.Category) error {
	userID := sql.NullString{String: category.UserID, Valid: category.UserID != ""}
	_, err := db.conn.Exec(`
		INSERT INTO categories (id, user_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, category.ID, userID, category.Name, category.Color, category.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by ID
func (db *DB) GetCategory(id string) (*models.Category, error) {
	var (
		category models.Category
		userID   sql.NullString
	)
	err := db.conn.QueryRow(`
		SELECT id, user_id, name, color, created_at
		FROM categories WHERE id = $1
	`, id).Scan(&category.ID, &userID, &category.Name, &category.Color, &category.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	category.UserID = userID.String
	category.IsGlobal = !userID.Valid
	return &category, nil
}

// ListCategoriesForUser retrieves the user's categories plus all global
// categories, each with its entry count for this user.
func (db *DB) ListCategoriesForUser(userID string) ([]*models.Category, error) {
	rows, err := db.conn.Query(`
		SELECT c.id, c.user_id, c.name, c.color, c.created_at,
			COUNT(e.id) AS entry_count
		FROM categories c
		LEFT JOIN entries e ON e.category_id = c.id AND e.user_id = $1
		WHERE c.user_id = $1 OR c.user_id IS NULL
		GROUP BY c.id, c.user_id, c.name, c.color, c.created_at
		ORDER BY c.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

// ListGlobalCategories retrieves admin-managed global categories
func (db *DB) ListGlobalCategories() ([]*models.Category, error) {
	rows, err := db.conn.Query(`
		SELECT id, user_id, name, color, created_at, 0 AS entry_count
		FROM categories
		WHERE user_id IS NULL
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query global categories: %w", err)
	}
	defer rows.Close()

	return scanCategories(rows)
}

func scanCategories(rows *sql.Rows) ([]*models.Category, error) {
	var categories []*models.Category
	for rows.Next() {
		var (
			category models.Category
			userID   sql.NullString
		)
		if err := rows.Scan(&category.ID, &userID, &category.Name, &category.Color,
			&category.CreatedAt, &category.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		category.UserID = userID.String
		category.IsGlobal = !userID.Valid
		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

// UpdateCategory renames or recolors a category
func (db *DB) UpdateCategory(category *models.Category) error {
	result, err := db.conn.Exec(`
		UPDATE categories SET name = $1, color = $2 WHERE id = $3
	`, category.Name, category.Color, category.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("category: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireRowsAffected(result, "category")
}

// DeleteCategory removes a category; entries keep existing but lose the
// category reference (ON DELETE SET NULL).
func (db *DB) DeleteCategory(id string) error {
	result, err := db.conn.Exec("DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRowsAffected(result, "category")
}
