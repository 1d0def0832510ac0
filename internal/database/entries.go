package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexomaset/journal-entries/internal/models"
)

// EntryFilter narrows ListEntries results. Zero values mean "no filter".
type EntryFilter struct {
	CategoryID string
	Tag        string
	Search     string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// SaveEntry inserts an entry and its tags in one transaction
func (db *DB) SaveEntry(entry *models.Entry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	categoryID := sql.NullString{String: entry.CategoryID, Valid: entry.CategoryID != ""}
	_, err = tx.Exec(`
		INSERT INTO entries (id, user_id, category_id, title, content, mood, word_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.UserID, categoryID, entry.Title, entry.Content, string(entry.Mood),
		entry.WordCount, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	if err := insertTags(tx, entry.ID, entry.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateEntry rewrites an entry's mutable fields and replaces its tags.
// Scoped to the owning user.
func (db *DB) UpdateEntry(entry *models.Entry) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	categoryID := sql.NullString{String: entry.CategoryID, Valid: entry.CategoryID != ""}
	result, err := tx.Exec(`
		UPDATE entries
		SET category_id = $1, title = $2, content = $3, mood = $4, word_count = $5, updated_at = $6
		WHERE id = $7 AND user_id = $8
	`, categoryID, entry.Title, entry.Content, string(entry.Mood), entry.WordCount,
		entry.UpdatedAt, entry.ID, entry.UserID)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if err := requireRowsAffected(result, "entry"); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM entry_tags WHERE entry_id = $1", entry.ID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	if err := insertTags(tx, entry.ID, entry.Tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertTags(tx *sql.Tx, entryID string, tags []string) error {
	for _, tag := range tags {
		_, err := tx.Exec(`
			INSERT INTO entry_tags (entry_id, tag)
			VALUES ($1, $2)
			ON CONFLICT (entry_id, tag) DO NOTHING
		`, entryID, tag)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}
	return nil
}

// GetEntry retrieves an entry with its tags, scoped to the owning user
func (db *DB) GetEntry(id, userID string) (*models.Entry, error) {
	var (
		entry      models.Entry
		categoryID sql.NullString
		mood       string
	)
	err := db.conn.QueryRow(`
		SELECT id, user_id, category_id, title, content, mood, word_count, created_at, updated_at
		FROM entries
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&entry.ID, &entry.UserID, &categoryID, &entry.Title, &entry.Content,
		&mood, &entry.WordCount, &entry.CreatedAt, &entry.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entry: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	entry.CategoryID = categoryID.String
	entry.Mood = models.Mood(mood)

	tags, err := db.entryTags(entry.ID)
	if err != nil {
		return nil, err
	}
	entry.Tags = tags

	return &entry, nil
}

// ListEntries retrieves a user's entries newest first, applying the filter
func (db *DB) ListEntries(userID string, filter EntryFilter) ([]*models.Entry, error) {
	query := strings.Builder{}
	query.WriteString(`
		SELECT DISTINCT e.id, e.user_id, e.category_id, e.title, e.content, e.mood,
			e.word_count, e.created_at, e.updated_at
		FROM entries e
	`)
	args := []interface{}{userID}
	if filter.Tag != "" {
		query.WriteString(" INNER JOIN entry_tags t ON t.entry_id = e.id")
	}
	query.WriteString(" WHERE e.user_id = $1")

	if filter.Tag != "" {
		args = append(args, filter.Tag)
		fmt.Fprintf(&query, " AND t.tag = $%d", len(args))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		fmt.Fprintf(&query, " AND e.category_id = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		fmt.Fprintf(&query, " AND (e.title ILIKE $%d OR e.content ILIKE $%d)", len(args), len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		fmt.Fprintf(&query, " AND e.created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		fmt.Fprintf(&query, " AND e.created_at < $%d", len(args))
	}

	query.WriteString(" ORDER BY e.created_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit)
	fmt.Fprintf(&query, " LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	fmt.Fprintf(&query, " OFFSET $%d", len(args))

	rows, err := db.conn.Query(query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		var (
			entry      models.Entry
			categoryID sql.NullString
			mood       string
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &categoryID, &entry.Title, &entry.Content,
			&mood, &entry.WordCount, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entry.CategoryID = categoryID.String
		entry.Mood = models.Mood(mood)
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, entry := range entries {
		tags, err := db.entryTags(entry.ID)
		if err != nil {
			return nil, err
		}
		entry.Tags = tags
	}

	return entries, nil
}

// DeleteEntry removes an entry and its tags, scoped to the owning user
func (db *DB) DeleteEntry(id, userID string) error {
	result, err := db.conn.Exec("DELETE FROM entries WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	return requireRowsAffected(result, "entry")
}

// SetEntryMood persists an analyzer-derived mood onto an entry
func (db *DB) SetEntryMood(id string, mood models.Mood) error {
	result, err := db.conn.Exec(`
		UPDATE entries SET mood = $1, updated_at = NOW() WHERE id = $2
	`, string(mood), id)
	if err != nil {
		return fmt.Errorf("failed to set mood: %w", err)
	}
	return requireRowsAffected(result, "entry")
}

// MergeEntryTags adds tags to an entry, skipping ones already present
func (db *DB) MergeEntryTags(id string, tags []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertTags(tx, id, tags); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListTags retrieves a user's tags with usage counts, most used first
func (db *DB) ListTags(userID string) ([]models.TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT t.tag, COUNT(*) AS count
		FROM entry_tags t
		INNER JOIN entries e ON e.id = t.entry_id
		WHERE e.user_id = $1
		GROUP BY t.tag
		ORDER BY count DESC, t.tag
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []models.TagCount{}
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		tags = append(tags, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tags, nil
}

// entryTags loads the tags for one entry in insertion order
func (db *DB) entryTags(entryID string) ([]string, error) {
	rows, err := db.conn.Query("SELECT tag FROM entry_tags WHERE entry_id = $1 ORDER BY id", entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tags, nil
}
