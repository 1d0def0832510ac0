package database

import (
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations contains all PostgreSQL database migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_schema_version_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at TIMESTAMPTZ DEFAULT NOW()
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_users_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				username TEXT NOT NULL UNIQUE,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				is_admin BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				updated_at TIMESTAMPTZ DEFAULT NOW()
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_sessions_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS sessions (
				token TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				expires_at TIMESTAMPTZ NOT NULL,
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
			CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
		`,
	},
	{
		Version: 4,
		Name:    "create_categories_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS categories (
				id TEXT PRIMARY KEY,
				user_id TEXT,
				name TEXT NOT NULL,
				color TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMPTZ DEFAULT NOW(),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				UNIQUE (user_id, name)
			);
			CREATE INDEX IF NOT EXISTS idx_categories_user_id ON categories(user_id);
		`,
	},
	{
		Version: 5,
		Name:    "create_entries_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS entries (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				category_id TEXT,
				title TEXT NOT NULL,
				content TEXT NOT NULL,
				mood TEXT NOT NULL DEFAULT '',
				word_count INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ DEFAULT NOW(),
				updated_at TIMESTAMPTZ DEFAULT NOW(),
				FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
				FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE SET NULL
			);
			CREATE INDEX IF NOT EXISTS idx_entries_user_id ON entries(user_id);
			CREATE INDEX IF NOT EXISTS idx_entries_category_id ON entries(category_id);
			CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
		`,
	},
	{
		Version: 6,
		Name:    "create_entry_tags_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS entry_tags (
				id SERIAL PRIMARY KEY,
				entry_id TEXT NOT NULL,
				tag TEXT NOT NULL,
				FOREIGN KEY (entry_id) REFERENCES entries(id) ON DELETE CASCADE,
				UNIQUE (entry_id, tag)
			);
			CREATE INDEX IF NOT EXISTS idx_entry_tags_entry_id ON entry_tags(entry_id);
			CREATE INDEX IF NOT EXISTS idx_entry_tags_tag ON entry_tags(tag);
		`,
	},
}

// Migrate runs all pending PostgreSQL migrations
func (db *DB) Migrate() error {
	// Ensure schema_version table exists before asking for the version
	if _, err := db.conn.Exec(migrations[0].SQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	slog.Info("checked schema version", "current", currentVersion)

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("applying migration", "version", migration.Version, "name", migration.Name)
		tx, err := db.conn.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec(migration.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d (%s): %w", migration.Version, migration.Name, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
