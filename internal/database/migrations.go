package database

import (
	"fmt"
	"log/slog"
)

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations contains all schema migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_schema_version_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 2,
		Name:    "create_documents_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS documents (
				id TEXT PRIMARY KEY,
				collection TEXT NOT NULL,
				locale TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL,
				slug TEXT NOT NULL,
				seo_title TEXT NOT NULL DEFAULT '',
				meta_description TEXT NOT NULL DEFAULT '',
				summary TEXT NOT NULL DEFAULT '',
				focus_phrase TEXT NOT NULL DEFAULT '',
				fields TEXT NOT NULL DEFAULT '{}',
				faq TEXT NOT NULL DEFAULT '[]',
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
			CREATE INDEX IF NOT EXISTS idx_documents_slug ON documents(slug);
		`,
	},
	{
		Version: 3,
		Name:    "create_keyword_entries_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS keyword_entries (
				id TEXT PRIMARY KEY,
				document_id TEXT NOT NULL,
				keyword TEXT NOT NULL,
				notes TEXT NOT NULL DEFAULT '',
				links_count INTEGER NOT NULL DEFAULT 0,
				potential_links_count INTEGER NOT NULL DEFAULT 0,
				cached_total INTEGER NOT NULL DEFAULT 0,
				cached_headings INTEGER NOT NULL DEFAULT 0,
				link_details TEXT,
				potential_details TEXT,
				updated_at TIMESTAMP NOT NULL,
				UNIQUE(document_id, keyword),
				FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_keyword_entries_document ON keyword_entries(document_id);
		`,
	},
	{
		Version: 4,
		Name:    "create_focus_stats_table",
		SQL: `
			CREATE TABLE IF NOT EXISTS focus_stats (
				document_id TEXT PRIMARY KEY,
				phrase TEXT NOT NULL,
				stats TEXT NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
			);
		`,
	},
}

// Migrate applies all pending migrations.
func (db *DB) Migrate() error {
	// Ensure the version table exists before querying it.
	if _, err := db.conn.Exec(migrations[0].SQL); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	if err := db.conn.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if _, err := db.conn.Exec(m.SQL); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := db.conn.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
		slog.Info("applied migration", "version", m.Version, "name", m.Name)
	}
	return nil
}
