package database

import (
	"context"
	"fmt"
)

// Authors own books through books.author_id. Deleting an author removes its
// books at the store level; deleting a book never touches authors here, the
// catalog service handles orphaned authors itself.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		birth_date    DATE,
		date_of_death DATE,
		created_at    BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_authors_name ON authors (name)`,
	`CREATE TABLE IF NOT EXISTS books (
		id                UUID PRIMARY KEY,
		title             TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		publication_year  INTEGER NOT NULL,
		isbn              TEXT NOT NULL DEFAULT '',
		author_id         UUID REFERENCES authors (id) ON DELETE CASCADE,
		rating            INTEGER,
		is_read           BOOLEAN NOT NULL DEFAULT FALSE,
		progress          INTEGER NOT NULL DEFAULT 0,
		created_at        BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_books_rating ON books (rating)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_books_isbn ON books (isbn) WHERE isbn <> ''`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		birth_date    TEXT,
		date_of_death TEXT,
		created_at    INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_authors_name ON authors (name)`,
	`CREATE TABLE IF NOT EXISTS books (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		short_description TEXT NOT NULL DEFAULT '',
		publication_year  INTEGER NOT NULL,
		isbn              TEXT NOT NULL DEFAULT '',
		author_id         TEXT REFERENCES authors (id) ON DELETE CASCADE,
		rating            INTEGER,
		is_read           INTEGER NOT NULL DEFAULT 0,
		progress          INTEGER NOT NULL DEFAULT 0,
		created_at        INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_books_rating ON books (rating)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_books_isbn ON books (isbn) WHERE isbn <> ''`,
}

// Migrate creates the catalog tables if they do not exist yet.
func (db *DB) Migrate(ctx context.Context) error {
	statements := sqliteSchema
	if db.Dialect == DialectPostgres {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Reset drops the catalog tables. Used by the seed command.
func (db *DB) Reset(ctx context.Context) error {
	for _, stmt := range []string{`DROP TABLE IF EXISTS books`, `DROP TABLE IF EXISTS authors`} {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
	}
	return db.Migrate(ctx)
}
