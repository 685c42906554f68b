package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, DBConfig{URL: "sqlite://:memory:", MaxRetries: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}

func insertAuthor(t *testing.T, db *DB, name string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.SQL.Exec(`INSERT INTO authors (id, name, created_at) VALUES (?, ?, ?)`, id, name, time.Now().UnixNano())
	require.NoError(t, err)
	return id
}

func insertBook(db *DB, title, isbn string, authorID uuid.UUID) error {
	_, err := db.SQL.Exec(
		`INSERT INTO books (id, title, publication_year, isbn, author_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.New(), title, 2000, isbn, authorID, time.Now().UnixNano(),
	)
	return err
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		dialect Dialect
		driver  string
		dsn     string
		wantErr bool
	}{
		{
			name:    "postgres",
			url:     "postgres://u:p@localhost:5432/library?sslmode=disable",
			dialect: DialectPostgres,
			driver:  "pgx",
			dsn:     "postgres://u:p@localhost:5432/library?sslmode=disable",
		},
		{
			name:    "postgresql scheme",
			url:     "postgresql://localhost/library",
			dialect: DialectPostgres,
			driver:  "pgx",
			dsn:     "postgresql://localhost/library",
		},
		{
			name:    "sqlite path",
			url:     "sqlite://data/library.sqlite",
			dialect: DialectSQLite,
			driver:  "sqlite",
			dsn:     "file:data/library.sqlite?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name:    "in memory",
			url:     "sqlite://:memory:",
			dialect: DialectSQLite,
			driver:  "sqlite",
			dsn:     "file::memory:?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name:    "file dsn with query",
			url:     "file:test.db?mode=rwc",
			dialect: DialectSQLite,
			driver:  "sqlite",
			dsn:     "file:test.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		},
		{
			name:    "empty",
			url:     "  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect, driver, dsn, err := ParseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, dialect)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
		})
	}
}

func TestRebind(t *testing.T) {
	q := `SELECT * FROM books WHERE title LIKE ? ESCAPE '\' AND note = 'why?' AND author_id = ?`

	assert.Equal(t, q, Rebind(DialectSQLite, q))
	assert.Equal(t,
		`SELECT * FROM books WHERE title LIKE $1 ESCAPE '\' AND note = 'why?' AND author_id = $2`,
		Rebind(DialectPostgres, q),
	)
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.Migrate(context.Background()))
}

func TestForeignKeysAreEnforced(t *testing.T) {
	db := openMemory(t)

	err := insertBook(db, "Orphan", "", uuid.New())
	require.Error(t, err)
	assert.True(t, IsForeignKeyViolation(err))
	assert.False(t, IsUniqueViolation(err))
}

func TestDeletingAuthorCascadesToBooks(t *testing.T) {
	db := openMemory(t)
	authorID := insertAuthor(t, db, "Ursula K. Le Guin")
	require.NoError(t, insertBook(db, "The Dispossessed", "9780061054884", authorID))

	_, err := db.SQL.Exec(`DELETE FROM authors WHERE id = ?`, authorID)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.SQL.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&n))
	assert.Zero(t, n)
}

func TestISBNUniqueOnlyWhenPresent(t *testing.T) {
	db := openMemory(t)
	authorID := insertAuthor(t, db, "Octavia E. Butler")

	require.NoError(t, insertBook(db, "Kindred", "", authorID))
	require.NoError(t, insertBook(db, "Dawn", "", authorID), "empty ISBNs may repeat")

	require.NoError(t, insertBook(db, "Parable of the Sower", "9780446675505", authorID))
	err := insertBook(db, "Parable of the Talents", "9780446675505", authorID)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestReset_DropsData(t *testing.T) {
	db := openMemory(t)
	insertAuthor(t, db, "N. K. Jemisin")

	require.NoError(t, db.Reset(context.Background()))

	var n int
	require.NoError(t, db.SQL.QueryRow(`SELECT COUNT(*) FROM authors`).Scan(&n))
	assert.Zero(t, n)
}

func TestHealthCheck(t *testing.T) {
	db := openMemory(t)
	assert.NoError(t, db.HealthCheck(context.Background()))

	require.NoError(t, db.Close())
	assert.Error(t, db.HealthCheck(context.Background()))
	assert.NoError(t, db.Close(), "second close is a no-op")
}

func TestErrorClassifiersIgnoreOtherErrors(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsForeignKeyViolation(context.Canceled))
}
