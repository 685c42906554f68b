package testinfra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"library-backend/internal/infrastructure/database"
)

// NewSQLite opens a private in-memory database with the schema applied.
// It is closed when the test ends.
func NewSQLite(t *testing.T) *database.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.DBConfig{URL: "sqlite://:memory:", MaxRetries: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))
	return db
}
