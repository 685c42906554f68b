package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/shared"
)

// RepositoryInterface defines data access for authors.
// Every method takes the Querier to run on, so callers choose between the
// pool and an open transaction.
type RepositoryInterface interface {
	// Create assigns a new ID and inserts the author.
	Create(ctx context.Context, q database.Querier, a *model.Author) error

	// GetByID returns model.ErrAuthorNotFound if no row matches.
	GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*model.Author, error)

	// GetByName matches the name exactly. The oldest row wins if several share it.
	GetByName(ctx context.Context, q database.Querier, name string) (*model.Author, error)

	// GetOrCreate returns the author named name, inserting it with the given
	// dates on first miss. created reports whether a row was inserted.
	GetOrCreate(ctx context.Context, q database.Querier, name string, birth, death *shared.Date) (a *model.Author, created bool, err error)

	// List returns every author ordered by name ascending.
	List(ctx context.Context, q database.Querier) ([]model.Author, error)

	// Delete removes the author. Owned books go with it at the store level.
	Delete(ctx context.Context, q database.Querier, id uuid.UUID) error

	// CountBooks returns how many books reference the author.
	CountBooks(ctx context.Context, q database.Querier, id uuid.UUID) (int, error)
}
