package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/infrastructure/database"
)

// RepositoryInterface - data access for books.
// Reads join the author's name; writes never touch the authors table.
type RepositoryInterface interface {
	Create(ctx context.Context, q database.Querier, b *model.Book) error
	GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*model.Book, error)
	Update(ctx context.Context, q database.Querier, b *model.Book) error
	UpdateRating(ctx context.Context, q database.Querier, id uuid.UUID, rating int) error
	Delete(ctx context.Context, q database.Querier, id uuid.UUID) error

	// List applies search and author filters conjunctively.
	List(ctx context.Context, q database.Querier, filter model.BookFilter) ([]model.Book, error)
	ListByAuthor(ctx context.Context, q database.Querier, authorID uuid.UUID) ([]model.Book, error)
	// ListTopRated returns books rated at least minRating, highest first.
	ListTopRated(ctx context.Context, q database.Querier, minRating int) ([]model.Book, error)
	ExistsByTitleAndAuthor(ctx context.Context, q database.Querier, title string, authorID uuid.UUID) (bool, error)
	ExistsByISBN(ctx context.Context, q database.Querier, isbn string) (bool, error)
}
