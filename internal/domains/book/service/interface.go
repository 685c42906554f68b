package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// ServiceInterface - catalog and query operations on books
type ServiceInterface interface {
	ListBooks(ctx context.Context, filter model.BookFilter) (*model.ListBooksResult, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	EditBook(ctx context.Context, id uuid.UUID, req model.EditBookRequest) (*model.Book, error)
	RateBook(ctx context.Context, id uuid.UUID, req model.RateBookRequest) (int, error)
	// DeleteBook removes the book and, in the same transaction, its author
	// when no other book references it.
	DeleteBook(ctx context.Context, id uuid.UUID) (*model.DeleteBookResult, error)
}
