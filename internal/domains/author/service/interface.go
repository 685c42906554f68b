package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
)

// ServiceInterface defines business logic operations for the Author domain
type ServiceInterface interface {
	// CreateAuthor requires a name and a YYYY-MM-DD birth date.
	CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (*model.Author, error)

	// GetAuthor returns the author with its books.
	GetAuthor(ctx context.Context, id uuid.UUID) (*model.AuthorDetail, error)

	// ListAuthors orders by name ascending.
	ListAuthors(ctx context.Context) ([]model.Author, error)

	// DeleteAuthor removes the author and, through the store, all its books.
	DeleteAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error)
}
