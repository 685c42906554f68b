package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/domains/author/repository"
	bookRepo "library-backend/internal/domains/book/repository"
	"library-backend/pkg/database"
)

type authorService struct {
	db    *sql.DB
	repo  repository.RepositoryInterface
	books bookRepo.RepositoryInterface
}

// NewAuthorService creates a new author service instance
func NewAuthorService(db *sql.DB, repo repository.RepositoryInterface, books bookRepo.RepositoryInterface) ServiceInterface {
	return &authorService{
		db:    db,
		repo:  repo,
		books: books,
	}
}

func (s *authorService) CreateAuthor(ctx context.Context, req model.CreateAuthorRequest) (*model.Author, error) {
	a, err := req.ToEntity()
	if err != nil {
		return nil, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return s.repo.Create(ctx, tx, a)
	})
	if err != nil {
		log.Error().Err(err).Str("name", a.Name).Msg("Failed to add author")
		return nil, err
	}
	return a, nil
}

func (s *authorService) GetAuthor(ctx context.Context, id uuid.UUID) (*model.AuthorDetail, error) {
	a, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	books, err := s.books.ListByAuthor(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	return &model.AuthorDetail{Author: a, Books: books}, nil
}

func (s *authorService) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.repo.List(ctx, s.db)
}

func (s *authorService) DeleteAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return database.WithTransactionResult(ctx, s.db, func(tx *sql.Tx) (*model.Author, error) {
		a, err := s.repo.GetByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return nil, err
		}
		return a, nil
	})
}
