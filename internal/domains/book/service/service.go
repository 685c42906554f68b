package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	authorModel "library-backend/internal/domains/author/model"
	authorRepo "library-backend/internal/domains/author/repository"
	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/pkg/database"
)

type bookService struct {
	db         *sql.DB
	repo       repository.RepositoryInterface
	authorRepo authorRepo.RepositoryInterface
	now        func() time.Time
}

// NewBookService creates the book service. Every operation runs in its own transaction.
func NewBookService(db *sql.DB, repo repository.RepositoryInterface, authors authorRepo.RepositoryInterface) ServiceInterface {
	return &bookService{
		db:         db,
		repo:       repo,
		authorRepo: authors,
		now:        time.Now,
	}
}

// ListBooks - search, author filter and sort for the home page
func (s *bookService) ListBooks(ctx context.Context, filter model.BookFilter) (*model.ListBooksResult, error) {
	books, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	authorName := ""
	if filter.AuthorID != nil {
		a, err := s.authorRepo.GetByID(ctx, s.db, *filter.AuthorID)
		switch {
		case err == nil:
			authorName = a.Name
		case !errors.Is(err, authorModel.ErrAuthorNotFound):
			return nil, err
		}
	}

	return &model.ListBooksResult{
		Books:   books,
		Message: filter.Message(authorName),
	}, nil
}

func (s *bookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.GetByID(ctx, s.db, id)
}

// CreateBook validates the request, checks the author and inserts the book
func (s *bookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	book, err := req.ToEntity(s.now())
	if err != nil {
		return nil, err
	}

	return database.WithTransactionResult(ctx, s.db, func(tx *sql.Tx) (*model.Book, error) {
		if err := s.ensureAuthor(ctx, tx, book.AuthorID.UUID); err != nil {
			return nil, err
		}
		if err := s.repo.Create(ctx, tx, book); err != nil {
			return nil, err
		}
		return s.repo.GetByID(ctx, tx, book.ID)
	})
}

// EditBook applies the supplied fields. Rating and progress are clamped.
func (s *bookService) EditBook(ctx context.Context, id uuid.UUID, req model.EditBookRequest) (*model.Book, error) {
	updated, err := database.WithTransactionResult(ctx, s.db, func(tx *sql.Tx) (*model.Book, error) {
		book, err := s.repo.GetByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}

		previousAuthor := book.AuthorID
		if err := req.ApplyTo(book); err != nil {
			return nil, err
		}
		if book.AuthorID.Valid && book.AuthorID != previousAuthor {
			if err := s.ensureAuthor(ctx, tx, book.AuthorID.UUID); err != nil {
				return nil, err
			}
		}

		if err := s.repo.Update(ctx, tx, book); err != nil {
			return nil, err
		}
		return s.repo.GetByID(ctx, tx, id)
	})
	if err != nil {
		log.Error().Err(err).Str("book_id", id.String()).Msg("Failed to edit book")
		return nil, err
	}
	return updated, nil
}

// RateBook stores the rating as given, without clamping
func (s *bookService) RateBook(ctx context.Context, id uuid.UUID, req model.RateBookRequest) (int, error) {
	rating, err := req.Value()
	if err != nil {
		return 0, err
	}

	err = database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return s.repo.UpdateRating(ctx, tx, id, rating)
	})
	if err != nil {
		return 0, err
	}
	return rating, nil
}

// DeleteBook removes the book and its author if that was the author's last book
func (s *bookService) DeleteBook(ctx context.Context, id uuid.UUID) (*model.DeleteBookResult, error) {
	return database.WithTransactionResult(ctx, s.db, func(tx *sql.Tx) (*model.DeleteBookResult, error) {
		book, err := s.repo.GetByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return nil, err
		}

		result := &model.DeleteBookResult{Book: book}
		if !book.AuthorID.Valid {
			return result, nil
		}

		remaining, err := s.authorRepo.CountBooks(ctx, tx, book.AuthorID.UUID)
		if err != nil {
			return nil, err
		}
		if remaining == 0 {
			if err := s.authorRepo.Delete(ctx, tx, book.AuthorID.UUID); err != nil {
				return nil, err
			}
			result.AuthorDeleted = true
			log.Info().Str("author_id", book.AuthorID.UUID.String()).Msg("Removed author without remaining books")
		}
		return result, nil
	})
}

func (s *bookService) ensureAuthor(ctx context.Context, tx *sql.Tx, authorID uuid.UUID) error {
	if _, err := s.authorRepo.GetByID(ctx, tx, authorID); err != nil {
		if errors.Is(err, authorModel.ErrAuthorNotFound) {
			return model.ErrAuthorNotFound
		}
		return err
	}
	return nil
}
