package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	authorModel "library-backend/internal/domains/author/model"
	authorRepo "library-backend/internal/domains/author/repository"
	bookModel "library-backend/internal/domains/book/model"
	bookRepo "library-backend/internal/domains/book/repository"
	"library-backend/internal/domains/recommend/model"
	"library-backend/internal/metrics"
	"library-backend/internal/shared/errs"
	"library-backend/pkg/database"
)

type recommendService struct {
	db      *sql.DB
	books   bookRepo.RepositoryInterface
	authors authorRepo.RepositoryInterface
	ai      Completer
	now     func() time.Time
}

func NewRecommendService(db *sql.DB, books bookRepo.RepositoryInterface, authors authorRepo.RepositoryInterface, ai Completer) ServiceInterface {
	return &recommendService{
		db:      db,
		books:   books,
		authors: authors,
		ai:      ai,
		now:     time.Now,
	}
}

func (s *recommendService) EligibleBooks(ctx context.Context) ([]bookModel.Book, error) {
	return s.books.ListTopRated(ctx, s.db, bookModel.EligibleRating)
}

func (s *recommendService) Recommend(ctx context.Context) (*model.RecommendResult, error) {
	eligible, err := s.EligibleBooks(ctx)
	if err != nil {
		metrics.RecommendationOutcomes.WithLabelValues("error").Inc()
		return nil, err
	}
	if len(eligible) == 0 {
		metrics.RecommendationOutcomes.WithLabelValues(model.StatusNoEligibleBooks).Inc()
		return &model.RecommendResult{
			Status:          model.StatusNoEligibleBooks,
			Message:         model.MsgNoEligibleBooks,
			Recommendations: []model.Recommendation{},
			BasedOn:         []bookModel.BookResponse{},
		}, nil
	}

	recs, err := s.fetch(ctx, eligible)
	if err != nil {
		metrics.RecommendationOutcomes.WithLabelValues("error").Inc()
		log.Error().Err(err).Msg("Recommendation generation failed")
		return nil, err
	}

	result := &model.RecommendResult{
		Status:          model.StatusOK,
		Recommendations: recs,
		BasedOn:         bookModel.ToResponseList(eligible),
	}
	if len(recs) == 0 {
		result.Status = model.StatusAllDuplicates
		result.Message = model.MsgAllDuplicates
	}
	metrics.RecommendationOutcomes.WithLabelValues(result.Status).Inc()
	return result, nil
}

// fetch builds the prompt, calls the AI and reconciles its answer with the catalog.
func (s *recommendService) fetch(ctx context.Context, eligible []bookModel.Book) ([]model.Recommendation, error) {
	all, err := s.books.List(ctx, s.db, bookModel.BookFilter{})
	if err != nil {
		return nil, err
	}
	authors, err := s.authors.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*authorModel.Author, len(authors))
	for i := range authors {
		byID[authors[i].ID] = &authors[i]
	}

	payload := make([]model.BookPayload, 0, len(eligible))
	for _, b := range eligible {
		var a *authorModel.Author
		if b.AuthorID.Valid {
			a = byID[b.AuthorID.UUID]
		}
		payload = append(payload, model.NewBookPayload(b, a))
	}

	titles := make([]string, 0, len(all))
	existing := make(map[model.Key]struct{}, len(all))
	for _, b := range all {
		titles = append(titles, b.Title)
		existing[model.Key{Title: b.Title, Author: b.AuthorName}] = struct{}{}
	}

	prompt, err := model.BuildPrompt(payload, titles)
	if err != nil {
		return nil, errs.Recommendation("build prompt", err)
	}

	content, err := s.ai.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := model.ParseRecommendations(content)
	if err != nil {
		return nil, errs.Recommendation("parse recommendations", err)
	}
	if parsed.Shape == model.ShapeUnexpected {
		log.Warn().Str("content", string(content)).Msg("Unexpected AI response format")
	}
	if parsed.Skipped > 0 {
		log.Warn().Int("skipped", parsed.Skipped).Msg("Ignored malformed recommendation entries")
	}

	filtered := model.FilterExisting(parsed.Items, existing)
	if dropped := len(parsed.Items) - len(filtered); dropped > 0 {
		metrics.RecommendationsFiltered.Add(float64(dropped))
		log.Debug().Int("dropped", dropped).Msg("Removed recommendations already in the library")
	}
	return filtered, nil
}

func (s *recommendService) AddRecommended(ctx context.Context, req model.AddRecommendedRequest) (*bookModel.Book, error) {
	req = req.Normalize()
	if req.Title == "" || req.Author == "" {
		return nil, model.ErrTitleAuthorRequired
	}

	birth, death, err := req.Dates()
	if err != nil {
		log.Error().Str("birth_date", req.BirthDate).Str("date_of_death", req.DateOfDeath).Msg("Invalid date format for recommended book")
		return nil, err
	}

	book, err := database.WithTransactionResult(ctx, s.db, func(tx *sql.Tx) (*bookModel.Book, error) {
		author, created, err := s.authors.GetOrCreate(ctx, tx, req.Author, birth, death)
		if err != nil {
			return nil, err
		}

		exists, err := s.books.ExistsByTitleAndAuthor(ctx, tx, req.Title, author.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, model.ErrAlreadyInLibrary
		}

		isbn := req.ISBN
		if isbn != "" {
			taken, err := s.books.ExistsByISBN(ctx, tx, isbn)
			if err != nil {
				return nil, err
			}
			if taken {
				log.Debug().Str("isbn", isbn).Msg("Recommended ISBN already used, assigning placeholder")
				isbn = ""
			}
		}
		if isbn == "" {
			isbn = model.PlaceholderISBN()
		}

		rating := 0
		b := &bookModel.Book{
			Title:            req.Title,
			ShortDescription: req.Description,
			PublicationYear:  req.Year(s.now()),
			ISBN:             isbn,
			AuthorID:         uuid.NullUUID{UUID: author.ID, Valid: true},
			Rating:           &rating,
			IsRead:           false,
			Progress:         0,
		}
		if err := s.books.Create(ctx, tx, b); err != nil {
			return nil, err
		}

		if created {
			log.Info().Str("author", author.Name).Msg("Created author for recommended book")
		}
		b.AuthorName = author.Name
		return b, nil
	})
	if err != nil {
		if errors.Is(err, model.ErrAlreadyInLibrary) {
			return nil, err
		}
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to add recommended book")
		// The cause is flattened so no inner kind leaks to the caller.
		return nil, fmt.Errorf("add recommended book: %w: %v", errs.ErrPersistence, err)
	}

	metrics.RecommendedBooksAdded.Inc()
	return book, nil
}
