package service

import (
	"context"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/recommend/model"
)

// Completer is the external AI collaborator. It returns the JSON document
// the model produced, or a recommendation/configuration error.
type Completer interface {
	Complete(ctx context.Context, prompt string) ([]byte, error)
}

// ServiceInterface - AI recommendations based on the user's best-rated books
type ServiceInterface interface {
	// EligibleBooks returns books rated 8 or higher, best first.
	EligibleBooks(ctx context.Context) ([]bookModel.Book, error)

	// Recommend asks the AI for suggestions and drops those already owned.
	// Having no eligible books or only duplicates is reported through the
	// result status, not as an error.
	Recommend(ctx context.Context) (*model.RecommendResult, error)

	// AddRecommended stores a chosen suggestion, creating its author by name
	// if needed. Author and book commit together.
	AddRecommended(ctx context.Context, req model.AddRecommendedRequest) (*bookModel.Book, error)
}
