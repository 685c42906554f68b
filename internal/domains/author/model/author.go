package model

import (
	"github.com/google/uuid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/shared"
)

// Author owns zero or more books. Name is the natural key used when a
// recommendation references an author by name only.
type Author struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	BirthDate   *shared.Date `json:"birth_date,omitempty" db:"birth_date"`
	DateOfDeath *shared.Date `json:"date_of_death,omitempty" db:"date_of_death"`
}

// IsLiving reports whether no date of death is recorded.
func (a *Author) IsLiving() bool {
	return a.DateOfDeath == nil
}

type AuthorResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	BirthDate   string    `json:"birth_date"`
	DateOfDeath string    `json:"date_of_death"`
}

// ToResponse converts Author to AuthorResponse
func (a *Author) ToResponse() *AuthorResponse {
	return &AuthorResponse{
		ID:          a.ID,
		Name:        a.Name,
		BirthDate:   shared.FormatDate(a.BirthDate),
		DateOfDeath: shared.FormatDate(a.DateOfDeath),
	}
}

// ToResponseList converts a slice of authors, never returning nil.
func ToResponseList(authors []Author) []AuthorResponse {
	out := make([]AuthorResponse, 0, len(authors))
	for i := range authors {
		out = append(out, *authors[i].ToResponse())
	}
	return out
}

// AuthorDetail - an author together with the books it owns
type AuthorDetail struct {
	Author *Author
	Books  []bookModel.Book
}

type AuthorDetailResponse struct {
	AuthorResponse
	Books []bookModel.BookResponse `json:"books"`
}

func (d *AuthorDetail) ToResponse() *AuthorDetailResponse {
	return &AuthorDetailResponse{
		AuthorResponse: *d.Author.ToResponse(),
		Books:          bookModel.ToResponseList(d.Books),
	}
}
