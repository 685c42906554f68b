package model

import (
	"github.com/google/uuid"
)

// Rating and progress bounds enforced by the edit path.
const (
	MinRating   = 0
	MaxRating   = 10
	MinProgress = 0
	MaxProgress = 100

	// EligibleRating is the lowest rating a book needs to seed recommendations.
	EligibleRating = 8
)

// Book represents the catalog book entity.
// AuthorName is filled from a join on reads and never written.
type Book struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	Title            string        `json:"title" db:"title"`
	ShortDescription string        `json:"short_description" db:"short_description"`
	PublicationYear  int           `json:"publication_year" db:"publication_year"`
	ISBN             string        `json:"isbn" db:"isbn"`
	AuthorID         uuid.NullUUID `json:"author_id" db:"author_id"`
	Rating           *int          `json:"rating" db:"rating"`
	IsRead           bool          `json:"is_read" db:"is_read"`
	Progress         int           `json:"progress" db:"progress"`

	AuthorName string `json:"author_name,omitempty" db:"-"`
}

type BookResponse struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	ShortDescription string     `json:"short_description"`
	PublicationYear  int        `json:"publication_year"`
	ISBN             string     `json:"isbn"`
	AuthorID         *uuid.UUID `json:"author_id"`
	AuthorName       string     `json:"author_name"`
	Rating           *int       `json:"rating"`
	IsRead           bool       `json:"is_read"`
	Progress         int        `json:"progress"`
}

func (b *Book) ToResponse() *BookResponse {
	resp := &BookResponse{
		ID:               b.ID,
		Title:            b.Title,
		ShortDescription: b.ShortDescription,
		PublicationYear:  b.PublicationYear,
		ISBN:             b.ISBN,
		AuthorName:       b.AuthorName,
		Rating:           b.Rating,
		IsRead:           b.IsRead,
		Progress:         b.Progress,
	}
	if b.AuthorID.Valid {
		id := b.AuthorID.UUID
		resp.AuthorID = &id
	}
	return resp
}

// ToResponseList converts a slice of books, never returning nil.
func ToResponseList(books []Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, *books[i].ToResponse())
	}
	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
