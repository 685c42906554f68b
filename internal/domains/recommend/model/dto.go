package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/shared"
	"library-backend/internal/shared/errs"
	"library-backend/internal/shared/utils"
)

var (
	ErrTitleAuthorRequired = errs.New(errs.ErrValidation, "Title and author are required.")
	ErrInvalidDate         = errs.New(errs.ErrValidation, "Invalid date format.")
	ErrAlreadyInLibrary    = errs.New(errs.ErrConflict, "This book is already in your library.")
)

// User-facing messages for the non-error branches.
const (
	MsgNoEligibleBooks = "You don't have any books rated above 8 yet."
	MsgAllDuplicates   = "All recommended books are already in your library. Try again later."
)

// Result statuses reported by Recommend.
const (
	StatusOK              = "ok"
	StatusNoEligibleBooks = "no_eligible_books"
	StatusAllDuplicates   = "all_duplicates"
)

// RecommendResult - POST /recommend payload
type RecommendResult struct {
	Status          string                   `json:"status"`
	Message         string                   `json:"message,omitempty"`
	Recommendations []Recommendation         `json:"recommendations"`
	BasedOn         []bookModel.BookResponse `json:"based_on"`
}

// AddRecommendedRequest - POST /recommend/add
type AddRecommendedRequest struct {
	Title           string            `json:"title" form:"title"`
	Author          string            `json:"author" form:"author"`
	BirthDate       string            `json:"birth_date" form:"birth_date"`
	DateOfDeath     string            `json:"date_of_death" form:"date_of_death"`
	ISBN            string            `json:"isbn" form:"isbn"`
	Description     string            `json:"description" form:"description"`
	PublicationYear shared.FlexString `json:"publication_year" form:"publication_year"`
}

// Normalize trims the text fields.
func (r AddRecommendedRequest) Normalize() AddRecommendedRequest {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.DateOfDeath = strings.TrimSpace(r.DateOfDeath)
	r.ISBN = strings.TrimSpace(r.ISBN)
	r.Description = strings.TrimSpace(r.Description)
	r.PublicationYear = shared.FlexString(strings.TrimSpace(r.PublicationYear.String()))
	return r
}

// Dates parses the optional author dates.
func (r AddRecommendedRequest) Dates() (birth, death *shared.Date, err error) {
	if birth, err = shared.ParseDate(r.BirthDate); err != nil {
		return nil, nil, ErrInvalidDate
	}
	if death, err = shared.ParseDate(r.DateOfDeath); err != nil {
		return nil, nil, ErrInvalidDate
	}
	return birth, death, nil
}

// Year returns the publication year, or now's year when absent or not numeric.
func (r AddRecommendedRequest) Year(now time.Time) int {
	s := r.PublicationYear.String()
	if utils.IsDigits(s) {
		if year, err := strconv.Atoi(s); err == nil {
			return year
		}
	}
	return now.Year()
}

// PlaceholderISBN returns a unique, time-ordered token for books added
// without an ISBN.
func PlaceholderISBN() string {
	return "REC-" + xid.New().String()
}
