package model

import (
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"library-backend/internal/shared"
	"library-backend/internal/shared/errs"
)

// CreateBookRequest - POST /books/add
// Fields stay textual so form and JSON inputs share one parser.
type CreateBookRequest struct {
	ISBN             string            `json:"isbn" form:"isbn"`
	Title            string            `json:"title" form:"title"`
	ShortDescription string            `json:"short_description" form:"short_description"`
	PublicationYear  shared.FlexString `json:"publication_year" form:"publication_year"`
	AuthorID         string            `json:"author_id" form:"author_id"`
}

func (r CreateBookRequest) trimmed() CreateBookRequest {
	return CreateBookRequest{
		ISBN:             strings.TrimSpace(r.ISBN),
		Title:            strings.TrimSpace(r.Title),
		ShortDescription: strings.TrimSpace(r.ShortDescription),
		PublicationYear:  shared.FlexString(strings.TrimSpace(r.PublicationYear.String())),
		AuthorID:         strings.TrimSpace(r.AuthorID),
	}
}

// Validate checks required fields and the publication year range relative to now.
func (r CreateBookRequest) Validate(now time.Time) error {
	r = r.trimmed()
	if r.Title == "" || r.AuthorID == "" || r.PublicationYear == "" {
		return ErrRequiredFields
	}

	year, err := strconv.Atoi(r.PublicationYear.String())
	if err != nil {
		return errs.Validation("Invalid publication year: %q is not a number.", r.PublicationYear)
	}
	if year < 0 || year > now.Year() {
		return errs.Validation("Invalid publication year: must be between 0 and %d.", now.Year())
	}

	err = validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 500)),
		validation.Field(&r.AuthorID, is.UUID.Error("must be a valid author id")),
		validation.Field(&r.ISBN, validation.Length(0, 32)),
	)
	if err != nil {
		return errs.New(errs.ErrValidation, err.Error())
	}
	return nil
}

// ToEntity validates the request and builds a Book with default reading state.
func (r CreateBookRequest) ToEntity(now time.Time) (*Book, error) {
	if err := r.Validate(now); err != nil {
		return nil, err
	}
	r = r.trimmed()

	year, _ := strconv.Atoi(r.PublicationYear.String())
	authorID, err := uuid.Parse(r.AuthorID)
	if err != nil {
		return nil, ErrInvalidAuthorID
	}

	return &Book{
		Title:            r.Title,
		ShortDescription: r.ShortDescription,
		PublicationYear:  year,
		ISBN:             r.ISBN,
		AuthorID:         uuid.NullUUID{UUID: authorID, Valid: true},
	}, nil
}

// EditBookRequest - POST /books/:id/edit
// Nil fields are left untouched.
type EditBookRequest struct {
	Title            *string            `json:"title" form:"title"`
	AuthorID         *string            `json:"author_id" form:"author_id"`
	ShortDescription *string            `json:"short_description" form:"short_description"`
	Rating           *shared.FlexString `json:"rating" form:"rating"`
	IsRead           *shared.FlexString `json:"is_read" form:"is_read"`
	Progress         *shared.FlexString `json:"progress" form:"progress"`
}

// ApplyTo copies the supplied fields onto b. Rating and progress are clamped
// into range rather than rejected. Blank numeric fields are ignored.
func (r EditBookRequest) ApplyTo(b *Book) error {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		if title == "" {
			return errs.Validation("title cannot be empty")
		}
		b.Title = title
	}

	if r.AuthorID != nil && strings.TrimSpace(*r.AuthorID) != "" {
		id, err := uuid.Parse(strings.TrimSpace(*r.AuthorID))
		if err != nil {
			return ErrInvalidAuthorID
		}
		b.AuthorID = uuid.NullUUID{UUID: id, Valid: true}
	}

	if r.ShortDescription != nil {
		b.ShortDescription = *r.ShortDescription
	}

	if r.Rating != nil {
		rating, ok, err := parseOptionalInt(r.Rating.String(), "rating")
		if err != nil {
			return err
		}
		if ok {
			rating = Clamp(rating, MinRating, MaxRating)
			b.Rating = &rating
		}
	}

	if r.IsRead != nil {
		b.IsRead = ParseCheckbox(r.IsRead.String())
	}

	if r.Progress != nil {
		progress, ok, err := parseOptionalInt(r.Progress.String(), "progress")
		if err != nil {
			return err
		}
		if ok {
			b.Progress = Clamp(progress, MinProgress, MaxProgress)
		}
	}

	return nil
}

// RateBookRequest - POST /books/:id/rate
type RateBookRequest struct {
	Rating shared.FlexString `json:"rating" form:"rating"`
}

// Value parses the rating as-is. A missing rating counts as 0.
func (r RateBookRequest) Value() (int, error) {
	s := strings.TrimSpace(r.Rating.String())
	if s == "" {
		return 0, nil
	}
	rating, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidRating
	}
	return rating, nil
}

// ParseCheckbox interprets an HTML checkbox or boolean-ish value.
func ParseCheckbox(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func parseOptionalInt(s, field string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, errs.Validation("%s must be an integer", field)
	}
	return v, true, nil
}
