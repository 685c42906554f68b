package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"library-backend/internal/shared"
	"library-backend/internal/shared/errs"
)

const MaxNameLength = 255

// CreateAuthorRequest - POST /authors/add
// Accepts both form and JSON bodies.
type CreateAuthorRequest struct {
	Name        string `json:"name" form:"name"`
	BirthDate   string `json:"birth_date" form:"birth_date"`
	DateOfDeath string `json:"date_of_death" form:"date_of_death"`
}

func (r CreateAuthorRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.DateOfDeath = strings.TrimSpace(r.DateOfDeath)

	if r.Name == "" || r.BirthDate == "" {
		return ErrNameRequired
	}

	err := validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, MaxNameLength)),
		validation.Field(&r.BirthDate, validation.Date(shared.DateLayout).Error("must be a date in YYYY-MM-DD format")),
		validation.Field(&r.DateOfDeath, validation.Date(shared.DateLayout).Error("must be a date in YYYY-MM-DD format")),
	)
	if err != nil {
		return errs.New(errs.ErrValidation, err.Error())
	}
	return nil
}

// ToEntity validates the request and converts it into an Author without an ID.
func (r CreateAuthorRequest) ToEntity() (*Author, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	birth, err := shared.ParseDate(r.BirthDate)
	if err != nil {
		return nil, err
	}
	death, err := shared.ParseDate(r.DateOfDeath)
	if err != nil {
		return nil, err
	}
	if birth != nil && death != nil && death.Before(birth.Time) {
		return nil, ErrDeathBeforeBirth
	}

	return &Author{
		Name:        strings.TrimSpace(r.Name),
		BirthDate:   birth,
		DateOfDeath: death,
	}, nil
}

