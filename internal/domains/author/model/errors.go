package model

import "library-backend/internal/shared/errs"

var (
	ErrAuthorNotFound   = errs.New(errs.ErrNotFound, "author not found")
	ErrNameRequired     = errs.New(errs.ErrValidation, "Name and birth date are required.")
	ErrInvalidAuthorID  = errs.New(errs.ErrValidation, "invalid author id")
	ErrDeathBeforeBirth = errs.New(errs.ErrValidation, "date of death cannot be before birth date")
)
