package model

import "library-backend/internal/shared/errs"

var (
	ErrBookNotFound      = errs.New(errs.ErrNotFound, "book not found")
	ErrAuthorNotFound    = errs.New(errs.ErrNotFound, "author not found")
	ErrRequiredFields    = errs.New(errs.ErrValidation, "Title, author, and publication year are required.")
	ErrInvalidBookID     = errs.New(errs.ErrValidation, "invalid book id")
	ErrInvalidAuthorID   = errs.New(errs.ErrValidation, "invalid author id")
	ErrInvalidRating     = errs.New(errs.ErrValidation, "rating must be an integer")
	ErrISBNAlreadyExists = errs.New(errs.ErrConflict, "a book with this ISBN already exists")
)
