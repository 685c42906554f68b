package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Domain errors wrap exactly one of these so handlers can map
// them to a response without knowing every domain sentinel.
var (
	ErrValidation     = errors.New("validation error")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
	ErrPersistence    = errors.New("persistence error")
	ErrRecommendation = errors.New("recommendation error")
	ErrConfiguration  = errors.New("configuration error")
)

// kindError carries a user-facing message and the kind it belongs to.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// New returns an error of the given kind with msg as its user-facing text.
func New(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Validation builds a validation error with a formatted message.
func Validation(format string, args ...any) error {
	return New(ErrValidation, fmt.Sprintf(format, args...))
}

// Persistence wraps a store failure. The cause stays in the chain for logging.
func Persistence(op string, cause error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, cause))
}

// Recommendation wraps an AI collaborator failure.
func Recommendation(op string, cause error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(ErrRecommendation, cause))
}

// Kind reports which kind err belongs to, or nil for unclassified errors.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrConfiguration, ErrRecommendation, ErrPersistence} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Message returns the text that is safe to show to a user.
// Validation, not-found, conflict and configuration errors keep their message;
// everything else collapses to a generic one.
func Message(err error) string {
	var ke *kindError
	switch Kind(err) {
	case ErrValidation, ErrNotFound, ErrConflict:
		if errors.As(err, &ke) {
			return ke.msg
		}
		return err.Error()
	case ErrConfiguration:
		return "This feature is not configured."
	case ErrRecommendation:
		return "The recommendation service is unavailable. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}
