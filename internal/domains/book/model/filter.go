package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Sort keys accepted by list_books. Anything else keeps storage order.
const (
	SortTitle  = "title"
	SortAuthor = "author"
)

// BookFilter - query parameters for GET /
type BookFilter struct {
	Search   string     `form:"search"`
	AuthorID *uuid.UUID `form:"-"`
	Sort     string     `form:"sort"`
}

// NormalizedSort returns the sort key or "" when it is not recognised.
func (f BookFilter) NormalizedSort() string {
	switch f.Sort {
	case SortTitle, SortAuthor:
		return f.Sort
	default:
		return ""
	}
}

// Message describes the active filters for display. authorName is empty
// when the filtered author could not be resolved.
func (f BookFilter) Message(authorName string) string {
	switch {
	case f.Search != "" && authorName == "":
		return fmt.Sprintf("Showing results for title: %q", f.Search)
	case f.Search == "" && authorName != "":
		return fmt.Sprintf("Showing books by author: %s", authorName)
	case f.Search != "" && authorName != "":
		return fmt.Sprintf("Showing results for %q by author: %s", f.Search, authorName)
	default:
		return ""
	}
}

// ListBooksResult - GET / payload
type ListBooksResult struct {
	Books   []Book `json:"books"`
	Message string `json:"message,omitempty"`
}

// DeleteBookResult reports what a book deletion removed.
type DeleteBookResult struct {
	Book          *Book `json:"book"`
	AuthorDeleted bool  `json:"author_deleted"`
}
