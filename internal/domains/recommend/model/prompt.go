package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	authorModel "library-backend/internal/domains/author/model"
	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/shared"
)

// BookPayload is how an eligible book is presented to the AI.
type BookPayload struct {
	Title             string `json:"title"`
	Author            string `json:"author"`
	AuthorBirthDate   string `json:"author_birth_date"`
	AuthorDateOfDeath string `json:"author_date_of_death"`
	Rating            *int   `json:"rating"`
	Description       string `json:"description"`
	ISBN              string `json:"isbn"`
	PublicationYear   string `json:"publication_year"`
}

// NewBookPayload serialises b. author may be nil when the book has none.
func NewBookPayload(b bookModel.Book, author *authorModel.Author) BookPayload {
	p := BookPayload{
		Title:           b.Title,
		Author:          b.AuthorName,
		Rating:          b.Rating,
		Description:     b.ShortDescription,
		ISBN:            b.ISBN,
		PublicationYear: strconv.Itoa(b.PublicationYear),
	}
	if author != nil {
		p.Author = author.Name
		p.AuthorBirthDate = shared.FormatDate(author.BirthDate)
		p.AuthorDateOfDeath = shared.FormatDate(author.DateOfDeath)
	}
	return p
}

const promptTemplate = `Based on these top-rated books, recommend exactly %d similar titles.
Exclude any books already in the library: %s

Return your answer as valid JSON with one top-level key:

{
  "recommendations": [
    {
      "title": "<string>",
      "author": "<string>",
      "author_birth_date": "YYYY-MM-DD",
      "author_date_of_death": "YYYY-MM-DD",
      "description": "<string, max 2 short sentences>",
      "isbn": "<string>",
      "publication_year": <integer>
    }
  ]
}

Use an empty string for author_birth_date when it is unknown, and for
author_date_of_death when the author is still alive or it is unknown.

Top-rated books to base your recommendations on:
%s

Make sure:
- The outer object has exactly one field: "recommendations".
- There are exactly %d items in the array.
- Dates use ISO format (YYYY-MM-DD) or an empty string.
- Descriptions are brief (max. 2 sentences).
- Try to vary in your book selection to get different recommendations.
`

// BuildPrompt renders the instruction sent to the AI.
func BuildPrompt(books []BookPayload, existingTitles []string) (string, error) {
	if existingTitles == nil {
		existingTitles = []string{}
	}

	titles, err := json.Marshal(existingTitles)
	if err != nil {
		return "", fmt.Errorf("encode existing titles: %w", err)
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode books: %w", err)
	}

	prompt := fmt.Sprintf(promptTemplate,
		RecommendationCount,
		string(titles),
		string(data),
		RecommendationCount,
	)
	return strings.TrimSpace(prompt), nil
}
