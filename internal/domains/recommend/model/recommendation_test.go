package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authorModel "library-backend/internal/domains/author/model"
	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/shared"
	"library-backend/internal/shared/errs"
)

const threeRecs = `[
	{"title": "Dune", "author": "Frank Herbert", "publication_year": 1965},
	{"title": "Hyperion", "author": "Dan Simmons", "publication_year": "1989"},
	{"title": "Foundation", "author": "Isaac Asimov", "isbn": "9780553293357"}
]`

func TestParseRecommendations_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		shape   Shape
		count   int
	}{
		{"bare array", threeRecs, ShapeArray, 3},
		{"wrapped", `{"recommendations": ` + threeRecs + `}`, ShapeWrapped, 3},
		{"wrapped among other keys", `{"note": "hi", "recommendations": ` + threeRecs + `}`, ShapeWrapped, 3},
		{"single other key", `{"books": ` + threeRecs + `}`, ShapeSingleKey, 3},
		{"object without array", `{"recommendations": "none"}`, ShapeUnexpected, 0},
		{"several keys none known", `{"a": [], "b": []}`, ShapeUnexpected, 0},
		{"scalar", `"just text"`, ShapeUnexpected, 0},
		{"empty", `   `, ShapeUnexpected, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseRecommendations([]byte(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.shape, parsed.Shape)
			assert.Len(t, parsed.Items, tt.count)
		})
	}
}

func TestParseRecommendations_Fields(t *testing.T) {
	parsed, err := ParseRecommendations([]byte(`{"recommendations": [
		{"title": "  Dune ", "author": " Frank Herbert", "author_birth_date": "1920-10-08",
		 "author_date_of_death": "1986-02-11", "description": "Spice.", "isbn": "9780441013593",
		 "publication_year": 1965}
	]}`))
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)

	rec := parsed.Items[0]
	assert.Equal(t, "Dune", rec.Title)
	assert.Equal(t, "Frank Herbert", rec.Author)
	assert.Equal(t, "1920-10-08", rec.AuthorBirthDate)
	assert.Equal(t, "1986-02-11", rec.AuthorDateOfDeath)
	assert.Equal(t, "Spice.", rec.Description)
	assert.Equal(t, "9780441013593", rec.ISBN)
	assert.Equal(t, shared.FlexString("1965"), rec.PublicationYear)
}

func TestParseRecommendations_SkipsMalformedEntries(t *testing.T) {
	parsed, err := ParseRecommendations([]byte(`[{"title": "Dune", "author": "Frank Herbert"}, 42, "text", {"title": ["bad"]}]`))
	require.NoError(t, err)
	assert.Equal(t, ShapeArray, parsed.Shape)
	assert.Len(t, parsed.Items, 1)
	assert.Equal(t, 3, parsed.Skipped)
}

func TestParseRecommendations_InvalidJSON(t *testing.T) {
	for _, payload := range []string{`{"recommendations": [`, `[1, 2`, `not json`} {
		_, err := ParseRecommendations([]byte(payload))
		assert.Error(t, err, payload)
	}
}

func TestFilterExisting(t *testing.T) {
	parsed, err := ParseRecommendations([]byte(threeRecs))
	require.NoError(t, err)

	existing := map[Key]struct{}{
		{Title: "Hyperion", Author: "Dan Simmons"}: {},
		// Same title, different author: not a duplicate.
		{Title: "Dune", Author: "Brian Herbert"}: {},
	}

	filtered := FilterExisting(parsed.Items, existing)
	require.Len(t, filtered, 2)
	assert.Equal(t, "Dune", filtered[0].Title)
	assert.Equal(t, "Foundation", filtered[1].Title)

	assert.Empty(t, FilterExisting(nil, existing))
}

func TestBuildPrompt(t *testing.T) {
	rating := 9
	birth := shared.NewDate(1920, time.October, 8)
	death := shared.NewDate(1986, time.February, 11)
	author := &authorModel.Author{Name: "Frank Herbert", BirthDate: &birth, DateOfDeath: &death}

	payload := []BookPayload{
		NewBookPayload(bookModel.Book{Title: "Dune", Rating: &rating, PublicationYear: 1965, ISBN: "9780441013593"}, author),
	}
	prompt, err := BuildPrompt(payload, []string{"Dune", "Emma"})
	require.NoError(t, err)

	assert.Contains(t, prompt, `recommend exactly 3 similar titles`)
	assert.Contains(t, prompt, `["Dune","Emma"]`)
	assert.Contains(t, prompt, `"recommendations"`)
	assert.Contains(t, prompt, `"author_birth_date": "1920-10-08"`)
	assert.Contains(t, prompt, `"author_date_of_death": "1986-02-11"`)
	assert.Contains(t, prompt, `"publication_year": "1965"`)
	assert.Contains(t, prompt, `"rating": 9`)
	assert.Equal(t, 2, strings.Count(prompt, "exactly 3"))
}

func TestNewBookPayload_WithoutAuthor(t *testing.T) {
	p := NewBookPayload(bookModel.Book{Title: "Beowulf", AuthorName: ""}, nil)
	assert.Empty(t, p.Author)
	assert.Empty(t, p.AuthorBirthDate)
	assert.Empty(t, p.AuthorDateOfDeath)

	prompt, err := BuildPrompt(nil, nil)
	require.NoError(t, err)
	assert.Contains(t, prompt, "library: []")
}

func TestAddRecommendedRequest(t *testing.T) {
	now := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)

	req := AddRecommendedRequest{Title: " Dune ", Author: " Frank Herbert ", PublicationYear: " 1965 "}.Normalize()
	assert.Equal(t, "Dune", req.Title)
	assert.Equal(t, "Frank Herbert", req.Author)
	assert.Equal(t, 1965, req.Year(now))

	assert.Equal(t, 2025, AddRecommendedRequest{}.Year(now))
	assert.Equal(t, 2025, AddRecommendedRequest{PublicationYear: "circa 1900"}.Year(now))

	birth, death, err := AddRecommendedRequest{BirthDate: "1920-10-08"}.Dates()
	require.NoError(t, err)
	assert.Equal(t, "1920-10-08", birth.String())
	assert.Nil(t, death)

	_, _, err = AddRecommendedRequest{DateOfDeath: "Feb 1986"}.Dates()
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestPlaceholderISBN(t *testing.T) {
	a, b := PlaceholderISBN(), PlaceholderISBN()
	assert.True(t, strings.HasPrefix(a, "REC-"))
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(a), 32)
}
