package model

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"library-backend/internal/shared"
)

// RecommendationCount is how many suggestions the AI is asked for.
const RecommendationCount = 3

// Recommendation is one AI suggestion that has not been persisted.
type Recommendation struct {
	Title             string            `json:"title"`
	Author            string            `json:"author"`
	AuthorBirthDate   string            `json:"author_birth_date"`
	AuthorDateOfDeath string            `json:"author_date_of_death"`
	Description       string            `json:"description"`
	ISBN              string            `json:"isbn"`
	PublicationYear   shared.FlexString `json:"publication_year"`
}

// Key is the (title, author name) pair used for deduplication.
func (r Recommendation) Key() Key {
	return Key{Title: r.Title, Author: r.Author}
}

// Key identifies a book by exact title and author name.
type Key struct {
	Title  string
	Author string
}

// Shape names the layout an AI payload arrived in.
type Shape string

const (
	ShapeArray      Shape = "array"      // [ {...}, ... ]
	ShapeWrapped    Shape = "wrapped"    // {"recommendations": [ ... ]}
	ShapeSingleKey  Shape = "single_key" // {"<anything>": [ ... ]}
	ShapeUnexpected Shape = "unexpected"
)

// Parsed is the canonical result of decoding an AI payload.
type Parsed struct {
	Shape Shape
	Items []Recommendation
	// Skipped counts array elements that were not recommendation objects.
	Skipped int
}

// rawJSON keeps a value undecoded until its shape is known.
type rawJSON []byte

func (r *rawJSON) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

// ParseRecommendations decodes the payload by shape. An unrecognised shape
// yields ShapeUnexpected with no items; only undecodable JSON is an error.
func ParseRecommendations(payload []byte) (Parsed, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return Parsed{Shape: ShapeUnexpected}, nil
	}

	switch payload[0] {
	case '[':
		items, skipped, err := decodeArray(payload)
		if err != nil {
			return Parsed{}, err
		}
		return Parsed{Shape: ShapeArray, Items: items, Skipped: skipped}, nil

	case '{':
		var obj map[string]rawJSON
		if err := json.Unmarshal(payload, &obj); err != nil {
			return Parsed{}, fmt.Errorf("decode recommendation object: %w", err)
		}

		shape := ShapeWrapped
		value, ok := obj["recommendations"]
		if !ok && len(obj) == 1 {
			for _, v := range obj {
				value = v
			}
			shape = ShapeSingleKey
			ok = true
		}
		if !ok || !isArray(value) {
			return Parsed{Shape: ShapeUnexpected}, nil
		}

		items, skipped, err := decodeArray(value)
		if err != nil {
			return Parsed{}, err
		}
		return Parsed{Shape: shape, Items: items, Skipped: skipped}, nil

	default:
		if !json.Valid(payload) {
			return Parsed{}, fmt.Errorf("decode recommendations: invalid JSON")
		}
		return Parsed{Shape: ShapeUnexpected}, nil
	}
}

func isArray(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '['
}

// decodeArray decodes each element on its own so one malformed entry does
// not discard the others.
func decodeArray(b []byte) ([]Recommendation, int, error) {
	var raw []rawJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode recommendation array: %w", err)
	}

	items := make([]Recommendation, 0, len(raw))
	skipped := 0
	for _, elem := range raw {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			skipped++
			continue
		}
		var rec Recommendation
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			skipped++
			continue
		}
		rec.Title = strings.TrimSpace(rec.Title)
		rec.Author = strings.TrimSpace(rec.Author)
		items = append(items, rec)
	}
	return items, skipped, nil
}

// FilterExisting drops recommendations whose exact (title, author) pair is
// already in the catalog. Order is preserved.
func FilterExisting(recs []Recommendation, existing map[Key]struct{}) []Recommendation {
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if _, dup := existing[r.Key()]; dup {
			continue
		}
		out = append(out, r)
	}
	return out
}
