package shared

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"library-backend/internal/shared/errs"
)

// DateLayout is the only accepted calendar date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day. It is stored as DATE in
// Postgres and as TEXT in SQLite, and serialised as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. An empty string yields nil.
func ParseDate(s string) (*Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, errs.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return &Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// FormatDate renders d or an empty string when d is nil.
func FormatDate(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. Postgres drivers hand back time.Time,
// SQLite hands back the stored text.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanText(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid stored date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// FlexString accepts a JSON string, number or boolean and keeps its text.
// Form-encoded and JSON clients can then share one request struct.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	switch {
	case s == "null":
		*f = ""
	case strings.HasPrefix(s, `"`):
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = FlexString(str)
	case s == "true" || s == "false":
		*f = FlexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid value %s: %w", s, err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}
