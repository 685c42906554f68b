package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ParseStringToUUID returns uuid.Nil for empty or malformed input
func ParseStringToUUID(s string) uuid.UUID {
	s = strings.TrimSpace(s)
	uid, err := uuid.Parse(s)
	if err != nil || s == "" {
		return uuid.Nil
	}
	return uid
}

// ParseOptionalUUID returns nil when s is empty or not a UUID.
// Query filters treat a bad id the same as no id.
func ParseOptionalUUID(s string) *uuid.UUID {
	uid := ParseStringToUUID(s)
	if uid == uuid.Nil {
		return nil
	}
	return &uid
}

// IsDigits reports whether s is a non-empty run of ASCII digits
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
