package utils

import (
	"errors"
	"regexp"
)

var (
	// ErrEmptyID is returned when an identifier is empty.
	ErrEmptyID = errors.New("ID cannot be empty")
	// ErrInvalidIDFormat is returned when an identifier carries characters
	// outside the allowed set.
	ErrInvalidIDFormat = errors.New("ID can only contain letters, numbers, hyphens and underscores")
	// ErrIDTooLong is returned when an identifier exceeds the maximum length.
	ErrIDTooLong = errors.New("ID cannot exceed 64 characters")
)

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateID checks an identifier taken from a URL path before it
// reaches the database layer.
func ValidateID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidIDFormat
	}
	if len(id) > 64 {
		return ErrIDTooLong
	}
	return nil
}
