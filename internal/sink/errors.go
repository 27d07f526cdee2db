package sink

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is returned when the top-level record is nil.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrEncoding is returned for an unsupported scalar kind or a byte
	// buffer whose length does not match the requested type.
	ErrEncoding = errors.New("encoding mismatch")
	// ErrConfigMissing is returned when a required destination property is
	// not configured.
	ErrConfigMissing = errors.New("missing configuration")
	// ErrMissingField is returned when a configured rowkey column is absent
	// from the record's merged field map.
	ErrMissingField = errors.New("missing field")
	// ErrColumnRouting is returned when a column configured for a family
	// cannot be resolved against the record's merged field map.
	ErrColumnRouting = errors.New("unroutable column")
)

// Error wraps a sentinel error with additional context
type Error struct {
	err     error  // The underlying sentinel error
	context string // Additional error context
}

// Error satisfies the error interface
func (e *Error) Error() string {
	if e.context == "" {
		return e.err.Error()
	}
	return fmt.Sprintf("%s: %s", e.err.Error(), e.context)
}

// Unwrap implements the errors.Unwrap interface for compatibility with errors.Is/As
func (e *Error) Unwrap() error {
	return e.err
}

// NewError creates a new sink error with context
func NewError(err error, format string, args ...interface{}) *Error {
	return &Error{
		err:     err,
		context: fmt.Sprintf(format, args...),
	}
}
