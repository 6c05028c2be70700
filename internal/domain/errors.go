package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an invoice does not exist in the store
var ErrNotFound = errors.New("invoice not found")

// FieldError describes one failed check on a named field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when an invoice fails save-time checks.
// Nothing is written to the store when it is returned.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the given field failed validation
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// StorageError wraps a failure of the underlying store
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ParseError is returned when an imported document cannot be read
type ParseError struct {
	Field string // empty when the document itself is malformed
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid invoice file: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("invalid invoice file: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
