package recordstore

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when a record with the same ID is already stored.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound is returned when no record has the requested ID.
	ErrNotFound = errors.New("not found")
)

// Error describes a failed store operation on a specific record.
type Error struct {
	Op  string
	ID  string
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}
