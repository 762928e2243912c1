package repository

import "errors"

var (
	// ErrNotFound is returned when no document matches the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
)
