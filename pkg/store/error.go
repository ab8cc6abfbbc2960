package store

import "errors"

var (
	// ErrNotFound is returned when a routine is not found in the store.
	ErrNotFound = errors.New("routine not found")

	// ErrUnavailable is returned when the vector store cannot be reached.
	ErrUnavailable = errors.New("vector store unavailable")
)
