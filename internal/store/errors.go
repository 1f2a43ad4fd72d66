package store

import "errors"

var (
	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate means a uniqueness constraint was violated.
	ErrDuplicate = errors.New("document already exists")
)
