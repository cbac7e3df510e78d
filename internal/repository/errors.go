package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist (or, for
	// owner-scoped lookups, does not belong to the caller).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInUse indicates the record is still referenced by other rows.
	ErrInUse = errors.New("record is referenced")
)
