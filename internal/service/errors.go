package service

import "errors"

// Error taxonomy surfaced to the transport layer. Services wrap these with
// a descriptive message; handlers branch on errors.Is.
var (
	// ErrValidation indicates a missing or malformed input field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates the record is absent or not owned by the caller.
	// Ownership failures are deliberately indistinguishable from absence.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or referential conflict.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates a failed login or password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
