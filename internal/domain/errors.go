package domain

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates invalid caller-supplied input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the operation conflicts with current record state.
	ErrConflict = errors.New("conflict")
)
