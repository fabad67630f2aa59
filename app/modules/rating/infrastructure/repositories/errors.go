package ratingdb

import "errors"

// Sentinel errors for the runner repository layer.
// These describe row presence and constraint outcomes, not domain validation.
var (
	// ErrNotFound indicates the requested runner does not exist.
	ErrNotFound = errors.New("runner record not found")

	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrAlreadyExists indicates a unique constraint on the runner's user id was hit.
	ErrAlreadyExists = errors.New("runner already exists")
)
