package ratingservice

import "errors"

// Domain failures. Handlers publish these as failure events and ack the message.
var (
	// ErrRunnerNotFound indicates the runner has not signed up.
	ErrRunnerNotFound = errors.New("runner not found")

	// ErrRunnerAlreadyExists indicates a second sign-up for the same user.
	ErrRunnerAlreadyExists = errors.New("runner already signed up")

	// ErrAlreadyLoggedToday indicates the runner already logged a run for this date.
	ErrAlreadyLoggedToday = errors.New("run already logged today")

	// ErrInvalidDistance indicates a distance that is not a positive finite number.
	ErrInvalidDistance = errors.New("distance must be greater than zero")

	// ErrInvalidDate indicates a date expression that could not be understood.
	ErrInvalidDate = errors.New("could not understand date")

	// ErrNegativeValue indicates an admin value below zero.
	ErrNegativeValue = errors.New("value must not be negative")

	// ErrDayAlreadySwept indicates the end-of-day penalties for this date were already applied.
	ErrDayAlreadySwept = errors.New("day already swept")
)

// ErrConcurrentModification indicates the runner changed between read and write
// and the single retry also lost. It is returned as an error, not a failure result.
var ErrConcurrentModification = errors.New("runner was modified concurrently")
