package ratingdomain

import "errors"

// ErrInvalidInput is returned for inputs the engine has no defined answer for:
// negative RR, streak or position, non-positive distance, unknown tier, duplicate runner ids.
var ErrInvalidInput = errors.New("invalid input")
