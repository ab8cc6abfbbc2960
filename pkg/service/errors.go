package service

import "errors"

// ErrInvalidArgument is returned when a caller-supplied value fails
// validation. Validation always happens before any store or embedding
// call is made.
var ErrInvalidArgument = errors.New("invalid argument")
