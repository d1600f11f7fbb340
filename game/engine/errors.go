package engine

import "errors"

// Every failure returned by the engine and the session store wraps exactly
// one of these, so callers classify with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrLocked          = errors.New("locked")
	ErrForbidden       = errors.New("forbidden")
)
