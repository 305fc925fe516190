package domain

import (
	"errors"
	"fmt"
)

// Taxonomy sentinels. Every error surfaced by the application wraps exactly one of these.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInconsistent       = errors.New("aggregate inconsistent")
)

var (
	ErrMakerNotFound   = newError(ErrNotFound, "maker not found")
	ErrProductNotFound = newError(ErrNotFound, "product not found")
	ErrLaunchNotFound  = newError(ErrNotFound, "launch not found")
	ErrStoryNotFound   = newError(ErrNotFound, "story not found")

	ErrNotProductOwner        = newError(ErrForbidden, "only the product owner can do this")
	ErrLifetimeAccessRequired = newError(ErrForbidden, "lifetime access required")

	ErrAlreadyLaunched = newError(ErrConflict, "product already launched in this period")

	ErrSelfConnection = newError(ErrInvalidInput, "cannot follow yourself")
	ErrVotingClosed   = newError(ErrInvalidInput, "launch period has ended")
)

// Error is a domain error with a client-safe message. It unwraps to its taxonomy sentinel.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string         { return e.msg }
func (e *Error) Unwrap() error         { return e.kind }
func (e *Error) PublicMessage() string { return e.msg }

// Invalid builds an ErrInvalidInput error with a formatted message.
func Invalid(format string, args ...any) error {
	return newError(ErrInvalidInput, fmt.Sprintf(format, args...))
}
