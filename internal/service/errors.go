package service

import (
	"errors"
)

// Error kinds. Handlers map these to HTTP statuses with errors.Is.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrPendingApproval  = errors.New("pending approval")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrInvalidOrExpired = errors.New("invalid or expired")
	ErrStorage          = errors.New("storage failure")
)

// Error carries a kind, a message safe to show to clients and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind error, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// PublicMessage returns the client-facing message of err, or "" when err carries none.
func PublicMessage(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return ""
}
