// Package apperror defines the failure kinds shared by the service layer.
// Services never pick transport status codes; they return errors that
// unwrap to one of the kind sentinels below and the API layer maps them.
package apperror

import "errors"

// Kind sentinels.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limit exceeded")
)

// Error is a business failure with a human readable message.
// errors.Is matches both the *Error value itself and its Kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates a new Error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Validation is shorthand for a one-off validation failure.
func Validation(message string) *Error {
	return New(ErrValidation, message)
}

// KindOf reports which kind sentinel err unwraps to, or nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrUnauthorized, ErrRateLimited} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Message returns the user facing message of err when it is an *Error.
func Message(err error) (string, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	return "", false
}
