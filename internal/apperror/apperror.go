// Package apperror defines the closed error taxonomy shared by every layer.
//
// Each sentinel names a condition the caller is expected to pattern-match on
// with errors.Is. Anything that doesn't wrap one of these is an internal
// failure: logged in full server-side, surfaced to the client only as a
// generic message.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both rows that don't exist and rows that have
	// expired — callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is deliberately uninformative: unknown email and
	// wrong password both map here, with the same message, so a login probe
	// can't learn whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEmail reports a uniqueness violation on users.email.
	ErrDuplicateEmail = errors.New("duplicate email")

	// ErrValidation marks a field-level failure that the caller recovers
	// from by re-rendering the originating form.
	ErrValidation = errors.New("validation failed")

	// ErrMalformed marks a request body that could not be decoded at all.
	// Unlike ErrValidation there is no echoable input to re-render.
	ErrMalformed = errors.New("malformed request")
)

// AppError attaches a human-readable message (and optionally the offending
// field) to one of the sentinel errors above.
type AppError struct {
	Err     error  // sentinel this error wraps
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id int64) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %d", resource, id),
	}
}

// InvalidCredentials always carries the same message, whatever the cause.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Email or password is incorrect",
	}
}

func DuplicateEmail() *AppError {
	return &AppError{
		Err:     ErrDuplicateEmail,
		Message: "Email address is already in use",
		Field:   "email",
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Malformed(message string) *AppError {
	return &AppError{
		Err:     ErrMalformed,
		Message: message,
	}
}
