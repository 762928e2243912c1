// Package apperror defines the error kinds surfaced by the API and their HTTP status mapping.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport purposes.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindAlreadyExists      Kind = "ALREADY_EXISTS"
	KindAlreadyActivated   Kind = "ALREADY_ACTIVATED"
	KindNotFound           Kind = "NOT_FOUND"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindInvalidToken       Kind = "INVALID_TOKEN"
	KindNotActivated       Kind = "NOT_ACTIVATED"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindForbidden          Kind = "FORBIDDEN"
	KindUpstream           Kind = "UPSTREAM_FAILURE"
	KindInternal           Kind = "INTERNAL_ERROR"
)

var statusByKind = map[Kind]int{
	KindValidation:         http.StatusBadRequest,
	KindAlreadyExists:      http.StatusBadRequest,
	KindAlreadyActivated:   http.StatusBadRequest,
	KindNotFound:           http.StatusNotFound,
	KindInvalidCredentials: http.StatusBadRequest,
	KindInvalidToken:       http.StatusBadRequest,
	KindNotActivated:       http.StatusBadRequest,
	KindUnauthenticated:    http.StatusUnauthorized,
	KindForbidden:          http.StatusForbidden,
	KindUpstream:           http.StatusInternalServerError,
	KindInternal:           http.StatusInternalServerError,
}

// Error is an application error carrying a kind and a user-facing message.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(cause error, kind Kind, message string) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the user-friendly message, without the cause.
func (e *Error) Message() string { return e.message }

// HTTPCode returns the HTTP status for the error kind.
func (e *Error) HTTPCode() int {
	if s, ok := statusByKind[e.kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WithMessage returns a copy with a different message but the same kind and cause.
func (e *Error) WithMessage(message string) *Error {
	return &Error{kind: e.kind, message: message, cause: e.cause}
}

// Is matches another *Error by kind and message so copies of a sentinel compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && t.message == e.message
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Validation is shorthand for a KindValidation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// Upstream wraps a failure of an external collaborator (media host, mail sender).
func Upstream(cause error, message string) *Error { return Wrap(cause, KindUpstream, message) }

// Predefined errors
var (
	ErrUserExists       = New(KindAlreadyExists, "User already exists")
	ErrUserNotFound     = New(KindNotFound, "User doesn't exist")
	ErrShopExists       = New(KindAlreadyExists, "Shop already exists")
	ErrShopNotFound     = New(KindNotFound, "Shop doesn't exist")
	ErrShopActivated    = New(KindAlreadyActivated, "Shop already activated")
	ErrShopNotActivated = New(KindNotActivated, "Shop is not activated")
	ErrProductNotFound  = New(KindNotFound, "Product not found")
	ErrAddressNotFound  = New(KindNotFound, "Address not found")

	ErrInvalidCredentials = New(KindInvalidCredentials, "Please provide the correct information")
	ErrInvalidToken       = New(KindInvalidToken, "Invalid token")
	ErrTokenExpired       = New(KindInvalidToken, "Your token has expired, please try again")

	ErrUnauthenticated = New(KindUnauthenticated, "Please login to continue")
	ErrForbidden       = New(KindForbidden, "You can not access this resource")

	ErrPasswordMismatch = New(KindValidation, "Password doesn't matched with each other!")
	ErrImageCount       = New(KindValidation, "A product requires exactly 5 images")
)
