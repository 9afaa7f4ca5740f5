// Package apperr defines the error taxonomy shared by the catalog engine and
// the HTTP transport.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	// KindNotFound indicates the referenced entity does not exist.
	KindNotFound Kind = "NOT_FOUND"
	// KindBadRequest indicates a referenced foreign entity (director, genre) does not exist.
	KindBadRequest Kind = "BAD_REQUEST"
	// KindUnprocessable indicates well-formed but semantically invalid input.
	KindUnprocessable Kind = "UNPROCESSABLE_ENTITY"
	// KindInternal indicates an unanticipated failure.
	KindInternal Kind = "INTERNAL"
)

// Error is an application error carrying its kind and a client-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the HTTP status associated with the error kind.
func (e *Error) Code() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) error      { return New(KindNotFound, message) }
func BadRequest(message string) error    { return New(KindBadRequest, message) }
func Unprocessable(message string) error { return New(KindUnprocessable, message) }

// Internal wraps an unexpected failure; its message is safe to return to clients.
func Internal(message string, err error) error { return Wrap(KindInternal, message, err) }

// KindOf reports the kind of err, or KindInternal when err is unclassified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Code returns the HTTP status for err; unclassified errors map to 500.
func Code(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message for err. Unclassified errors
// never leak their text.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "internal server error"
}

func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsBadRequest(err error) bool    { return KindOf(err) == KindBadRequest }
func IsUnprocessable(err error) bool { return KindOf(err) == KindUnprocessable }
