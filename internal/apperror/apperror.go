package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the caller
type Kind string

const (
	KindForbidden    Kind = "Forbidden"
	KindBadRequest   Kind = "BadRequest"
	KindNotFound     Kind = "NotFound"
	KindInternal     Kind = "Internal"
	KindUnauthorized Kind = "Unauthorized"
)

// Sentinel errors, one per kind. errors.Is(err, ErrForbidden) matches any
// *Error of kind Forbidden.
var (
	ErrForbidden    = &Error{Kind: KindForbidden, Message: "forbidden"}
	ErrBadRequest   = &Error{Kind: KindBadRequest, Message: "bad request"}
	ErrNotFound     = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInternal     = &Error{Kind: KindInternal, Message: "internal error"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
)

// Error is a typed failure. Message is safe to show to clients; Err is the
// underlying cause and is only logged.
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

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so the sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == e.Message || isSentinel(t))
}

func isSentinel(e *Error) bool {
	switch e {
	case ErrForbidden, ErrBadRequest, ErrNotFound, ErrInternal, ErrUnauthorized:
		return true
	}
	return false
}

func Forbidden(message string) *Error { return &Error{Kind: KindForbidden, Message: message} }

func BadRequest(message string) *Error { return &Error{Kind: KindBadRequest, Message: message} }

func NotFound(message string) *Error { return &Error{Kind: KindNotFound, Message: message} }

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Internal wraps an unexpected cause. The cause never reaches the client.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// As returns err as *Error, wrapping unknown errors as Internal
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("internal error", err)
}

// KindOf returns the kind of err; unknown errors are Internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return As(err).Kind
}

// HTTPStatus maps a kind to its HTTP status code
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
