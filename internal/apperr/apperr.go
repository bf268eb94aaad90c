// Package apperr defines the error taxonomy used at the API boundary.
// Handlers return a tagged *Error; a single mapping table decides the HTTP
// status, so controllers never hard-code status codes.
package apperr

import "net/http"

type Kind int

const (
	KindInternal        Kind = iota // unexpected failure, masked in release mode
	KindValidation                  // request body failed schema checks
	KindUnauthenticated             // missing/invalid/expired credentials
	KindNotFound                    // absent row or cross-user reference
	KindConflict                    // duplicate or blocked mutation
)

var kindStatus = map[Kind]int{
	KindInternal:        http.StatusInternalServerError,
	KindValidation:      http.StatusUnprocessableEntity,
	KindUnauthenticated: http.StatusUnauthorized,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusBadRequest,
}

// Error carries a kind, a user-facing message and, for validation errors,
// a field -> message map. Err holds the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error { return e.Err }

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Operational reports whether the error is an expected request-level failure
// (as opposed to a bug or infrastructure fault that should be logged).
func (e *Error) Operational() bool {
	return e.Kind != KindInternal
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

// Validation wraps a field -> message map produced by a schema check.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed!", Fields: fields}
}

// Internal wraps an unexpected error from the store or another dependency.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// From coerces any error into an *Error, defaulting to KindInternal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: KindInternal, Message: "Something went wrong!", Err: err}
}
