// Package apierror provides standardized error types and response structures.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure so handlers can translate it to an HTTP status
// and callers can decide whether the operation is retryable.
type Kind string

const (
	// KindValidation — caller input violates a precondition. Never retried.
	KindValidation Kind = "validation"
	// KindNotFound — referenced record does not exist at operation time.
	KindNotFound Kind = "not_found"
	// KindPersistence — the store read/write failed; no partial effects applied.
	KindPersistence Kind = "persistence"
	// KindSync — remote fetch/push failed; local state unchanged, safe to retry.
	KindSync Kind = "sync"
)

// Error is the canonical error value returned by services.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, never serialized to clients
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Msg: msg} }

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }

func Persistence(err error) *Error {
	return &Error{Kind: KindPersistence, Msg: "storage operation failed", Err: err}
}

func Sync(msg string, err error) *Error { return &Error{Kind: KindSync, Msg: msg, Err: err} }

// Status maps an error to the HTTP status code handlers should respond with.
// Unclassified errors are treated as internal failures.
func Status(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindSync:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation error", Fields: fields}
}
