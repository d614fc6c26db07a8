// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the typed errors returned by the service layer.
// Each error carries a Kind that the HTTP layer maps to a status code, a
// user-facing message, optional per-field validation messages, and the
// underlying cause for logging.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
)

// String returns a lowercase name for the kind, used in log attributes.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAuthentication, KindAuthorization:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Fields maps an input field name to its validation messages.
type Fields map[string][]string

// Add appends a message for field.
func (f Fields) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Error is the error type returned across the service boundary.
type Error struct {
	// Err is the underlying cause (for logging, never exposed to clients).
	Err error

	// Fields holds validation messages keyed by input field.
	Fields Fields

	// Message is the user-facing message.
	Message string

	Kind Kind
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a KindValidation error with per-field messages.
func Validation(fields Fields) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed.", Fields: fields}
}

// Authentication reports rejected credentials.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// Authorization reports a missing or invalid session.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

// Unexpected wraps an internal failure. The message should be safe to show.
func Unexpected(message string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// KindOf returns the Kind of err, or KindUnexpected when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
