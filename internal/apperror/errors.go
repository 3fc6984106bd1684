// Package apperror defines the error kinds the API exposes and maps them to
// their wire representation.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an error into a stable code and HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindInvalidToken
	KindInvalidCredentials
	KindOriginRejected
	KindValidation
	KindInvalidRequest
	KindNotFound
	KindDuplicateEntry
	KindInvalidReference
)

var kindInfo = map[Kind]struct {
	code   string
	status int
}{
	KindInternal:           {"INTERNAL_ERROR", http.StatusInternalServerError},
	KindUnauthenticated:    {"UNAUTHORIZED", http.StatusUnauthorized},
	KindInvalidToken:       {"INVALID_TOKEN", http.StatusUnauthorized},
	KindInvalidCredentials: {"INVALID_CREDENTIALS", http.StatusUnauthorized},
	KindOriginRejected:     {"FORBIDDEN", http.StatusForbidden},
	KindValidation:         {"VALIDATION_ERROR", http.StatusBadRequest},
	KindInvalidRequest:     {"INVALID_REQUEST", http.StatusBadRequest},
	KindNotFound:           {"NOT_FOUND", http.StatusNotFound},
	KindDuplicateEntry:     {"DUPLICATE_ENTRY", http.StatusConflict},
	KindInvalidReference:   {"INVALID_REFERENCE", http.StatusBadRequest},
}

// Code returns the wire code of the kind.
func (k Kind) Code() string {
	return kindInfo[k].code
}

// Status returns the HTTP status of the kind.
func (k Kind) Status() int {
	return kindInfo[k].status
}

// Error is an error carrying a Kind and a client-safe message. Err holds the
// underlying cause, which is logged but never written to the client.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation builds a ValidationError from per-field messages. The message
// lists every field so clients that ignore Fields still see all problems.
func Validation(fields map[string]string) *Error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fields[name])
	}
	return &Error{Kind: KindValidation, Message: strings.Join(parts, ", "), Fields: fields}
}

// NotFound is shorthand for a NOT_FOUND error naming the entity.
func NotFound(entity string) *Error {
	return New(KindNotFound, entity+" not found")
}

// KindOf returns the kind of err, or KindInternal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
