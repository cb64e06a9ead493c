// Package apperror defines the error kinds surfaced by the content engines.
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the caller
type Kind int

const (
	KindSystem Kind = iota
	KindValidation
	KindNotFound
	KindPermission
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindPermission:
		return "permission"
	case KindConflict:
		return "conflict"
	default:
		return "system"
	}
}

// FieldError describes a single invalid input field
type FieldError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error is the error value returned by services
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
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

// Is matches another *Error of the same kind, so errors.Is(err, apperror.ErrConflict) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Kind sentinels for errors.Is
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrPermission = &Error{Kind: KindPermission}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrSystem     = &Error{Kind: KindSystem}
)

// Validation reports malformed or missing input
func Validation(message string, fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound reports an id that does not resolve to a live row
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Permission reports a caller lacking the required capability
func Permission(format string, args ...interface{}) *Error {
	return &Error{Kind: KindPermission, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a transition that is illegal for the current state
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// System wraps a store or infrastructure failure
func System(err error, op string) *Error {
	return &Error{Kind: KindSystem, Message: op, Err: err}
}

// KindOf returns the kind carried by err. Errors that were not produced by this
// package are treated as system failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

// FieldsOf returns the field errors carried by a validation error
func FieldsOf(err error) []FieldError {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// MessageOf returns the caller-facing message. System failures stay opaque.
func MessageOf(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindSystem {
		return "internal server error"
	}
	return e.Message
}
