// Package apperr defines the error taxonomy shared across catalog
// initialization and request-time query construction.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the module's failure categories.
type Kind int

const (
	// KindConfigValidation marks a structurally invalid configuration.
	KindConfigValidation Kind = iota
	// KindInitialization marks metadata that could not be obtained or reconciled.
	// Initialization errors are fatal: the process never serves from a
	// partially-resolved catalog.
	KindInitialization
	// KindEntityNotFound marks a failed catalog lookup after the catalog is
	// ready. This indicates a programming invariant violation, not a normal
	// user-facing condition.
	KindEntityNotFound
	// KindBadRequest marks invalid caller-supplied runtime input.
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindConfigValidation:
		return "ConfigValidationError"
	case KindInitialization:
		return "ErrorInInitialization"
	case KindEntityNotFound:
		return "EntityNotFound"
	case KindBadRequest:
		return "BadRequest"
	default:
		return "Unknown"
	}
}

// Error carries a classified failure with optional wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ConfigValidation reports a structurally invalid configuration.
func ConfigValidation(format string, args ...any) error {
	return &Error{Kind: KindConfigValidation, Msg: fmt.Sprintf(format, args...)}
}

// Initialization reports a fatal metadata resolution failure.
func Initialization(format string, args ...any) error {
	return &Error{Kind: KindInitialization, Msg: fmt.Sprintf(format, args...)}
}

// InitializationWrap reports a fatal metadata resolution failure with a cause.
func InitializationWrap(cause error, format string, args ...any) error {
	return &Error{Kind: KindInitialization, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// EntityNotFound reports a missing catalog entry after the catalog is ready.
func EntityNotFound(entity string) error {
	return &Error{Kind: KindEntityNotFound, Msg: fmt.Sprintf("entity %q not found in catalog", entity)}
}

// BadRequest reports invalid caller input for query construction.
func BadRequest(format string, args ...any) error {
	return &Error{Kind: KindBadRequest, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err (or any error it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
