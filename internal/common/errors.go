package common

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures into the small set of categories the
// processor distinguishes when deciding whether to abort, record, or retry.
type ErrorKind string

const (
	// KindValidation indicates the source data is missing required structure.
	// The batch aborts before any per-employee work starts.
	KindValidation ErrorKind = "validation"
	// KindStorageIO indicates the status file could not be written.
	KindStorageIO ErrorKind = "storage_io"
	// KindPerEmployee indicates a render/upload failure for a single
	// employee. Recorded and never propagated past the batch loop.
	KindPerEmployee ErrorKind = "per_employee"
)

// Error carries an error kind alongside the message and wrapped cause.
// Unknown session or employee IDs are modeled as absence, not as an Error.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// IsKind reports whether err or any error in its chain is an *Error of the
// given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
