package domain

import (
	"context"
	"errors"
)

// Sentinel errors for domain operations
var (
	// ErrValidation indicates bad input shape or range (user-correctable)
	ErrValidation = errors.New("invalid playground")

	// ErrNotFound indicates a stale or unknown playground ID
	ErrNotFound = errors.New("playground not found")

	// ErrStorage indicates a persistence read or write failed
	ErrStorage = errors.New("storage failure")

	// ErrSaveInProgress indicates a flush overlapped an in-flight write
	ErrSaveInProgress = errors.New("save already in progress")
)

// ErrorKind classifies an error for state tracking and notifications
type ErrorKind int

const (
	ErrorKindNone ErrorKind = iota
	ErrorKindValidation
	ErrorKindNotFound
	ErrorKindStorage
	ErrorKindUnknown
)

// String returns the display name for the kind
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindNone:
		return "none"
	case ErrorKindValidation:
		return "validation"
	case ErrorKindNotFound:
		return "not_found"
	case ErrorKindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Retryable returns true for kinds where retrying the same call may succeed
func (k ErrorKind) Retryable() bool {
	return k == ErrorKindStorage
}

// KindOf maps an error onto its kind. A nil error is ErrorKindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrStorage), errors.Is(err, ErrSaveInProgress):
		return ErrorKindStorage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorKindStorage
	default:
		return ErrorKindUnknown
	}
}
