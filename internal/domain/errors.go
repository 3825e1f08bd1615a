package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling in the
// HTTP layer without switch statements over concrete types.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// AccessDeniedError indicates the actor's resolved permission is below
	// what the operation requires
	AccessDeniedError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *AccessDeniedError) Error() string { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *AccessDeniedError) StatusCode() int { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAccessDenied    = errors.New("access denied")
	ErrCyclicMove      = errors.New("cyclic move")
	ErrOrphanedRestore = errors.New("orphaned restore")
	ErrCopyAborted     = errors.New("copy aborted")
)

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *AccessDeniedError) Is(target error) bool { return target == ErrAccessDenied }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (item, membership, visibility)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// CyclicMoveError is returned when a move would place an item inside its
// own subtree (the destination is the item itself or one of its descendants).
type CyclicMoveError struct {
	ItemID        string
	DestinationID string
}

func (e *CyclicMoveError) Error() string {
	return fmt.Sprintf("cannot move item %s into its own subtree (destination %s)", e.ItemID, e.DestinationID)
}

func (e *CyclicMoveError) StatusCode() int { return http.StatusBadRequest }

func (e *CyclicMoveError) Is(target error) bool { return target == ErrCyclicMove }

// OrphanedRestoreError is returned when a restore target's parent is missing
// or is itself still recycled.
type OrphanedRestoreError struct {
	ItemID string
}

func (e *OrphanedRestoreError) Error() string {
	return fmt.Sprintf("cannot restore item %s: parent is missing or recycled", e.ItemID)
}

func (e *OrphanedRestoreError) StatusCode() int { return http.StatusConflict }

func (e *OrphanedRestoreError) Is(target error) bool { return target == ErrOrphanedRestore }

// CopyAbortedError wraps any failure during a subtree clone. The whole clone
// is rolled back; no partial subtree is ever committed.
type CopyAbortedError struct {
	ItemID string
	Err    error
}

func (e *CopyAbortedError) Error() string {
	return fmt.Sprintf("copy of item %s aborted: %v", e.ItemID, e.Err)
}

func (e *CopyAbortedError) Unwrap() error { return e.Err }

func (e *CopyAbortedError) StatusCode() int { return http.StatusInternalServerError }

func (e *CopyAbortedError) Is(target error) bool { return target == ErrCopyAborted }

// InvalidIdentifierError is returned by the path codec when an id cannot be
// embedded in a materialized path.
type InvalidIdentifierError struct {
	ID string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q: must be non-empty and must not contain the path separator", e.ID)
}

func (e *InvalidIdentifierError) StatusCode() int { return http.StatusBadRequest }

func (e *InvalidIdentifierError) Is(target error) bool { return target == ErrValidation }
