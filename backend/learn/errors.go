package learn

import (
	"errors"
	"fmt"
)

// ErrEmptyLabel rejects goal operations with a blank target label.
var ErrEmptyLabel = errors.New("goal label must not be empty")

// NotFoundError reports a missing outline, course, module or goal.
// Every mutation checks existence before touching anything.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// AlreadyInProgressError is the re-entrancy guard tripping: a second
// generation or regroup request arrived for a key that is still in
// flight. Callers get an immediate failure, never a queue.
type AlreadyInProgressError struct {
	Op  string
	Key string
}

func (e *AlreadyInProgressError) Error() string {
	return fmt.Sprintf("%s already in progress for %q", e.Op, e.Key)
}

// TransactionError wraps a failed multi-table write. The store
// guarantees the previously committed state is still intact.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// GenerationError wraps an external generation-service failure. It is
// recorded per course and surfaced through the error-record selector;
// the shell course and outline survive for retry.
type GenerationError struct {
	CourseID string
	Err      error
}

func (e *GenerationError) Error() string {
	if e.CourseID == "" {
		return fmt.Sprintf("generation failed: %v", e.Err)
	}
	return fmt.Sprintf("generation failed for course %q: %v", e.CourseID, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
