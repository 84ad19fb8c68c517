package queue

import "fmt"

// ValidationError rejects bad input, such as joining while the workshop is
// closed. It is returned to the caller and never retried automatically.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NotFoundError reports an operation on a nonexistent entry or one already in
// a terminal state.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError reports a cross-entry collision (position or verification
// code) that survived internal retries.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// DependencyError reports a failed external collaborator (persistence, work
// order creation). The triggering transition has been rolled back in memory.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}
