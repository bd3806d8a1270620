package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSelection   = errors.New("table is not available for selection")
	ErrNoActiveTable      = errors.New("no active table selected")
	ErrEmptyOrder         = errors.New("order has no items")
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("unknown status value")
	ErrInvalidTransition  = errors.New("status transition not permitted")
	ErrSubmissionInFlight = errors.New("order submission already in progress")
	ErrSubmissionTimedOut = errors.New("order submission timed out")
)

// PersistenceError wraps a storage-level failure with its detail preserved.
type PersistenceError struct {
	Detail string
	Cause  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error: %s", e.Detail)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

// Submission stages, reported inside SubmissionError so the caller knows how
// far the write got before failing.
const (
	StageCreateOrder = "create_order"
	StageCreateLines = "create_lines"
	StageOccupyTable = "occupy_table"
)

// SubmissionError identifies which stage of the multi-step order submission
// failed. Cause carries the underlying error; Compensation is non-nil when a
// compensating cleanup was attempted and itself failed.
type SubmissionError struct {
	Stage        string
	Cause        error
	Compensation error
}

func (e *SubmissionError) Error() string {
	if e.Compensation != nil {
		return fmt.Sprintf("order submission failed at %s: %v (compensation also failed: %v)",
			e.Stage, e.Cause, e.Compensation)
	}
	return fmt.Sprintf("order submission failed at %s: %v", e.Stage, e.Cause)
}

func (e *SubmissionError) Unwrap() error { return e.Cause }
