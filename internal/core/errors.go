package core

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrCapabilityMismatch = errors.New("settings not supported by printer")
	ErrPrinterUnavailable = errors.New("printer unavailable")
	ErrEmptyFileList      = errors.New("job references no files")
	ErrInvalidState       = errors.New("invalid job state")
)

// Failure reasons recorded on jobs that fail after submission. Validation
// failures never reach a job; these cover dispatch-time and execution-time
// causes only.
const (
	FailurePrinterUnavailable   = "printer_unavailable"
	FailureInterruptedExecution = "interrupted_execution"
)

// ExecutionError wraps an opaque cause reported by the print subsystem.
type ExecutionError struct {
	Cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed: %v", e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
