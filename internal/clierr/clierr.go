// Package clierr defines structured error types for the task engine and CLI.
// Errors carry a machine-readable code, a human-readable message,
// and optional details for programmatic consumers.
package clierr

import (
	"errors"
	"fmt"
	"strconv"
)

// Error codes are stable across minor versions.
const (
	TaskNotFound    = "TASK_NOT_FOUND"
	UnknownState    = "UNKNOWN_STATE"
	NoFurtherState  = "NO_FURTHER_STATE"
	DuplicateID     = "DUPLICATE_ID"
	CorruptStorage  = "CORRUPT_STORAGE"
	IOFailure       = "IO_FAILURE"
	InvalidInput    = "INVALID_INPUT"
	InvalidTaskID   = "INVALID_TASK_ID"
	InvalidDate     = "INVALID_DATE"
	MoveIntoSelf    = "MOVE_INTO_SELF"
	BackupNotFound  = "BACKUP_NOT_FOUND"
	ConfirmationReq = "CONFIRMATION_REQUIRED"
	StaleData       = "STALE_DATA"
	InternalError   = "INTERNAL_ERROR"
)

// Error represents a structured error with a machine-readable code.
type Error struct {
	Code    string
	Message string
	Details map[string]any

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// New creates an Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns the error with the given details map attached.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// WithCause returns the error with an underlying cause attached.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// ExitCode returns 2 for InternalError and IOFailure, 1 for all others.
func (e *Error) ExitCode() int {
	if e.Code == InternalError || e.Code == IOFailure {
		return 2 //nolint:mnd // exit code 2 for internal errors
	}
	return 1
}

// Is reports whether err (or anything it wraps) is an *Error with the given code.
func Is(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IO wraps a filesystem error that is not a plain "file absent" condition.
func IO(op, path string, err error) *Error {
	return Newf(IOFailure, "%s %s: %v", op, path, err).
		WithDetails(map[string]any{"op": op, "path": path}).
		WithCause(err)
}

// SilentError signals an exit code without additional output.
// Used by batch operations where results are already written to stdout.
type SilentError struct {
	Code int
}

// Error implements the error interface.
func (e *SilentError) Error() string { return "exit " + strconv.Itoa(e.Code) }
