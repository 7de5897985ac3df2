package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the library.
type ErrorCode string

// Coordinator error codes
const (
	ErrWorkerFault   ErrorCode = "WORKER_FAULT"
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrRunAborted    ErrorCode = "RUN_ABORTED"
)

// Store and pool error codes
const (
	ErrDuplicateKey ErrorCode = "DUPLICATE_KEY"
	ErrStoreClosed  ErrorCode = "STORE_CLOSED"
	ErrPoolClosed   ErrorCode = "POOL_CLOSED"
	ErrQueueClosed  ErrorCode = "QUEUE_CLOSED"
)

// Error represents a structured error with code, message, and the
// identity of the worker it originated from, if any.
type Error struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	WorkerID string    `json:"worker_id,omitempty"`
	Cause    error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.WorkerID != "" && e.Cause != nil:
		return fmt.Sprintf("[%s] worker %s: %s: %v", e.Code, e.WorkerID, e.Message, e.Cause)
	case e.WorkerID != "":
		return fmt.Sprintf("[%s] worker %s: %s", e.Code, e.WorkerID, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithWorker tags the error with the originating worker's identity.
func (e *Error) WithWorker(workerID string) *Error {
	e.WorkerID = workerID
	return e
}

// IsErrorCode reports whether err carries the given code anywhere in
// its unwrap chain.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FaultWorker extracts the failing worker's identity from an error.
func FaultWorker(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.WorkerID, e.WorkerID != ""
	}
	return "", false
}
