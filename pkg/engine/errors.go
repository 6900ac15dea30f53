package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorClass classifies an error for the external executor's retry logic.
// The planning core itself never retries; the classification travels with
// the error so the caller can decide.
type ErrorClass string

const (
	// ErrorClassTransient indicates a temporary failure that may succeed on
	// retry, such as a network timeout while applying an action.
	ErrorClassTransient ErrorClass = "transient"

	// ErrorClassConflict indicates a state conflict, such as a concurrent
	// modification of the live configuration.
	ErrorClassConflict ErrorClass = "conflict"

	// ErrorClassPermanent indicates a non-recoverable error, such as an
	// invalid fact store or a dependency cycle.
	ErrorClassPermanent ErrorClass = "permanent"
)

// EngineError is a classified error with resource context.
type EngineError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Resource identifies the resource involved, if applicable.
	Resource string `json:"resource,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Class, e.Message)
	if e.Resource != "" {
		msg += fmt.Sprintf(" (resource=%s)", e.Resource)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is implements error equality for errors.Is.
func (e *EngineError) Is(target error) bool {
	t, ok := target.(*EngineError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewTransientError creates a new transient error.
func NewTransientError(message string, err error) *EngineError {
	return &EngineError{Class: ErrorClassTransient, Message: message, Err: err}
}

// NewConflictError creates a new conflict error.
func NewConflictError(message string, err error) *EngineError {
	return &EngineError{Class: ErrorClassConflict, Message: message, Err: err}
}

// NewPermanentError creates a new permanent error.
func NewPermanentError(message string, err error) *EngineError {
	return &EngineError{Class: ErrorClassPermanent, Message: message, Err: err}
}

// WithCode adds an error code.
func (e *EngineError) WithCode(code string) *EngineError {
	e.Code = code
	return e
}

// WithResource adds resource context.
func (e *EngineError) WithResource(resource string) *EngineError {
	e.Resource = resource
	return e
}

// IsPermanent returns true if the error is classified as permanent.
func IsPermanent(err error) bool {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Class == ErrorClassPermanent
	}
	return false
}

// IsRetryable returns true if the external executor may retry the failed
// action. Transient and conflict errors are retryable.
func IsRetryable(err error) bool {
	var e *EngineError
	if errors.As(err, &e) {
		return e.Class == ErrorClassTransient || e.Class == ErrorClassConflict
	}
	return false
}

// Common error codes.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeMalformedFact = "MALFORMED_FACT"
	ErrCodeCycle         = "DEPENDENCY_CYCLE"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInternal      = "INTERNAL_ERROR"
	ErrCodePolicyDenied  = "POLICY_DENIED"
)

// CycleError reports that the action dependency graph is not a DAG. It
// carries every action left unscheduled when progress stopped, in generation
// order, for diagnosis. No partial plan accompanies a CycleError.
type CycleError struct {
	// Remaining are the actions that could not be scheduled.
	Remaining []Action
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	names := make([]string, 0, len(e.Remaining))
	for _, a := range e.Remaining {
		names = append(names, a.String())
	}
	return fmt.Sprintf("dependency cycle: %d actions unschedulable: %s",
		len(e.Remaining), strings.Join(names, ", "))
}

// IsCycle returns true if the error is a CycleError.
func IsCycle(err error) bool {
	var e *CycleError
	return errors.As(err, &e)
}
