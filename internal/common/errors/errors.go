// Package errors provides the standardized error taxonomy for workflow steps.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// no response from the backend
	ErrCodeTransportFailed ErrorCode = "TRANSPORT_FAILED"
	// success:false or an HTTP error status
	ErrCodeBackendRejected ErrorCode = "BACKEND_REJECTED"
	// response shape or value did not match what the step expects
	ErrCodeAssertionFailed ErrorCode = "ASSERTION_FAILED"

	ErrCodeDependencyNotMet ErrorCode = "DEPENDENCY_NOT_MET"
	ErrCodeRunCancelled     ErrorCode = "RUN_CANCELLED"
	ErrCodeStepPanicked     ErrorCode = "STEP_PANICKED"
	ErrCodeReportSinkFailed ErrorCode = "REPORT_SINK_FAILED"
)

// StandardError represents a structured step error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"httpStatus,omitempty"`
	Body       string                 `json:"body,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	cause      error
}

func (e *StandardError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("StandardError[%s]: %s (status %d)", e.Code, e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// NewTransportError wraps a failure that produced no HTTP response.
func NewTransportError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportFailed,
		Message:   fmt.Sprintf("%s: request did not complete: %v", operation, err),
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewBackendError records a backend-reported failure. message is the
// backend's stated reason when it gave one.
func NewBackendError(operation string, status int, message, body string) *StandardError {
	if message == "" {
		message = fmt.Sprintf("%s rejected by backend", operation)
	}
	return &StandardError{
		Code:       ErrCodeBackendRejected,
		Message:    message,
		Details:    operation,
		HTTPStatus: status,
		Body:       body,
		Timestamp:  time.Now().UTC(),
	}
}

// NewAssertionError records a response that did not satisfy the step.
func NewAssertionError(format string, args ...interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssertionFailed,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now().UTC(),
	}
}

// NewResponseShapeError is an assertion failure that keeps the offending response.
func NewResponseShapeError(operation string, status int, body string, err error) *StandardError {
	return &StandardError{
		Code:       ErrCodeAssertionFailed,
		Message:    fmt.Sprintf("%s: unexpected response shape", operation),
		Details:    err.Error(),
		HTTPStatus: status,
		Body:       body,
		Timestamp:  time.Now().UTC(),
		cause:      err,
	}
}

func NewDependencyError(step, dependency string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDependencyNotMet,
		Message:   fmt.Sprintf("skipped: dependency %q did not pass", dependency),
		Details:   step,
		Timestamp: time.Now().UTC(),
	}
}

func NewCancelledError(step string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRunCancelled,
		Message:   "skipped: run cancelled",
		Details:   fmt.Sprintf("step: %s, cause: %v", step, err),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewPanicError(step string, recovered interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeStepPanicked,
		Message:   fmt.Sprintf("step panicked: %v", recovered),
		Details:   step,
		Timestamp: time.Now().UTC(),
	}
}

func NewSinkError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportSinkFailed,
		Message:   fmt.Sprintf("report sink %q failed", sink),
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// AsStandard extracts a StandardError from err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// Normalize always yields a StandardError; unknown errors count as assertion failures.
func Normalize(err error) *StandardError {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeAssertionFailed,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// IsBackendRejection reports whether err is a backend-reported failure.
func IsBackendRejection(err error) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == ErrCodeBackendRejected
}

// HTTPStatusOf returns the HTTP status carried by err, or 0.
func HTTPStatusOf(err error) int {
	if stdErr, ok := AsStandard(err); ok {
		return stdErr.HTTPStatus
	}
	return 0
}

// GetErrorCategory returns the taxonomy bucket of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTransportFailed:
		return "TRANSPORT"
	case ErrCodeBackendRejected:
		return "BACKEND"
	case ErrCodeAssertionFailed, ErrCodeStepPanicked:
		return "ASSERTION"
	case ErrCodeDependencyNotMet, ErrCodeRunCancelled:
		return "SKIPPED"
	case ErrCodeReportSinkFailed:
		return "REPORTING"
	default:
		return "OTHER"
	}
}
