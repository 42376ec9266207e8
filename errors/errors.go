package errors

import (
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates the condition is transient.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// ExitCode returns the process exit code for this error.
func (e *AppError) ExitCode() int { return ExitCodeFor(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// Configuration creates an error for an invalid or out-of-range setting.
func Configuration(key, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeConfiguration,
		Message: fmt.Sprintf("invalid %s: %s", key, reason),
		Details: map[string]any{"key": key},
	}
}

// Bind creates an error for a listening socket that could not be acquired.
func Bind(addr string, cause error) *AppError {
	return &AppError{
		Code:    ErrCodeBind,
		Message: fmt.Sprintf("cannot listen on %s", addr),
		Details: map[string]any{"addr": addr},
		Cause:   cause,
	}
}

// Privilege creates an error for a failed or impossible identity switch.
func Privilege(identity, reason string) *AppError {
	return &AppError{
		Code:    ErrCodePrivilege,
		Message: fmt.Sprintf("cannot run as %q: %s", identity, reason),
		Details: map[string]any{"identity": identity},
	}
}

// HealthCheckFailed creates a transient error for a failed probe.
func HealthCheckFailed(target string, cause error) *AppError {
	return &AppError{
		Code:      ErrCodeHealthCheckFailed,
		Message:   fmt.Sprintf("health probe of %s failed", target),
		Retryable: true,
		Details:   map[string]any{"target": target},
		Cause:     cause,
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "unexpected failure",
		Cause:   cause,
	}
}
