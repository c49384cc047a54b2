package errors

import (
	stderrors "errors"
	"fmt"
)

// FlowError is the unified pipeline error type.
type FlowError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *FlowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *FlowError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *FlowError) WithCause(cause error) *FlowError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *FlowError) WithDetails(details map[string]any) *FlowError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *FlowError) WithDetail(key string, value any) *FlowError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new FlowError with automatic retryable detection.
func New(code ErrorCode, message string) *FlowError {
	return &FlowError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// Resolution creates a FlowError for a failed parameter resolution.
func Resolution(stage string, cause error) *FlowError {
	return &FlowError{
		Code: ErrCodeResolutionFailed, Message: fmt.Sprintf("parameter resolution failed in stage %q", stage),
		Retryable: false, Cause: cause,
		Details: map[string]any{"stage": stage},
	}
}

// Execution creates a FlowError for a failed action execution.
func Execution(stage string, cause error) *FlowError {
	return &FlowError{
		Code: ErrCodeExecutionFailed, Message: fmt.Sprintf("action execution failed in stage %q", stage),
		Retryable: true, Cause: cause,
		Details: map[string]any{"stage": stage},
	}
}

// PropagationTimeout creates a FlowError for an expired completion wait.
// It is internal to the propagation layer: callers observe the original
// outer error, forwarded late, never this type.
func PropagationTimeout(cause error) *FlowError {
	return &FlowError{
		Code: ErrCodePropagationTimeout, Message: "timed out waiting for in-flight events to drain",
		Retryable: true, Cause: cause,
	}
}

// DoubleBind creates a FlowError for a sink bound more than once.
func DoubleBind() *FlowError {
	return &FlowError{
		Code: ErrCodeDoubleBind, Message: "deferred sink already bound",
		Retryable: false,
	}
}

// PostTerminalEmit creates a FlowError for an emit after a terminal signal.
func PostTerminalEmit() *FlowError {
	return &FlowError{
		Code: ErrCodePostTerminalEmit, Message: "emit after terminal signal",
		Retryable: false,
	}
}

// Canceled creates a FlowError for a canceled subscription.
func Canceled() *FlowError {
	return &FlowError{
		Code: ErrCodeCanceled, Message: "subscription canceled",
		Retryable: false,
	}
}

// InvalidConfig creates a FlowError for invalid stage configuration.
func InvalidConfig(field, reason string) *FlowError {
	return &FlowError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid configuration: %s %s", field, reason),
		Retryable: false,
		Details:   map[string]any{"field": field},
	}
}

// --- Helpers ---

// IsFlowError checks if an error is a FlowError and returns it.
func IsFlowError(err error) (*FlowError, bool) {
	var fe *FlowError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if fe, ok := IsFlowError(err); ok {
		return fe.Retryable
	}
	return false
}

// HasCode checks if an error carries the given error code.
func HasCode(err error, code ErrorCode) bool {
	if fe, ok := IsFlowError(err); ok {
		return fe.Code == code
	}
	return false
}

// Wrap wraps any error into a FlowError with the given code. If the error
// already is a FlowError it is returned unchanged.
func Wrap(err error, code ErrorCode, message string) *FlowError {
	if err == nil {
		return nil
	}
	if fe, ok := IsFlowError(err); ok {
		return fe
	}
	return &FlowError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
		Cause:     err,
	}
}
