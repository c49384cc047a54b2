package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Collaborator errors (raised while processing a single event)
const (
	// ErrCodeResolutionFailed indicates parameter resolution failed for an event.
	ErrCodeResolutionFailed ErrorCode = "RESOLUTION_FAILED"
	// ErrCodeExecutionFailed indicates the action executor failed for an event.
	ErrCodeExecutionFailed ErrorCode = "EXECUTION_FAILED"
)

// Coordination errors (raised by the sink/propagation layer)
const (
	// ErrCodePropagationTimeout indicates the propagator gave up waiting for
	// in-flight work and force-forwarded a terminal signal.
	ErrCodePropagationTimeout ErrorCode = "PROPAGATION_TIMEOUT"
	// ErrCodeDoubleBind indicates a deferred sink was bound more than once.
	ErrCodeDoubleBind ErrorCode = "DOUBLE_BIND"
	// ErrCodePostTerminalEmit indicates an emit arrived after a terminal signal.
	ErrCodePostTerminalEmit ErrorCode = "POST_TERMINAL_EMIT"
	// ErrCodeCanceled indicates the subscription was canceled before completion.
	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates the stage configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeResolutionFailed:   false,
	ErrCodeExecutionFailed:    true,
	ErrCodePropagationTimeout: true,
	ErrCodeDoubleBind:         false,
	ErrCodePostTerminalEmit:   false,
	ErrCodeCanceled:           false,
	ErrCodeInvalidConfig:      false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
