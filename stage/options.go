package stage

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/flowforge/flowkit/logger"
	"github.com/flowforge/flowkit/observability"
)

// Option configures a Stage.
type Option func(*Stage)

// WithLogger sets the stage logger. Defaults to a no-op logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Stage) { s.log = log }
}

// WithCompletionTimeout bounds how long an upstream error is held back
// waiting for in-flight events. Defaults to propagate.DefaultTimeout.
func WithCompletionTimeout(d time.Duration) Option {
	return func(s *Stage) { s.timeout = d }
}

// WithClock injects the clock driving the completion timeout.
func WithClock(c clock.Clock) Option {
	return func(s *Stage) { s.clk = c }
}

// WithHandoff processes events on a dedicated per-subscription worker with
// the given queue size instead of the producer's goroutine.
func WithHandoff(buffer int) Option {
	return func(s *Stage) {
		s.handoff = buffer
		s.handoffSet = true
	}
}

// WithDiagnostics enables sink drop diagnostics (stack captures around
// terminal signals). Observational only.
func WithDiagnostics() Option {
	return func(s *Stage) { s.diagnostics = true }
}

// WithMetrics attaches stage metric instruments.
func WithMetrics(m *observability.StageMetrics) Option {
	return func(s *Stage) { s.metrics = m }
}

// WithTracing enables a span around each event's resolve/execute cycle.
func WithTracing() Option {
	return func(s *Stage) { s.tracing = true }
}
