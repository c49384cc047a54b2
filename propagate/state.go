package propagate

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/flowforge/flowkit/errors"
	"github.com/flowforge/flowkit/logger"
)

// state is the propagation state of one subscription.
type state int

const (
	stateIdle state = iota
	stateElementInFlight
	stateAwaitingTerminal
	stateTerminated
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateElementInFlight:
		return "element_in_flight"
	case stateAwaitingTerminal:
		return "awaiting_terminal"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// action is terminal work decided under the coordinator lock but executed
// outside it. Callers invoke the returned action (when non-nil) after the
// lock is released; some call sites run it on a fresh goroutine because
// they sit inside an emitter's delivery path.
type action func()

// coordinator is the four-state machine of one subscription. All mutable
// fields are guarded by mu; complete/fail are invoked at most once, after
// the transition to Terminated.
type coordinator struct {
	mu       sync.Mutex
	state    state
	inFlight int

	pendingErr      error
	pendingComplete bool
	timer           *clock.Timer

	complete func()
	fail     func(error)

	timeout time.Duration
	clk     clock.Clock
	log     *logger.Logger
}

func newCoordinator(complete func(), fail func(error), timeout time.Duration, clk clock.Clock, log *logger.Logger) *coordinator {
	return &coordinator{
		complete: complete,
		fail:     fail,
		timeout:  timeout,
		clk:      clk,
		log:      log,
	}
}

// elementStart records that an outer element entered the transform.
func (c *coordinator) elementStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateTerminated {
		return
	}
	c.inFlight++
	if c.state == stateIdle {
		c.state = stateElementInFlight
	}
}

// elementDone records that one transformed result surfaced on the inner
// sequence. When the last in-flight element drains while a terminal signal
// is pending, the returned action forwards it.
func (c *coordinator) elementDone() action {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateTerminated {
		return nil
	}
	if c.inFlight > 0 {
		c.inFlight--
	}
	if c.inFlight > 0 {
		return nil
	}
	switch c.state {
	case stateElementInFlight:
		c.state = stateIdle
		return nil
	case stateAwaitingTerminal:
		return c.finishLocked()
	default:
		return nil
	}
}

// outerError handles the outer sequence terminating with err. With elements
// in flight the error is held back and a timeout timer armed; otherwise it
// is forwarded at once.
func (c *coordinator) outerError(err error) action {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateTerminated {
		return nil
	}
	c.pendingErr = err
	if c.inFlight == 0 {
		return c.finishLocked()
	}
	c.state = stateAwaitingTerminal
	if c.timeout > 0 {
		c.timer = c.clk.AfterFunc(c.timeout, c.timeoutFired)
	}
	return nil
}

// outerComplete handles the outer sequence completing normally. Completion
// always waits for the in-flight elements to drain; there is no timeout on
// the success path.
func (c *coordinator) outerComplete() action {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateTerminated {
		return nil
	}
	c.pendingComplete = true
	if c.inFlight == 0 {
		return c.finishLocked()
	}
	c.state = stateAwaitingTerminal
	return nil
}

// timeoutFired force-forwards the held error after the configured wait.
// The caller still observes the original outer error, just late.
func (c *coordinator) timeoutFired() {
	c.mu.Lock()
	if c.state != stateAwaitingTerminal {
		c.mu.Unlock()
		return
	}
	c.log.Warn("terminal signal forced after timeout", logger.Fields(
		logger.FieldInFlight, c.inFlight,
		logger.FieldTimeout, c.timeout.Milliseconds(),
		logger.FieldError, errors.PropagationTimeout(c.pendingErr),
	))
	run := c.finishLocked()
	c.mu.Unlock()
	if run != nil {
		run()
	}
}

// cancel makes Terminated the current state without forwarding anything.
func (c *coordinator) cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminateLocked()
}

// finishLocked transitions to Terminated and returns the action forwarding
// the pending terminal signal. Called with c.mu held.
func (c *coordinator) finishLocked() action {
	c.terminateLocked()
	if c.pendingErr != nil {
		err := c.pendingErr
		return func() { c.fail(err) }
	}
	if c.pendingComplete {
		return func() { c.complete() }
	}
	return nil
}

func (c *coordinator) terminateLocked() {
	if c.state == stateTerminated {
		return
	}
	c.state = stateTerminated
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
