package sink

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/flowforge/flowkit/errors"
	"github.com/flowforge/flowkit/streams"
)

// Deferred is a publish endpoint usable before its subscriber exists.
// The zero value is not usable; construct with New. All methods are safe
// for concurrent use.
//
// One Deferred instance corresponds to one subscription epoch: it binds
// exactly once, never unbinds, and should be discarded once its sequence
// terminates.
type Deferred[T any] struct {
	mu         sync.Mutex
	emitter    streams.Emitter[T] // nil while unbound
	buffer     []bufferedOp[T]
	terminated bool

	diag *diagnostics
}

// bufferedOp is one pending emission, replayed on bind.
type bufferedOp[T any] struct {
	value    T
	err      error
	complete bool
}

// Option configures a Deferred sink.
type Option func(*options)

type options struct {
	diag *diagnostics
}

// New creates an unbound deferred sink.
func New[T any](opts ...Option) *Deferred[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Deferred[T]{diag: o.diag}
}

// Publisher returns the sequence fed by this sink. Subscribing binds the
// sink to the subscription's emitter; subscribing a second time violates
// the one-epoch contract and terminates the extra subscription with a
// DOUBLE_BIND error instead of rebinding.
func (d *Deferred[T]) Publisher() streams.Publisher[T] {
	return streams.Create(func(e streams.Emitter[T]) {
		if err := d.Bind(e); err != nil {
			e.Error(err)
		}
	})
}

// Bind attaches the real emitter, replaying every buffered emission in
// original order. It must be called exactly once; later calls return a
// DOUBLE_BIND error and leave the first binding in effect.
//
// The replay happens under the sink's lock: a Next racing with Bind is
// either buffered (and replayed) or forwarded strictly after the replay.
func (d *Deferred[T]) Bind(e streams.Emitter[T]) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.emitter != nil {
		d.diag.bindViolation()
		return errors.DoubleBind()
	}
	d.diag.recordBind()

	d.emitter = e
	buffered := d.buffer
	d.buffer = nil

	for _, op := range buffered {
		if err := d.forward(op); err != nil {
			return err
		}
	}
	return nil
}

// Next publishes an element: buffered while unbound, forwarded directly
// once bound. After a terminal signal the element is dropped and a
// POST_TERMINAL_EMIT error is returned (and logged when diagnostics are
// enabled); the sequence state is never corrupted.
func (d *Deferred[T]) Next(v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.terminated {
		d.diag.droppedEmit(v)
		return errors.PostTerminalEmit()
	}
	if d.emitter == nil {
		d.buffer = append(d.buffer, bufferedOp[T]{value: v})
		return nil
	}
	return d.forward(bufferedOp[T]{value: v})
}

// Error terminates the sequence with err. Like Next, it buffers while
// unbound. A second terminal signal returns a POST_TERMINAL_EMIT error.
func (d *Deferred[T]) Error(err error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.terminated {
		return errors.PostTerminalEmit()
	}
	d.terminated = true
	d.diag.recordTerminal()

	if d.emitter == nil {
		d.buffer = append(d.buffer, bufferedOp[T]{err: err})
		return nil
	}
	return d.forward(bufferedOp[T]{err: err})
}

// Complete terminates the sequence normally, with the same buffering and
// one-terminal rules as Error.
func (d *Deferred[T]) Complete() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.terminated {
		return errors.PostTerminalEmit()
	}
	d.terminated = true
	d.diag.recordTerminal()

	if d.emitter == nil {
		d.buffer = append(d.buffer, bufferedOp[T]{complete: true})
		return nil
	}
	return d.forward(bufferedOp[T]{complete: true})
}

// Bound reports whether the sink has been bound to a subscription.
func (d *Deferred[T]) Bound() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.emitter != nil
}

// forward pushes one operation into the bound emitter. Called with d.mu held.
func (d *Deferred[T]) forward(op bufferedOp[T]) error {
	switch {
	case op.complete:
		d.emitter.Complete()
	case op.err != nil:
		d.emitter.Error(op.err)
	default:
		if err := d.emitter.Next(op.value); err != nil {
			if stderrors.Is(err, streams.ErrCanceled) {
				return errors.Canceled().WithCause(err)
			}
			return fmt.Errorf("deferred sink: forward element: %w", err)
		}
	}
	return nil
}
