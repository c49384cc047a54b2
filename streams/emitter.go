package streams

import "sync"

// emitter is the single per-subscription coordination point: it serializes
// delivery, enforces the one-terminal-signal rule and carries cancellation.
// It implements both Emitter and Subscription.
//
// Two locks, held strictly one at a time: deliverMu serializes the
// Next/Error/Complete delivery path, stateMu guards the cancellation state
// and hooks. Cancel never takes deliverMu, so a subscriber may cancel from
// inside its own OnNext without deadlocking; the element being delivered
// when Cancel lands still goes through.
type emitter[T any] struct {
	deliverMu  sync.Mutex
	sub        Subscriber[T]
	terminated bool // guarded by deliverMu

	stateMu     sync.Mutex
	canceled    bool
	cancelHooks []func()
}

func newEmitter[T any](s Subscriber[T]) *emitter[T] {
	return &emitter[T]{sub: s}
}

func (e *emitter[T]) Next(v T) error {
	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()
	if e.Canceled() {
		return ErrCanceled
	}
	if e.terminated {
		return ErrTerminated
	}
	e.sub.OnNext(v)
	return nil
}

func (e *emitter[T]) Error(err error) {
	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()
	if e.terminated || e.Canceled() {
		return
	}
	e.terminated = true
	e.sub.OnError(err)
}

func (e *emitter[T]) Complete() {
	e.deliverMu.Lock()
	defer e.deliverMu.Unlock()
	if e.terminated || e.Canceled() {
		return
	}
	e.terminated = true
	e.sub.OnComplete()
}

func (e *emitter[T]) OnCancel(fn func()) {
	e.stateMu.Lock()
	if e.canceled {
		e.stateMu.Unlock()
		fn()
		return
	}
	e.cancelHooks = append(e.cancelHooks, fn)
	e.stateMu.Unlock()
}

func (e *emitter[T]) Cancel() {
	e.stateMu.Lock()
	if e.canceled {
		e.stateMu.Unlock()
		return
	}
	e.canceled = true
	hooks := e.cancelHooks
	e.cancelHooks = nil
	e.stateMu.Unlock()

	// Hooks run outside both locks: they typically cancel upstream
	// subscriptions or stop timers.
	for _, fn := range hooks {
		fn()
	}
}

func (e *emitter[T]) Canceled() bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.canceled
}
