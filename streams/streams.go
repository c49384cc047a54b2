package streams

import "errors"

// Terminal-state errors returned by Emitter.Next.
var (
	// ErrTerminated is returned when emitting after a terminal signal.
	ErrTerminated = errors.New("streams: sequence already terminated")
	// ErrCanceled is returned when emitting on a canceled subscription.
	ErrCanceled = errors.New("streams: subscription canceled")
)

// Publisher is a provider of a sequenced stream of elements. Each call to
// Subscribe opens a new, independent subscription.
type Publisher[T any] interface {
	Subscribe(s Subscriber[T])
}

// Subscriber receives the signals of one subscription: OnSubscribe once,
// then zero or more OnNext calls, then at most one OnError or OnComplete.
type Subscriber[T any] interface {
	OnSubscribe(s Subscription)
	OnNext(v T)
	OnError(err error)
	OnComplete()
}

// Subscription is the one-to-one lifecycle handle between a Subscriber and
// a Publisher.
type Subscription interface {
	// Cancel stops delivery. In-flight producer work may still run, but its
	// output is discarded. Idempotent.
	Cancel()
	// Canceled reports whether Cancel has been called.
	Canceled() bool
}

// Emitter is the producer-side handle of one subscription. Methods are safe
// to call from any goroutine; delivery is serialized in call order.
type Emitter[T any] interface {
	// Next delivers an element downstream. Returns ErrTerminated after a
	// terminal signal and ErrCanceled after cancellation; the element is
	// dropped in both cases.
	Next(v T) error
	// Error terminates the sequence with err. No-op after a terminal signal.
	Error(err error)
	// Complete terminates the sequence normally. No-op after a terminal signal.
	Complete()
	// OnCancel registers a hook invoked exactly once when the subscription is
	// canceled. Registering after cancellation runs the hook immediately.
	OnCancel(fn func())
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc[T any] func(s Subscriber[T])

func (f PublisherFunc[T]) Subscribe(s Subscriber[T]) { f(s) }

// Create returns a Publisher that, for each subscription, hands a fresh
// Emitter to produce. The function runs synchronously on the subscribing
// goroutine but may retain the emitter and keep emitting from others.
func Create[T any](produce func(e Emitter[T])) Publisher[T] {
	return PublisherFunc[T](func(s Subscriber[T]) {
		em := newEmitter(s)
		s.OnSubscribe(em)
		produce(em)
	})
}

// Just returns a Publisher that emits the given values and completes.
func Just[T any](values ...T) Publisher[T] {
	return Create(func(e Emitter[T]) {
		for _, v := range values {
			if err := e.Next(v); err != nil {
				return
			}
		}
		e.Complete()
	})
}

// Fail returns a Publisher that immediately terminates with err.
func Fail[T any](err error) Publisher[T] {
	return Create(func(e Emitter[T]) {
		e.Error(err)
	})
}
