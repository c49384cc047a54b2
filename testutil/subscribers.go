package testutil

import (
	"sync"

	"github.com/flowforge/flowkit/streams"
)

// Recorder is a streams.Subscriber that records everything it observes.
// Safe for concurrent use; assert with Values/Err/Completed/Terminals.
type Recorder[T any] struct {
	mu        sync.Mutex
	values    []T
	err       error
	completed bool
	terminals int
	sub       streams.Subscription
}

// NewRecorder creates an empty recording subscriber.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{}
}

func (r *Recorder[T]) OnSubscribe(s streams.Subscription) {
	r.mu.Lock()
	r.sub = s
	r.mu.Unlock()
}

func (r *Recorder[T]) OnNext(v T) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
}

func (r *Recorder[T]) OnError(err error) {
	r.mu.Lock()
	r.err = err
	r.terminals++
	r.mu.Unlock()
}

func (r *Recorder[T]) OnComplete() {
	r.mu.Lock()
	r.completed = true
	r.terminals++
	r.mu.Unlock()
}

// Values returns a copy of the recorded elements in arrival order.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Count returns how many elements arrived so far.
func (r *Recorder[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// Err returns the recorded terminal error, if any.
func (r *Recorder[T]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Completed reports whether OnComplete was observed.
func (r *Recorder[T]) Completed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed
}

// Terminals returns how many terminal signals were observed. Anything
// other than one is a contract violation worth asserting on.
func (r *Recorder[T]) Terminals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.terminals
}

// Subscription returns the captured subscription.
func (r *Recorder[T]) Subscription() streams.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sub
}
