package streams

// Observer is a func-based Subscriber. Nil callbacks are skipped.
type Observer[T any] struct {
	Next     func(v T)
	Err      func(err error)
	Complete func()

	sub Subscription
}

// Observe builds an Observer from the given callbacks.
func Observe[T any](next func(v T), errFn func(err error), complete func()) *Observer[T] {
	return &Observer[T]{Next: next, Err: errFn, Complete: complete}
}

func (o *Observer[T]) OnSubscribe(s Subscription) { o.sub = s }

func (o *Observer[T]) OnNext(v T) {
	if o.Next != nil {
		o.Next(v)
	}
}

func (o *Observer[T]) OnError(err error) {
	if o.Err != nil {
		o.Err(err)
	}
}

func (o *Observer[T]) OnComplete() {
	if o.Complete != nil {
		o.Complete()
	}
}

// Subscription returns the subscription captured at OnSubscribe time, or nil
// if the observer has not been subscribed yet.
func (o *Observer[T]) Subscription() Subscription { return o.sub }

// Consume subscribes the given callbacks to p and returns the subscription.
func Consume[T any](p Publisher[T], next func(v T), errFn func(err error), complete func()) Subscription {
	o := Observe(next, errFn, complete)
	p.Subscribe(o)
	return o.Subscription()
}
