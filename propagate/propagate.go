package propagate

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/flowforge/flowkit/logger"
	"github.com/flowforge/flowkit/streams"
)

// DefaultTimeout bounds how long an outer error is held back waiting for
// in-flight elements to drain.
const DefaultTimeout = 5 * time.Second

// Option configures the Completion operator.
type Option func(*options)

type options struct {
	timeout time.Duration
	clk     clock.Clock
	log     *logger.Logger
	handoff int // < 0 means synchronous dispatch
}

func defaultOptions() options {
	return options{
		timeout: DefaultTimeout,
		clk:     clock.New(),
		log:     logger.Nop(),
		handoff: -1,
	}
}

// WithTimeout sets how long an outer error waits for in-flight elements
// before being force-forwarded. Zero disables the bound (the error then
// waits indefinitely for the drain).
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithClock injects the clock used for the timeout timer. Tests use a mock
// clock to drive the forced-forwarding path deterministically.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clk = c }
}

// WithLogger sets the logger used for forced-timeout warnings.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) { o.log = log.WithComponent("propagate") }
}

// WithHandoff moves dispatch onto a dedicated per-subscription worker
// goroutine with the given queue size, so element processing runs off the
// producer's goroutine. Per-subscription element order is preserved.
func WithHandoff(buffer int) Option {
	return func(o *options) {
		if buffer < 0 {
			buffer = 0
		}
		o.handoff = buffer
	}
}

// Completion merges an outer sequence with an inner sequence whose elements
// are produced by dispatch, forwarding the outer terminal signal into the
// inner sequence only once it is safe:
//
//   - dispatch is called once per outer element and must cause exactly one
//     emission on the inner sequence (a result or a failure value);
//   - complete and fail must feed the inner sequence's sink, so the
//     terminal signal surfaces on the returned sequence;
//   - an outer error is forwarded once in-flight elements drain, or when
//     the timeout fires, whichever comes first;
//   - outer completion is forwarded only after the drain, strictly last.
//
// Each Subscribe on the returned publisher builds a fresh propagation state,
// so independent subscriptions never share coordination state.
func Completion[T, R any](
	outer streams.Publisher[T],
	inner streams.Publisher[R],
	dispatch func(T),
	complete func(),
	fail func(error),
	opts ...Option,
) streams.Publisher[R] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return streams.PublisherFunc[R](func(down streams.Subscriber[R]) {
		coord := newCoordinator(complete, fail, o.timeout, o.clk, o.log)
		comp := newComposite()
		comp.add(coord.cancel)

		deliver := dispatch
		finishInput := func() {}
		if o.handoff >= 0 {
			deliver, finishInput = startWorker(dispatch, o.handoff, comp)
		}

		inner.Subscribe(&tapSubscriber[R]{coord: coord, down: down, comp: comp})
		outer.Subscribe(&outerSubscriber[T]{
			coord:       coord,
			deliver:     deliver,
			finishInput: finishInput,
			comp:        comp,
		})
	})
}

// startWorker spawns the hand-off worker. The returned deliver function
// enqueues an element; finishInput closes the queue after the outer
// terminal so the worker drains what is left and exits. Cancellation stops
// the worker without draining.
func startWorker[T any](dispatch func(T), buffer int, comp *composite) (deliver func(T), finishInput func()) {
	ch := make(chan T, buffer)
	done := make(chan struct{})
	var closeOnce sync.Once

	comp.add(func() { closeOnce.Do(func() { close(done) }) })

	go func() {
		for {
			select {
			case v, ok := <-ch:
				if !ok {
					return
				}
				dispatch(v)
			case <-done:
				return
			}
		}
	}()

	deliver = func(v T) {
		select {
		case ch <- v:
		case <-done:
		}
	}
	// Safe to close here: the outer emitter serializes OnNext with the
	// terminal signal, so no send can race the close.
	finishInput = func() { close(ch) }
	return deliver, finishInput
}

// outerSubscriber feeds outer elements into dispatch and translates the
// outer terminal signal into coordinator events.
type outerSubscriber[T any] struct {
	coord       *coordinator
	deliver     func(T)
	finishInput func()
	comp        *composite
}

func (s *outerSubscriber[T]) OnSubscribe(sub streams.Subscription) {
	s.comp.add(sub.Cancel)
}

func (s *outerSubscriber[T]) OnNext(v T) {
	s.coord.elementStart()
	s.deliver(v)
}

func (s *outerSubscriber[T]) OnError(err error) {
	s.finishInput()
	if run := s.coord.outerError(err); run != nil {
		run()
	}
}

func (s *outerSubscriber[T]) OnComplete() {
	s.finishInput()
	if run := s.coord.outerComplete(); run != nil {
		run()
	}
}

// tapSubscriber sits between the inner sequence and the downstream
// subscriber: it forwards everything while feeding element-done events to
// the coordinator.
type tapSubscriber[R any] struct {
	coord *coordinator
	down  streams.Subscriber[R]
	comp  *composite
}

func (s *tapSubscriber[R]) OnSubscribe(sub streams.Subscription) {
	s.comp.add(sub.Cancel)
	s.down.OnSubscribe(s.comp)
}

func (s *tapSubscriber[R]) OnNext(v R) {
	s.down.OnNext(v)
	if run := s.coord.elementDone(); run != nil {
		// This call sits inside the inner emitter's delivery path; the
		// pending terminal must re-enter that emitter, so it runs on its
		// own goroutine and serializes behind the current element.
		go run()
	}
}

func (s *tapSubscriber[R]) OnError(err error) {
	s.down.OnError(err)
	s.coord.cancel()
	go s.comp.release()
}

func (s *tapSubscriber[R]) OnComplete() {
	s.down.OnComplete()
	s.coord.cancel()
	go s.comp.release()
}

// composite fans one downstream Subscription out to every upstream resource
// of the merged subscription: the outer and inner subscriptions, the
// coordinator and the hand-off worker.
type composite struct {
	mu       sync.Mutex
	canceled bool
	released bool
	cancels  []func()
}

func newComposite() *composite {
	return &composite{}
}

// add registers a cleanup hook, running it immediately when the
// subscription is already canceled or released.
func (s *composite) add(fn func()) {
	s.mu.Lock()
	if s.canceled || s.released {
		s.mu.Unlock()
		fn()
		return
	}
	s.cancels = append(s.cancels, fn)
	s.mu.Unlock()
}

func (s *composite) Cancel() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	hooks := s.cancels
	s.cancels = nil
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (s *composite) Canceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// release runs the cleanup hooks after natural termination without marking
// the subscription canceled.
func (s *composite) release() {
	s.mu.Lock()
	hooks := s.cancels
	s.cancels = nil
	s.released = true
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}
