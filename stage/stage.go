package stage

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowforge/flowkit/errors"
	"github.com/flowforge/flowkit/event"
	"github.com/flowforge/flowkit/logger"
	"github.com/flowforge/flowkit/observability"
	"github.com/flowforge/flowkit/propagate"
	"github.com/flowforge/flowkit/sink"
	"github.com/flowforge/flowkit/streams"
)

// Lifecycle states reported by State.
const (
	StateConfigured = "configured"
	StateActive     = "active"
	StateIdle       = "idle"
)

// Stage is one reusable processing unit of an integration flow. All fields
// are set at construction and never mutated afterwards: every per-call
// mutable value lives in the sink/propagator pair built per subscription.
type Stage struct {
	name     string
	resolver Resolver
	executor Executor

	log         *logger.Logger
	clk         clock.Clock
	timeout     time.Duration
	handoff     int
	handoffSet  bool
	diagnostics bool
	tracing     bool
	metrics     *observability.StageMetrics

	// Observational counters only; correctness never depends on them.
	active         atomic.Int64
	everSubscribed atomic.Bool
}

// New creates a stage with the given collaborators.
func New(name string, resolver Resolver, executor Executor, opts ...Option) *Stage {
	s := &Stage{
		name:     name,
		resolver: resolver,
		executor: executor,
		log:      logger.Nop(),
		clk:      clock.New(),
		timeout:  propagate.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("stage").WithFields(map[string]any{logger.FieldStage: name})
	return s
}

// Name returns the stage name.
func (s *Stage) Name() string { return s.name }

// State reports the stage lifecycle state: configured until the first
// subscription, active while at least one subscription is live, idle
// (reusable) afterwards.
func (s *Stage) State() string {
	if s.active.Load() > 0 {
		return StateActive
	}
	if s.everSubscribed.Load() {
		return StateIdle
	}
	return StateConfigured
}

// ActiveSubscriptions returns how many subscriptions are currently live.
func (s *Stage) ActiveSubscriptions() int64 { return s.active.Load() }

// Apply transforms an inbound event sequence into the stage's outbound
// sequence. The returned publisher may be subscribed any number of times,
// concurrently or after earlier subscriptions terminated; each subscription
// gets its own deferred sink and propagation state.
func (s *Stage) Apply(in streams.Publisher[*event.Event]) streams.Publisher[*event.Event] {
	return streams.PublisherFunc[*event.Event](func(down streams.Subscriber[*event.Event]) {
		var sinkOpts []sink.Option
		if s.diagnostics {
			sinkOpts = append(sinkOpts, sink.WithDiagnostics(s.log))
		}
		snk := sink.New[*event.Event](sinkOpts...)

		propOpts := []propagate.Option{
			propagate.WithTimeout(s.timeout),
			propagate.WithClock(s.clk),
			propagate.WithLogger(s.log),
		}
		if s.handoffSet {
			propOpts = append(propOpts, propagate.WithHandoff(s.handoff))
		}

		merged := propagate.Completion[*event.Event, *event.Event](in, snk.Publisher(),
			func(ev *event.Event) { s.process(ev, snk) },
			func() { s.forwardCompletion(snk) },
			func(err error) { s.forwardError(snk, err) },
			propOpts...)

		merged.Subscribe(&trackingSubscriber{stage: s, down: down})
	})
}

// process resolves and executes one event, emitting exactly one result or
// error event into the sink. Collaborator panics are folded into the same
// error-event path as returned errors.
func (s *Stage) process(ev *event.Event, snk *sink.Deferred[*event.Event]) {
	ctx := context.Background()
	started := time.Now()

	if s.tracing {
		var span trace.Span
		ctx, span = observability.StartSpan(ctx, "stage.process", trace.WithAttributes(
			attribute.String("stage", s.name),
			attribute.String("event.id", ev.ID.String()),
			attribute.String("event.correlation_id", ev.CorrelationID),
		))
		defer span.End()
	}

	defer func() {
		if r := recover(); r != nil {
			s.emitFailure(ctx, snk, ev, errors.Execution(s.name, fmt.Errorf("panic: %v", r)))
		}
	}()

	params, err := s.resolver.Resolve(ctx, ev)
	if err != nil {
		s.emitFailure(ctx, snk, ev, errors.Resolution(s.name, err))
		return
	}

	result, err := s.executor.Execute(ctx, params)
	if err != nil {
		s.emitFailure(ctx, snk, ev, errors.Execution(s.name, err))
		return
	}

	if err := snk.Next(ev.Derive(result)); err != nil {
		s.log.Warn("result dropped", logger.Fields(
			logger.FieldEventID, ev.ID.String(),
			logger.FieldError, err.Error(),
		))
		return
	}
	s.metrics.RecordProcessed(ctx, s.name, time.Since(started))
	s.log.Debug("event processed", logger.Fields(
		logger.FieldEventID, ev.ID.String(),
		logger.FieldCorrelationID, ev.CorrelationID,
	))
}

// emitFailure folds a processing failure into exactly one error event.
func (s *Stage) emitFailure(ctx context.Context, snk *sink.Deferred[*event.Event], ev *event.Event, ferr *errors.FlowError) {
	observability.SetSpanError(trace.SpanFromContext(ctx), ferr)
	s.metrics.RecordFailed(ctx, s.name, string(ferr.Code))
	s.log.Warn("event failed", logger.Fields(
		logger.FieldEventID, ev.ID.String(),
		logger.FieldCorrelationID, ev.CorrelationID,
		logger.FieldError, ferr.Error(),
	))
	if err := snk.Next(event.Failed(ev, ferr)); err != nil {
		s.log.Warn("error event dropped", logger.Fields(
			logger.FieldEventID, ev.ID.String(),
			logger.FieldError, err.Error(),
		))
	}
}

func (s *Stage) forwardCompletion(snk *sink.Deferred[*event.Event]) {
	if err := snk.Complete(); err != nil {
		s.log.Warn("completion dropped", logger.ErrorFields("complete", err))
	}
}

func (s *Stage) forwardError(snk *sink.Deferred[*event.Event], cause error) {
	if err := snk.Error(cause); err != nil {
		s.log.Warn("terminal error dropped", logger.ErrorFields("error", err))
	}
}

// trackingSubscriber wraps the caller's subscriber to maintain the stage's
// lifecycle counters.
type trackingSubscriber struct {
	stage *Stage
	down  streams.Subscriber[*event.Event]
	ended atomic.Bool
}

func (t *trackingSubscriber) OnSubscribe(sub streams.Subscription) {
	t.stage.everSubscribed.Store(true)
	t.stage.active.Add(1)
	t.stage.metrics.SubscriptionStarted(context.Background(), t.stage.name)
	t.down.OnSubscribe(&trackedSubscription{Subscription: sub, owner: t})
}

func (t *trackingSubscriber) OnNext(v *event.Event) { t.down.OnNext(v) }

func (t *trackingSubscriber) OnError(err error) {
	t.down.OnError(err)
	t.end()
}

func (t *trackingSubscriber) OnComplete() {
	t.down.OnComplete()
	t.end()
}

func (t *trackingSubscriber) end() {
	if t.ended.CompareAndSwap(false, true) {
		t.stage.active.Add(-1)
		t.stage.metrics.SubscriptionEnded(context.Background(), t.stage.name)
	}
}

// trackedSubscription decrements the active counter when the caller
// cancels instead of waiting for a terminal signal.
type trackedSubscription struct {
	streams.Subscription
	owner *trackingSubscriber
}

func (t *trackedSubscription) Cancel() {
	t.Subscription.Cancel()
	t.owner.end()
}
