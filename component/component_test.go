package component

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/flowforge/flowkit/event"
	"github.com/flowforge/flowkit/stage"
	"github.com/flowforge/flowkit/streams"
	"github.com/flowforge/flowkit/testutil"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry(nil)
	c := &mockComponent{name: "enrich"}

	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	got := r.Get("enrich")
	if got == nil || got.Name() != "enrich" {
		t.Errorf("expected registered component back, got %v", got)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{name: "enrich"})

	if err := r.Register(&mockComponent{name: "enrich"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestStartAllInRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}

	r.Register(&mockComponent{name: "source", startOrder: &order})
	r.Register(&mockComponent{name: "enrich", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	if len(order) != 2 || order[0] != "source" || order[1] != "enrich" {
		t.Errorf("expected start order [source enrich], got %v", order)
	}
}

func TestStartAllStopsAtFirstError(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&mockComponent{name: "source", startErr: fmt.Errorf("connection refused")})
	r.Register(&mockComponent{name: "enrich", startOrder: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Error("expected error from StartAll")
	}
	if len(order) != 0 {
		t.Errorf("expected no further starts after failure, got %v", order)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}

	r.Register(&mockComponent{name: "source", stopOrder: &order})
	r.Register(&mockComponent{name: "enrich", stopOrder: &order})
	r.Register(&mockComponent{name: "publish", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 || order[0] != "publish" || order[1] != "enrich" || order[2] != "source" {
		t.Errorf("expected reverse stop order [publish enrich source], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&mockComponent{name: "source", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&mockComponent{name: "source", stopOrder: &order})
	r.Register(&mockComponent{name: "enrich", stopErr: fmt.Errorf("stop failed")})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
	if len(order) != 1 {
		t.Error("expected remaining components stopped despite the failure")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{name: "source", health: Health{Name: "source", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "enrich", health: Health{Name: "enrich", Status: StatusUnhealthy, Message: "timeout"}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy || results[1].Status != StatusUnhealthy {
		t.Errorf("unexpected health results: %v", results)
	}
}

func TestLazyInitializesOnceAndRetriesFailures(t *testing.T) {
	calls := 0
	fail := true
	l := NewLazy("connector", func(context.Context) error {
		calls++
		if fail {
			return fmt.Errorf("dial failed")
		}
		return nil
	})

	if err := l.Initialize(context.Background()); err == nil {
		t.Error("expected first initialization to fail")
	}
	if l.IsInitialized() {
		t.Error("expected uninitialized after failure")
	}

	fail = false
	if err := l.Initialize(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if err := l.Initialize(context.Background()); err != nil {
		t.Fatalf("expected repeated call to be a no-op, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 initializer calls, got %d", calls)
	}

	if h := l.Health(context.Background()); h.Status != StatusHealthy {
		t.Errorf("expected healthy after init, got %+v", h)
	}
}

func TestLazyStopClosesResource(t *testing.T) {
	closed := false
	l := NewLazy("connector", func(context.Context) error { return nil }).
		WithCloser(func() error { closed = true; return nil })

	l.Start(context.Background())
	if err := l.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if !closed || l.IsInitialized() {
		t.Error("expected closer to run and state to reset")
	}
}

func TestStageComponentLifecycle(t *testing.T) {
	s := stage.New("greeter",
		stage.ResolverFunc(func(_ context.Context, ev *event.Event) (stage.Parameters, error) {
			return stage.Parameters{"payload": ev.Payload}, nil
		}),
		stage.ExecutorFunc(func(_ context.Context, p stage.Parameters) (any, error) {
			return p["payload"], nil
		}))
	c := ForStage(s)

	if h := c.Health(context.Background()); h.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %+v", h)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if h := c.Health(context.Background()); h.Status != StatusHealthy {
		t.Errorf("expected healthy after start, got %+v", h)
	}

	rec := testutil.NewRecorder[*event.Event]()
	s.Apply(streams.Just(event.New("hi"))).Subscribe(rec)
	testutil.Probe(t, rec.Completed, "expected completion")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
