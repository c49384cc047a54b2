package propagate

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/flowforge/flowkit/sink"
	"github.com/flowforge/flowkit/streams"
	"github.com/flowforge/flowkit/testutil"
)

// wire builds the usual arrangement: a deferred sink as the inner sequence
// and a dispatch that appends " world" to each element.
func wire(outer streams.Publisher[string], opts ...Option) (streams.Publisher[string], *sink.Deferred[string]) {
	snk := sink.New[string]()
	merged := Completion[string, string](outer, snk.Publisher(),
		func(v string) { _ = snk.Next(v + " world") },
		func() { _ = snk.Complete() },
		func(err error) { _ = snk.Error(err) },
		opts...)
	return merged, snk
}

func TestCompletion_SingleElementThenComplete(t *testing.T) {
	merged, _ := wire(streams.Just("Hello"))

	rec := testutil.NewRecorder[string]()
	merged.Subscribe(rec)

	testutil.Probe(t, rec.Completed, "expected completion")
	got := rec.Values()
	if len(got) != 1 || got[0] != "Hello world" {
		t.Errorf("expected [Hello world], got %v", got)
	}
	if rec.Terminals() != 1 {
		t.Errorf("expected exactly one terminal signal, got %d", rec.Terminals())
	}
}

func TestCompletion_AllElementsInOrderBeforeCompletion(t *testing.T) {
	merged, _ := wire(streams.Just("a", "b", "c"))

	rec := testutil.NewRecorder[string]()
	merged.Subscribe(rec)

	testutil.Probe(t, rec.Completed, "expected completion")
	got := rec.Values()
	want := []string{"a world", "b world", "c world"}
	if len(got) != len(want) {
		t.Fatalf("expected %d elements, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestCompletion_OuterErrorAfterResults(t *testing.T) {
	boom := stderrors.New("boom")
	outer := streams.Create(func(e streams.Emitter[string]) {
		_ = e.Next("Hello")
		e.Error(boom)
	})
	merged, _ := wire(outer)

	rec := testutil.NewRecorder[string]()
	merged.Subscribe(rec)

	testutil.Probe(t, func() bool { return rec.Err() != nil }, "expected error terminal")
	got := rec.Values()
	if len(got) != 1 || got[0] != "Hello world" {
		t.Errorf("expected result before error, got %v", got)
	}
	if !stderrors.Is(rec.Err(), boom) {
		t.Errorf("expected boom, got %v", rec.Err())
	}
	if rec.Terminals() != 1 {
		t.Errorf("expected exactly one terminal signal, got %d", rec.Terminals())
	}
}

func TestCompletion_ErrorHeldWhileElementInFlight(t *testing.T) {
	boom := stderrors.New("boom")
	outer := streams.Create(func(e streams.Emitter[string]) {
		_ = e.Next("Hello")
		e.Error(boom)
	})

	// Slow dispatch on a hand-off worker: the outer error arrives while the
	// element is still transforming and must wait for its result.
	snk := sink.New[string]()
	merged := Completion[string, string](outer, snk.Publisher(),
		func(v string) {
			time.Sleep(50 * time.Millisecond)
			_ = snk.Next(v + " world")
		},
		func() { _ = snk.Complete() },
		func(err error) { _ = snk.Error(err) },
		WithHandoff(4))

	rec := testutil.NewRecorder[string]()
	merged.Subscribe(rec)

	testutil.Probe(t, func() bool { return rec.Err() != nil }, "expected error terminal")
	got := rec.Values()
	if len(got) != 1 || got[0] != "Hello world" {
		t.Errorf("expected in-flight result before error, got %v", got)
	}
	if !stderrors.Is(rec.Err(), boom) {
		t.Errorf("expected boom, got %v", rec.Err())
	}
}

func TestCompletion_TimeoutForcesError(t *testing.T) {
	boom := stderrors.New("boom")
	outer := streams.Create(func(e streams.Emitter[string]) {
		_ = e.Next("Hello")
		e.Error(boom)
	})

	mock := clock.NewMock()
	snk := sink.New[string]()
	// Dispatch swallows the element: its inner emission never arrives, so
	// only the timeout can release the held error.
	merged := Completion[string, string](outer, snk.Publisher(),
		func(string) {},
		func() { _ = snk.Complete() },
		func(err error) { _ = snk.Error(err) },
		WithTimeout(100*time.Millisecond), WithClock(mock))

	rec := testutil.NewRecorder[string]()
	merged.Subscribe(rec)

	if rec.Terminals() != 0 {
		t.Fatal("error must be held while the element is in flight")
	}

	mock.Add(200 * time.Millisecond)

	testutil.Probe(t, func() bool { return rec.Err() != nil }, "expected forced error after timeout")
	// The caller sees the original outer error, forwarded late.
	if !stderrors.Is(rec.Err(), boom) {
		t.Errorf("expected original error, got %v", rec.Err())
	}
	if rec.Count() != 0 {
		t.Errorf("expected no elements, got %v", rec.Values())
	}
}

func TestCompletion_CancelStopsTimer(t *testing.T) {
	boom := stderrors.New("boom")
	outer := streams.Create(func(e streams.Emitter[string]) {
		_ = e.Next("Hello")
		e.Error(boom)
	})

	mock := clock.NewMock()
	snk := sink.New[string]()
	merged := Completion[string, string](outer, snk.Publisher(),
		func(string) {},
		func() { _ = snk.Complete() },
		func(err error) { _ = snk.Error(err) },
		WithTimeout(100*time.Millisecond), WithClock(mock))

	rec := testutil.NewRecorder[string]()
	merged.Subscribe(rec)

	rec.Subscription().Cancel()
	mock.Add(time.Second)

	time.Sleep(50 * time.Millisecond)
	if rec.Terminals() != 0 {
		t.Errorf("expected no terminal after cancellation, got %d", rec.Terminals())
	}
}

func TestCompletion_HandoffPreservesOrder(t *testing.T) {
	const n = 25
	var inputs []string
	for i := 0; i < n; i++ {
		inputs = append(inputs, fmt.Sprintf("e%02d", i))
	}
	merged, _ := wire(streams.Just(inputs...), WithHandoff(4))

	rec := testutil.NewRecorder[string]()
	merged.Subscribe(rec)

	testutil.Probe(t, rec.Completed, "expected completion")
	got := rec.Values()
	if len(got) != n {
		t.Fatalf("expected %d elements, got %d", n, len(got))
	}
	for i, v := range got {
		want := fmt.Sprintf("e%02d world", i)
		if v != want {
			t.Errorf("position %d: expected %q, got %q", i, want, v)
		}
	}
	if !rec.Completed() {
		t.Error("expected completion strictly last")
	}
}

func TestCompletion_IndependentSubscriptionState(t *testing.T) {
	// Each wiring gets its own sink/coordinator pair: two consecutive runs
	// must not share any state.
	for round := 0; round < 2; round++ {
		merged, _ := wire(streams.Just("Hello"))
		rec := testutil.NewRecorder[string]()
		merged.Subscribe(rec)
		testutil.Probe(t, rec.Completed, "expected completion")
		if rec.Count() != 1 {
			t.Errorf("round %d: expected one element, got %v", round, rec.Values())
		}
	}
}
