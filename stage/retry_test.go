package stage

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/flowforge/flowkit/errors"
)

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	x := WithRetry(ExecutorFunc(func(context.Context, Parameters) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.Execution("greeter", stderrors.New("transient"))
		}
		return "ok", nil
	}), RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond})

	result, err := x.Execute(context.Background(), Parameters{})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result != "ok" || attempts != 3 {
		t.Errorf("expected ok after 3 attempts, got %v after %d", result, attempts)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	attempts := 0
	boom := errors.Execution("greeter", stderrors.New("still down"))
	x := WithRetry(ExecutorFunc(func(context.Context, Parameters) (any, error) {
		attempts++
		return nil, boom
	}), RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond})

	_, err := x.Execute(context.Background(), Parameters{})
	if !stderrors.Is(err, boom) {
		t.Errorf("expected last error returned, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetry_NonRetryableFailsFast(t *testing.T) {
	attempts := 0
	// Resolution errors are not retryable.
	terminal := errors.Resolution("greeter", stderrors.New("bad expression"))
	x := WithRetry(ExecutorFunc(func(context.Context, Parameters) (any, error) {
		attempts++
		return nil, terminal
	}), RetryConfig{MaxAttempts: 5, InitialBackoff: time.Millisecond})

	_, err := x.Execute(context.Background(), Parameters{})
	if !stderrors.Is(err, terminal) {
		t.Errorf("expected error returned, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected a single attempt, got %d", attempts)
	}
}

func TestWithRetry_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	x := WithRetry(ExecutorFunc(func(context.Context, Parameters) (any, error) {
		cancel()
		return nil, errors.Execution("greeter", stderrors.New("transient"))
	}), RetryConfig{MaxAttempts: 5, InitialBackoff: time.Hour})

	_, err := x.Execute(ctx, Parameters{})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
