package stage

import (
	"context"

	"github.com/flowforge/flowkit/event"
)

// Parameters are the resolved inputs of one action execution.
type Parameters map[string]any

// String returns the string parameter under key, or "" when absent or not
// a string.
func (p Parameters) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns the int parameter under key, or 0 when absent or not an int.
func (p Parameters) Int(key string) int {
	n, _ := p[key].(int)
	return n
}

// Resolver resolves the action parameters for one inbound event. Resolvers
// are externally owned, shared across subscriptions and never mutated by
// the stage.
type Resolver interface {
	Resolve(ctx context.Context, ev *event.Event) (Parameters, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, ev *event.Event) (Parameters, error)

func (f ResolverFunc) Resolve(ctx context.Context, ev *event.Event) (Parameters, error) {
	return f(ctx, ev)
}

// Executor runs the stage's action with resolved parameters and returns
// the result payload. It may be synchronous or hop to another goroutine
// internally, as long as it returns the final result. Like Resolver, it is
// externally owned and shared.
type Executor interface {
	Execute(ctx context.Context, params Parameters) (any, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, params Parameters) (any, error)

func (f ExecutorFunc) Execute(ctx context.Context, params Parameters) (any, error) {
	return f(ctx, params)
}
