package component

import (
	"context"
	"fmt"
	"sync"

	"github.com/flowforge/flowkit/logger"
)

// Lazy provides thread-safe deferred initialization for components whose
// setup is expensive, such as connector clients an executor only needs on
// the first event.
type Lazy struct {
	name        string
	mu          sync.RWMutex
	initialized bool
	lastError   error
	initializer func(ctx context.Context) error
	healthCheck func(ctx context.Context) error
	closer      func() error
	log         *logger.Logger
}

// NewLazy creates a lazy component with the given initializer.
func NewLazy(name string, initializer func(context.Context) error) *Lazy {
	return &Lazy{
		name:        name,
		initializer: initializer,
		log:         logger.Nop(),
	}
}

// WithHealthCheck sets a custom health check function.
func (l *Lazy) WithHealthCheck(fn func(context.Context) error) *Lazy {
	l.healthCheck = fn
	return l
}

// WithCloser sets a custom close function.
func (l *Lazy) WithCloser(fn func() error) *Lazy {
	l.closer = fn
	return l
}

// WithLogger sets the logger.
func (l *Lazy) WithLogger(log *logger.Logger) *Lazy {
	l.log = log.WithComponent(l.name)
	return l
}

// Name returns the component name.
func (l *Lazy) Name() string { return l.name }

// Initialize runs the initializer once. A failed attempt is retried on the
// next call.
func (l *Lazy) Initialize(ctx context.Context) error {
	l.mu.RLock()
	if l.initialized && l.lastError == nil {
		l.mu.RUnlock()
		return nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.initialized && l.lastError == nil {
		return nil
	}
	if l.initializer == nil {
		return fmt.Errorf("no initializer for component: %s", l.name)
	}

	if err := l.initializer(ctx); err != nil {
		l.lastError = err
		return fmt.Errorf("initialize %s: %w", l.name, err)
	}

	l.initialized = true
	l.lastError = nil
	l.log.Debug("lazy component initialized", logger.Fields(logger.FieldComponent, l.name))
	return nil
}

// IsInitialized reports whether initialization has succeeded.
func (l *Lazy) IsInitialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.initialized && l.lastError == nil
}

// Start satisfies Component by initializing eagerly.
func (l *Lazy) Start(ctx context.Context) error { return l.Initialize(ctx) }

// Stop closes the underlying resource and marks the component
// uninitialized.
func (l *Lazy) Stop(context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil && l.initialized {
		err := l.closer()
		l.initialized = false
		return err
	}
	l.initialized = false
	return nil
}

// Health reports healthy once initialized, running the custom check when
// one is set.
func (l *Lazy) Health(ctx context.Context) Health {
	if !l.IsInitialized() {
		return Health{Name: l.name, Status: StatusUnhealthy, Message: "not initialized"}
	}
	if l.healthCheck != nil {
		if err := l.healthCheck(ctx); err != nil {
			return Health{Name: l.name, Status: StatusDegraded, Message: err.Error()}
		}
	}
	return Health{Name: l.name, Status: StatusHealthy}
}
