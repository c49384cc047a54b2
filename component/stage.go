package component

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/flowforge/flowkit/stage"
)

// StageComponent adapts a processing stage to the Component lifecycle.
// Start is cheap (stages hold no resources of their own); Stop waits for
// the stage's live subscriptions to drain.
type StageComponent struct {
	stage   *stage.Stage
	running atomic.Bool
}

// ForStage wraps a stage as a lifecycle component.
func ForStage(s *stage.Stage) *StageComponent {
	return &StageComponent{stage: s}
}

// Stage returns the wrapped stage.
func (c *StageComponent) Stage() *stage.Stage { return c.stage }

func (c *StageComponent) Name() string { return c.stage.Name() }

func (c *StageComponent) Start(context.Context) error {
	c.running.Store(true)
	return nil
}

// Stop waits for live subscriptions to terminate, bounded by ctx.
func (c *StageComponent) Stop(ctx context.Context) error {
	c.running.Store(false)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for c.stage.ActiveSubscriptions() > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("stage %s: %d subscriptions still live: %w",
				c.stage.Name(), c.stage.ActiveSubscriptions(), ctx.Err())
		case <-ticker.C:
		}
	}
	return nil
}

func (c *StageComponent) Health(context.Context) Health {
	h := Health{
		Name:    c.stage.Name(),
		Status:  StatusHealthy,
		Message: fmt.Sprintf("state=%s subscriptions=%d", c.stage.State(), c.stage.ActiveSubscriptions()),
	}
	if !c.running.Load() {
		h.Status = StatusUnhealthy
		h.Message = "not started"
	}
	return h
}
