package sink

import (
	"runtime/debug"
	"sync"

	"github.com/flowforge/flowkit/logger"
)

// WithDiagnostics enables drop diagnostics: the sink captures the call site
// of the terminal signal and of the bind, and warns with both when a later
// emission arrives. Purely observational; disabled by default because
// capturing stacks on every terminal is not free.
func WithDiagnostics(log *logger.Logger) Option {
	return func(o *options) {
		o.diag = &diagnostics{log: log.WithComponent("sink")}
	}
}

// diagnostics records call-site stacks around the terminal transition.
// A nil *diagnostics is valid and does nothing, keeping the option entirely
// off the hot path.
type diagnostics struct {
	log *logger.Logger

	mu            sync.Mutex
	terminalStack string
	bindStack     string
}

func (g *diagnostics) recordBind() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.bindStack = string(debug.Stack())
	g.mu.Unlock()
}

func (g *diagnostics) recordTerminal() {
	if g == nil {
		return
	}
	g.mu.Lock()
	g.terminalStack = string(debug.Stack())
	g.mu.Unlock()
}

func (g *diagnostics) droppedEmit(v any) {
	if g == nil {
		return
	}
	g.mu.Lock()
	terminal, bind := g.terminalStack, g.bindStack
	g.mu.Unlock()
	g.log.Warn("element dropped after terminal signal", logger.Fields(
		"element", v,
		"terminal_stack", terminal,
		"bind_stack", bind,
		"emit_stack", string(debug.Stack()),
	))
}

func (g *diagnostics) bindViolation() {
	if g == nil {
		return
	}
	g.mu.Lock()
	bind := g.bindStack
	g.mu.Unlock()
	g.log.Warn("deferred sink bound twice", logger.Fields(
		"first_bind_stack", bind,
		"second_bind_stack", string(debug.Stack()),
	))
}
