// Package propagate bridges the terminal signal of an outer sequence into
// an independently constructed inner sequence.
//
// The two sequences are built separately (the inner one through a deferred
// sink), so nothing orders their terminal signals naturally: forwarding the
// outer terminal too early loses buffered output, and waiting for an inner
// signal that will never fire deadlocks. Completion coordinates the two
// with an explicit per-subscription state machine:
//
//	Idle -> ElementInFlight -> AwaitingTerminal -> Terminated
//
// driven by element-start, element-done, outer-complete, outer-error and
// timeout-fired events. Terminated is absorbing. An outer error waits for
// in-flight elements to drain, bounded by a timeout; outer completion waits
// unconditionally and is forwarded strictly last.
package propagate
