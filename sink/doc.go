// Package sink provides a deferred publish endpoint: a handle that accepts
// emissions immediately, before any subscriber exists, buffering them in
// order until the real subscription binds.
//
// A Deferred value lives for exactly one subscription epoch. It starts
// unbound, buffers every Next/Error/Complete call FIFO, and flips to bound
// exactly once when its Publisher is subscribed (or Bind is called
// directly). Buffered calls replay in original order before any later call
// is forwarded; the flip can never lose or duplicate an emission.
package sink
