// Package streams provides minimal push-based asynchronous sequences:
// subscribe, emit, cancel. It is the substrate the sink, propagate and
// stage packages coordinate on top of.
//
// A Publisher is a factory: every call to Subscribe opens an independent
// subscription with its own emitter and cancellation state. Emissions on
// one subscription are serialized and preserve the producer's call order;
// nothing is promised across subscriptions.
//
// This is deliberately not a full reactive-streams implementation: there
// is no request-based backpressure and no scheduler. Producers emit from
// whatever goroutine they like; Emitter serializes delivery.
package streams
