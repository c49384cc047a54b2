// Package stage provides the reusable pipeline-stage unit of an
// integration flow: for every inbound event it resolves parameters,
// executes an action, and emits exactly one result or error event.
//
// A Stage is shared, immutable configuration. Every call to Apply's
// returned publisher builds a fresh deferred sink and completion
// propagator, so independent callers can subscribe (and re-subscribe)
// concurrently with no state bleed between subscriptions.
package stage
