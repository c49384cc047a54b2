// Package event defines the unit of work that traverses a pipeline.
//
// An Event is immutable once emitted: derivations (results, failures)
// produce new Event values that keep the original correlation identity.
package event
