// Package component defines the core interfaces for lifecycle-managed
// parts of a flowkit pipeline.
//
// Components represent services that require startup, shutdown and health
// monitoring: stages, connectors, and the resources they depend on. They
// are registered with a Registry for deterministic lifecycle ordering.
package component
