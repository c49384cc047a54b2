// Package testutil provides helpers for testing asynchronous pipelines:
// a polling probe for eventually-true conditions and recording subscribers
// for stream assertions.
package testutil
