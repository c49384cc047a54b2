package testutil

import (
	"testing"
	"time"
)

// DefaultProbeTimeout is how long Eventually waits before failing the test.
const DefaultProbeTimeout = 5 * time.Second

const probeInterval = 10 * time.Millisecond

// Eventually polls cond until it returns true or the timeout elapses,
// failing the test on expiry. Use for assertions on work that finishes on
// another goroutine.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(probeInterval)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// Probe is Eventually with the default timeout.
func Probe(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	Eventually(t, DefaultProbeTimeout, cond, msg)
}
