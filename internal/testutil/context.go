package testutil

import (
	"context"
	"testing"
	"time"
)

// DefaultTimeout bounds DB and server tests.
const DefaultTimeout = 10 * time.Second

// Context returns a context cancelled when the test ends or timeout
// elapses, whichever is first. The test deadline wins when it is closer.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if d, ok := t.(interface{ Deadline() (time.Time, bool) }); ok {
		if deadline, ok := d.Deadline(); ok {
			if remaining := time.Until(deadline) - time.Second; remaining > 0 && remaining < timeout {
				timeout = remaining
			}
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
