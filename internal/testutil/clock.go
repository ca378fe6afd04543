package testutil

import (
	"sync"
	"time"
)

// FakeClock provides a controllable clock for tests. Each call to Now
// advances it by Step.
type FakeClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewFakeClock initializes a FakeClock at the provided start time.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time and applies Step.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.Step)
	return now
}

// Advance moves the fake time forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
