package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/LukeFost/defivalley-sub000/internal/domain/port/core"
)

// FakeClock is a manually driven TimeProvider. Sleep advances the clock
// instead of blocking, so retry backoffs and timers run instantly while the
// elapsed fake time stays observable.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock pinned to start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake instant
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set pins the clock to a new instant
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Since reports the fake time elapsed since t
func (c *FakeClock) Since(t time.Time) core.Duration {
	return core.Duration(c.Now().Sub(t))
}

// Until reports the fake time remaining until t
func (c *FakeClock) Until(t time.Time) core.Duration {
	return core.Duration(t.Sub(c.Now()))
}

// Sleep advances the clock by d and returns immediately
func (c *FakeClock) Sleep(d core.Duration) {
	if d <= 0 {
		return
	}
	c.Advance(d.Std())
}

// WithTimeout derives a real deadline context; tests that must hit the
// timeout path use fakes that fail directly instead of waiting it out
func (c *FakeClock) WithTimeout(ctx context.Context, timeout core.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout.Std())
}

// ParseDuration delegates to the standard parser
func (c *FakeClock) ParseDuration(s string) (core.Duration, error) {
	d, err := time.ParseDuration(s)
	return core.Duration(d), err
}
