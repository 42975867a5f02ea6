package display

import (
	"context"
	"time"
)

// ClockLayout renders time of day as HH:MM:SS on a 24-hour clock.
const ClockLayout = "15:04:05"

// Clock ticks once per second, independent of the poll cadence.
type Clock struct {
	now      func() time.Time
	interval time.Duration
	location *time.Location
}

// NewClock returns a one-second clock in the local zone.
func NewClock() *Clock {
	return &Clock{now: time.Now, interval: time.Second, location: time.Local}
}

// Format renders t in the clock's zone.
func (c *Clock) Format(t time.Time) string {
	return t.In(c.location).Format(ClockLayout)
}

// Now returns the current formatted time.
func (c *Clock) Now() string {
	return c.Format(c.now())
}

// Run calls fn with the formatted time immediately and then every tick until
// ctx is cancelled.
func (c *Clock) Run(ctx context.Context, fn func(string)) {
	fn(c.Now())
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(c.Now())
		}
	}
}
