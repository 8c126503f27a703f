// Package clock provides the elapsed-time source for the shader's time uniform.
package clock

import "time"

// ResetAfter is the elapsed time after which the clock starts over, keeping the
// float time uniform small.
const ResetAfter = 6 * time.Hour

// TimeProvider is the source of wall-clock readings.
type TimeProvider interface {
	Now() time.Time
}

// SystemTime reads the monotonic system clock.
type SystemTime struct{}

func (SystemTime) Now() time.Time { return time.Now() }

// Clock measures time since its start and resets itself to zero instead of
// exceeding ResetAfter.
type Clock struct {
	provider TimeProvider
	start    time.Time
	resets   int
}

func New(provider TimeProvider) *Clock {
	if provider == nil {
		provider = SystemTime{}
	}
	return &Clock{provider: provider, start: provider.Now()}
}

// Elapsed returns the time since start, restarting the clock first when the
// reading would be above ResetAfter.
func (c *Clock) Elapsed() time.Duration {
	now := c.provider.Now()
	if now.Sub(c.start) > ResetAfter {
		c.start = now
		c.resets++
	}
	return now.Sub(c.start)
}

// Seconds is Elapsed as shader time.
func (c *Clock) Seconds() float32 {
	return float32(c.Elapsed().Seconds())
}

// Resets reports how many times the clock wrapped.
func (c *Clock) Resets() int { return c.resets }
