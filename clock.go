package backdrop

import "time"

// Clock reports elapsed seconds since it started. Elapsed must never decrease.
type Clock interface {
	Elapsed() float64
}

// wallClock measures monotonic wall time from its creation.
type wallClock struct {
	start time.Time
}

// NewClock returns a Clock backed by the monotonic system clock.
func NewClock() Clock {
	return &wallClock{start: time.Now()}
}

func (c *wallClock) Elapsed() float64 {
	return time.Since(c.start).Seconds()
}

// TickClock advances by a fixed Step every time Advance is called. It drives
// deterministic runs: scripted captures, the terminal preview at a fixed rate,
// and tests.
type TickClock struct {
	Step float64
	t    float64
}

// NewTickClock returns a TickClock advancing 1/fps seconds per Advance.
func NewTickClock(fps float64) *TickClock {
	if fps <= 0 {
		fps = 60
	}
	return &TickClock{Step: 1 / fps}
}

// Elapsed returns the accumulated time.
func (c *TickClock) Elapsed() float64 { return c.t }

// Advance moves the clock forward one step and returns the new time.
func (c *TickClock) Advance() float64 {
	c.t += c.Step
	return c.t
}

// Set jumps to t. Values earlier than the current time are ignored.
func (c *TickClock) Set(t float64) {
	if t > c.t {
		c.t = t
	}
}
