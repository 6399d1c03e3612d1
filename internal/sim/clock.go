package sim

import "time"

// Clock paces a fixed-timestep world against wall time. Elapsed time is
// accumulated and converted into whole steps; the remainder carries over.
type Clock struct {
	dt       time.Duration
	maxSteps int
	acc      time.Duration
	paused   bool
}

// NewClock creates a clock for steps of dt seconds. maxSteps caps the steps
// returned by one Advance; excess time is dropped. Zero means no cap.
func NewClock(dt float64, maxSteps int) *Clock {
	return &Clock{
		dt:       time.Duration(dt * float64(time.Second)),
		maxSteps: maxSteps,
	}
}

// Advance adds elapsed wall time and returns how many steps are due.
func (c *Clock) Advance(elapsed time.Duration) int {
	if c.paused || c.dt <= 0 {
		return 0
	}
	c.acc += elapsed
	n := int(c.acc / c.dt)
	c.acc -= time.Duration(n) * c.dt
	if c.maxSteps > 0 && n > c.maxSteps {
		n = c.maxSteps
		c.acc = 0
	}
	return n
}

// Alpha is the fraction of a step left in the accumulator.
func (c *Clock) Alpha() float64 {
	if c.dt <= 0 {
		return 0
	}
	return float64(c.acc) / float64(c.dt)
}

func (c *Clock) Paused() bool { return c.paused }

func (c *Clock) Pause() { c.paused = true }

// Resume restarts pacing without replaying the time spent paused.
func (c *Clock) Resume() {
	c.paused = false
	c.acc = 0
}

func (c *Clock) Toggle() {
	if c.paused {
		c.Resume()
	} else {
		c.Pause()
	}
}
