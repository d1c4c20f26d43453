// Package clock converts the simulation tick counter into calendar time.
package clock

import "fmt"

// Default day layout: 288 ticks of 5 sim-minutes each = one 24-hour day.
const (
	DefaultTicksPerDay    = 288
	DefaultMinutesPerTick = 5
)

// Day-phase labels returned by TimeOfDay.
const (
	Morning   = "morning"
	Afternoon = "afternoon"
	Evening   = "evening"
	Night     = "night"
)

// Clock tracks absolute sim time as a single tick counter.
// Every calendar value is derived from it; nothing else is stored.
type Clock struct {
	Tick           int
	TicksPerDay    int
	MinutesPerTick int
}

// New creates a clock at tick zero with the default day layout.
func New() *Clock {
	return &Clock{
		TicksPerDay:    DefaultTicksPerDay,
		MinutesPerTick: DefaultMinutesPerTick,
	}
}

// Advance moves the clock by n ticks. Negative n rewinds.
func (c *Clock) Advance(n int) {
	c.Tick += n
}

// SetTick jumps the clock to an absolute tick.
func (c *Clock) SetTick(t int) {
	c.Tick = t
}

// Day returns the zero-based day number.
func (c *Clock) Day() int {
	return c.Tick / c.TicksPerDay
}

// TickOfDay returns the tick position inside the current day.
func (c *Clock) TickOfDay() int {
	return c.Tick % c.TicksPerDay
}

// Hour returns the hour of day in [0,24).
func (c *Clock) Hour() int {
	return c.TickOfDay() * c.MinutesPerTick / 60
}

// Minutes returns the minute within the hour in [0,60).
func (c *Clock) Minutes() int {
	return c.TickOfDay() * c.MinutesPerTick % 60
}

// MinuteOfDay returns minutes since midnight. The schedule enforcer
// compares appointment start minutes against this value.
func (c *Clock) MinuteOfDay() int {
	return c.TickOfDay() * c.MinutesPerTick
}

// TimeOfDay buckets the current hour into a coarse day phase:
// morning [5,12), afternoon [12,17), evening [17,21), night otherwise.
func (c *Clock) TimeOfDay() string {
	h := c.Hour()
	switch {
	case h >= 5 && h < 12:
		return Morning
	case h >= 12 && h < 17:
		return Afternoon
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

// String returns a human-readable sim time, e.g. "Day 3, 07:35 (morning)".
func (c *Clock) String() string {
	return fmt.Sprintf("Day %d, %02d:%02d (%s)", c.Day(), c.Hour(), c.Minutes(), c.TimeOfDay())
}
