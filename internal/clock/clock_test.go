package clock

import "testing"

func TestDerivedFieldsStayInRange(t *testing.T) {
	c := New()
	for tick := 0; tick < c.TicksPerDay*3; tick++ {
		c.SetTick(tick)
		if got := c.TickOfDay(); got < 0 || got >= c.TicksPerDay {
			t.Fatalf("tick %d: tick_of_day = %d, want [0,%d)", tick, got, c.TicksPerDay)
		}
		if got := c.Hour(); got < 0 || got >= 24 {
			t.Fatalf("tick %d: hour = %d, want [0,24)", tick, got)
		}
		if got := c.Minutes(); got < 0 || got >= 60 {
			t.Fatalf("tick %d: minutes = %d, want [0,60)", tick, got)
		}
	}
}

func TestDayRollover(t *testing.T) {
	c := &Clock{TicksPerDay: 144, MinutesPerTick: 10}

	c.SetTick(143)
	if c.Day() != 0 || c.Hour() != 23 || c.Minutes() != 50 {
		t.Errorf("tick 143: got day %d %02d:%02d, want day 0 23:50", c.Day(), c.Hour(), c.Minutes())
	}

	c.SetTick(144)
	if c.Day() != 1 || c.Hour() != 0 || c.Minutes() != 0 {
		t.Errorf("tick 144: got day %d %02d:%02d, want day 1 00:00", c.Day(), c.Hour(), c.Minutes())
	}
}

func TestAdvance(t *testing.T) {
	c := New()
	c.Advance(10)
	if c.Tick != 10 {
		t.Fatalf("after Advance(10): tick = %d, want 10", c.Tick)
	}
	c.Advance(-3)
	if c.Tick != 7 {
		t.Fatalf("after Advance(-3): tick = %d, want 7", c.Tick)
	}
}

func TestTimeOfDay(t *testing.T) {
	cases := []struct {
		hour string
		tick int
		want string
	}{
		{"04:00", 48, Night},
		{"05:00", 60, Morning},
		{"11:55", 143, Morning},
		{"12:00", 144, Afternoon},
		{"16:55", 203, Afternoon},
		{"17:00", 204, Evening},
		{"20:55", 251, Evening},
		{"21:00", 252, Night},
		{"00:00", 0, Night},
	}
	for _, tc := range cases {
		c := New()
		c.SetTick(tc.tick)
		if got := c.TimeOfDay(); got != tc.want {
			t.Errorf("%s (tick %d): time_of_day = %q, want %q", tc.hour, tc.tick, got, tc.want)
		}
	}
}

func TestMinuteOfDay(t *testing.T) {
	c := New()
	c.SetTick(9)
	if got := c.MinuteOfDay(); got != 45 {
		t.Errorf("tick 9 at 5 min/tick: minute_of_day = %d, want 45", got)
	}
	// Wraps with the day.
	c.SetTick(c.TicksPerDay + 9)
	if got := c.MinuteOfDay(); got != 45 {
		t.Errorf("next day tick 9: minute_of_day = %d, want 45", got)
	}
}
