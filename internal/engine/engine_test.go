package engine

import "testing"

func TestStepFiresTickEveryStepAndDayOnRollover(t *testing.T) {
	e := NewEngine(4)
	var ticks, days []uint64
	e.OnTick = func(tick uint64) { ticks = append(ticks, tick) }
	e.OnDay = func(tick uint64) { days = append(days, tick) }

	for i := 0; i < 9; i++ {
		e.step()
	}

	if len(ticks) != 9 || ticks[0] != 1 || ticks[8] != 9 {
		t.Errorf("ticks = %v, want 1..9", ticks)
	}
	if len(days) != 2 || days[0] != 4 || days[1] != 8 {
		t.Errorf("day callbacks = %v, want [4 8]", days)
	}
}

func TestStepWithoutCallbacks(t *testing.T) {
	e := NewEngine(0)
	if e.TicksPerDay != 288 {
		t.Errorf("TicksPerDay default = %d, want 288", e.TicksPerDay)
	}
	e.step()
	e.step()
	if e.Tick != 2 {
		t.Errorf("Tick = %d, want 2", e.Tick)
	}
}
