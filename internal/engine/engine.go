// Package engine provides the tick-based simulation loop and the per-tick
// persona orchestration built on top of it.
package engine

import (
	"log/slog"
	"time"

	"github.com/Rotty13/llm-sim-sub001/internal/clock"
)

// Engine drives the simulation forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval (default 1 second)
	Running  bool

	// TicksPerDay sets the OnDay cadence.
	TicksPerDay int

	// Callbacks for each tick layer, populated during setup.
	OnTick func(tick uint64) // every tick
	OnDay  func(tick uint64) // every TicksPerDay ticks
}

// NewEngine creates a simulation engine with default settings.
func NewEngine(ticksPerDay int) *Engine {
	if ticksPerDay <= 0 {
		ticksPerDay = clock.DefaultTicksPerDay
	}
	return &Engine{
		Speed:       1.0,
		Interval:    time.Second,
		TicksPerDay: ticksPerDay,
	}
}

// Run starts the simulation loop. Blocks until Stop() is called.
func (e *Engine) Run() {
	e.Running = true
	slog.Info("simulation engine started", "tick", e.Tick, "speed", e.Speed)

	for e.Running {
		if e.Speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation engine stopped", "tick", e.Tick)
}

// Stop halts the simulation loop.
func (e *Engine) Stop() {
	e.Running = false
}

// step advances the simulation by one tick.
func (e *Engine) step() {
	e.Tick++

	// Every tick: persona state machines.
	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	// Every sim-day: report, trim, save.
	if e.Tick%uint64(e.TicksPerDay) == 0 && e.OnDay != nil {
		e.OnDay(e.Tick)
	}
}
