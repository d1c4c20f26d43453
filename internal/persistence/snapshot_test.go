package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Rotty13/llm-sim-sub001/internal/config"
	"github.com/Rotty13/llm-sim-sub001/internal/engine"
	"github.com/Rotty13/llm-sim-sub001/internal/events"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
)

func TestSnapshotRoundTrip(t *testing.T) {
	snap := SnapshotV1{
		Header:         Header{Version: 1, Tick: 576, Day: 2},
		Seed:           7,
		TicksPerDay:    288,
		MinutesPerTick: 5,
		Personas: []PersonaV1{
			{
				Name:           "Mara",
				Gender:         "female",
				LifeStage:      "adult",
				Place:          "Cafe",
				Attractiveness: 4,
				Traits:         persona.Traits{Extraversion: 5, Agreeableness: 4, Neuroticism: 2},
				Schedule:       []persona.Appointment{{StartMinute: 540, Place: "Office", Label: "shift"}},
				Needs:          persona.Needs{Hunger: 0.8, Energy: 0.3, Social: 0.5, Fun: 0.5, Hygiene: 0.6, Comfort: 0.6, Bladder: 0.7, Stress: 0.4},
				Moodlets:       map[string]int{"starving": 3},
				Mood:           "weary",
			},
		},
		Familiarity: map[string]float64{"Bo|Mara": 1.75},
	}

	path := SnapshotPath(t.TempDir(), 576)
	if base := filepath.Base(path); base != "village-0000000576.zst" {
		t.Fatalf("snapshot name = %q", base)
	}

	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Fatalf("stat: %v, size %v", err, fi)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Header != snap.Header {
		t.Errorf("header = %+v, want %+v", got.Header, snap.Header)
	}
	if got.Seed != 7 || got.TicksPerDay != 288 || got.MinutesPerTick != 5 {
		t.Errorf("layout mismatch: %+v", got)
	}
	if got.Familiarity["Bo|Mara"] != 1.75 {
		t.Errorf("familiarity = %v", got.Familiarity)
	}

	roster := got.Roster()
	if len(roster) != 1 {
		t.Fatalf("roster size = %d", len(roster))
	}
	p := roster[0]
	if p.Name != "Mara" || p.Place != "Cafe" || len(p.Calendar) != 1 {
		t.Errorf("rebuilt persona mismatch: %+v", p)
	}
	if p.Physio.Needs.Hunger != 0.8 || p.Physio.Moodlets["starving"] != 3 || p.Physio.Mood != "weary" {
		t.Errorf("rebuilt physio mismatch: %+v", p.Physio)
	}
}

const captureConfig = `
world:
  seed: 7
  places:
    - name: Home
      neighbors: [Square]
    - name: Square
personas:
  - name: Mara
    place: Square
    schedule:
      - start_minute: 540
        place: Home
  - name: Bo
    place: Home
    schedule:
      - start_minute: 600
        place: Square
`

func TestCaptureReadsLiveSimulation(t *testing.T) {
	cfg, err := config.Parse([]byte(captureConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	roster, err := cfg.BuildPersonas()
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	sim := engine.New(cfg, roster, events.NewLog(), nil, nil)
	sim.LastTick = 300
	sim.Clock.SetTick(300)
	sim.Familiarity.Bump("Mara", "Bo")

	snap := Capture(sim, cfg.World.Seed)

	if snap.Header.Tick != 300 || snap.Header.Day != 1 {
		t.Errorf("header = %+v, want tick 300 day 1", snap.Header)
	}
	if snap.Seed != 7 || snap.TicksPerDay != 288 || snap.MinutesPerTick != 5 {
		t.Errorf("layout = %+v", snap)
	}
	if len(snap.Personas) != 2 {
		t.Fatalf("personas = %d, want 2", len(snap.Personas))
	}
	if snap.Personas[0].Name != "Mara" || snap.Personas[0].Place != "Square" {
		t.Errorf("first persona = %+v", snap.Personas[0])
	}
	if snap.Familiarity["Bo|Mara"] != 1.25 {
		t.Errorf("familiarity = %v", snap.Familiarity)
	}
}
