package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Rotty13/llm-sim-sub001/internal/config"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
	"github.com/Rotty13/llm-sim-sub001/internal/world"
)

const sampleYAML = `
clock:
  ticks_per_day: 144
  minutes_per_tick: 10
diary:
  min_gap_ticks: 4
  similarity_limit: 0.9
needs:
  decay:
    hunger: 0.01
world:
  seed: 11
  places:
    - name: Home
      kind: house
      neighbors: [Square]
    - name: Square
      kind: plaza
personas:
  - name: Mara
    gender: female
    place: Home
    traits:
      extraversion: 5
      agreeableness: 4
      neuroticism: 3
    schedule:
      - start_minute: 540
        place: Square
        label: market
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
world:
  places:
    - name: Home
personas:
  - name: Bo
    place: Home
    schedule:
      - start_minute: 0
        place: Home
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Clock.TicksPerDay != 288 || cfg.Clock.MinutesPerTick != 5 {
		t.Errorf("clock defaults = %d/%d, want 288/5", cfg.Clock.TicksPerDay, cfg.Clock.MinutesPerTick)
	}
	if cfg.Schedule.LookaheadMinutes != 15 {
		t.Errorf("lookahead default = %d, want 15", cfg.Schedule.LookaheadMinutes)
	}
	if cfg.Diary.MinGapTicks != 6 || cfg.Diary.SimilarityLimit != 0.93 {
		t.Errorf("diary defaults = %d/%v, want 6/0.93", cfg.Diary.MinGapTicks, cfg.Diary.SimilarityLimit)
	}
	if cfg.Interaction.OfferThreshold != 4.5 {
		t.Errorf("offer threshold default = %v, want 4.5", cfg.Interaction.OfferThreshold)
	}
	if cfg.LLM.DecideEveryTicks != 12 {
		t.Errorf("decide_every_ticks default = %d, want 12", cfg.LLM.DecideEveryTicks)
	}
	if cfg.DecayRates() != nil {
		t.Errorf("DecayRates() = %v, want nil when unset", cfg.DecayRates())
	}
}

func TestParseOverlaysOverrides(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Clock.TicksPerDay != 144 || cfg.Clock.MinutesPerTick != 10 {
		t.Errorf("clock = %d/%d, want 144/10", cfg.Clock.TicksPerDay, cfg.Clock.MinutesPerTick)
	}
	if cfg.Diary.MinGapTicks != 4 || cfg.Diary.SimilarityLimit != 0.9 {
		t.Errorf("diary = %d/%v, want 4/0.9", cfg.Diary.MinGapTicks, cfg.Diary.SimilarityLimit)
	}
	rates := cfg.DecayRates()
	if rates == nil || rates["hunger"] != 0.01 {
		t.Errorf("decay rates = %v, want hunger 0.01", rates)
	}
	// Defaults survive in sections the file does not touch.
	if cfg.API.Addr != ":8080" {
		t.Errorf("api addr = %q, want :8080", cfg.API.Addr)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	bad := []struct {
		name string
		doc  string
	}{
		{"no personas", `
world:
  places:
    - name: Home
personas: []
`},
		{"persona without schedule", `
world:
  places:
    - name: Home
personas:
  - name: Bo
    place: Home
`},
		{"unknown start place", `
world:
  places:
    - name: Home
personas:
  - name: Bo
    place: Mars
    schedule:
      - start_minute: 0
        place: Home
`},
		{"unknown schedule place", `
world:
  places:
    - name: Home
personas:
  - name: Bo
    place: Home
    schedule:
      - start_minute: 0
        place: Mars
`},
		{"duplicate persona", `
world:
  places:
    - name: Home
personas:
  - name: Bo
    place: Home
    schedule:
      - start_minute: 0
        place: Home
  - name: Bo
    place: Home
    schedule:
      - start_minute: 0
        place: Home
`},
	}
	for _, tc := range bad {
		if _, err := config.Parse([]byte(tc.doc)); err == nil {
			t.Errorf("%s: expected error, got none", tc.name)
		}
	}
}

func TestGraphMirrorsNeighbors(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g := cfg.Graph()
	if !g.Adjacent("Home", "Square") || !g.Adjacent("Square", "Home") {
		t.Error("Home and Square should be mutually adjacent")
	}
}

func TestBuildPersonas(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	roster, err := cfg.BuildPersonas()
	if err != nil {
		t.Fatalf("build personas: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("roster size = %d, want 1", len(roster))
	}
	p := roster[0]
	if p.Name != "Mara" || p.Place != "Home" || p.LifeStage != persona.StageAdult {
		t.Errorf("unexpected persona: %+v", p)
	}
	if len(p.Calendar) != 1 || p.Calendar[0].StartMinute != 540 {
		t.Errorf("calendar = %+v, want one 540-minute appointment", p.Calendar)
	}
	if p.Physio == nil {
		t.Error("persona should start with physiology attached")
	}
}

func TestBuildPersonasSurfacesConstructionErrors(t *testing.T) {
	cfg := config.Config{
		World: config.WorldConfig{Places: []world.Place{{Name: "Home"}}},
		Personas: []config.PersonaConfig{{
			Place:    "Home",
			Schedule: []persona.Appointment{{StartMinute: 0, Place: "Home"}},
		}},
	}
	if _, err := cfg.BuildPersonas(); err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("expected name construction error, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "village.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Personas) != 1 {
		t.Errorf("personas = %d, want 1", len(cfg.Personas))
	}
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
