// Package config loads, schema-checks and validates the simulation
// configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Rotty13/llm-sim-sub001/internal/clock"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
	"github.com/Rotty13/llm-sim-sub001/internal/world"
	"github.com/Rotty13/llm-sim-sub001/schemas"
)

// Config is the full simulation configuration.
type Config struct {
	Clock       ClockConfig       `yaml:"clock"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Diary       DiaryConfig       `yaml:"diary"`
	Interaction InteractionConfig `yaml:"interaction"`
	Needs       NeedsConfig       `yaml:"needs"`
	LLM         LLMConfig         `yaml:"llm"`
	API         APIConfig         `yaml:"api"`
	Bridge      BridgeConfig      `yaml:"bridge"`
	Persistence PersistenceConfig `yaml:"persistence"`
	World       WorldConfig       `yaml:"world"`
	Personas    []PersonaConfig   `yaml:"personas"`
}

type ClockConfig struct {
	TicksPerDay    int `yaml:"ticks_per_day"`
	MinutesPerTick int `yaml:"minutes_per_tick"`
}

type ScheduleConfig struct {
	LookaheadMinutes int `yaml:"lookahead_minutes"`
}

type DiaryConfig struct {
	MinGapTicks     int     `yaml:"min_gap_ticks"`
	SimilarityLimit float64 `yaml:"similarity_limit"`
}

type InteractionConfig struct {
	// OfferThreshold is the minimum preference score (1..7 scale) at which
	// a persona offers to interact with a co-located partner.
	OfferThreshold float64 `yaml:"offer_threshold"`
}

type NeedsConfig struct {
	Decay map[string]float32 `yaml:"decay"`
}

type LLMConfig struct {
	Model             string  `yaml:"model"`
	MaxTokens         int     `yaml:"max_tokens"`
	Temperature       float64 `yaml:"temperature"`
	TopP              float64 `yaml:"top_p"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
	DecideEveryTicks  int     `yaml:"decide_every_ticks"`
}

type APIConfig struct {
	Addr       string `yaml:"addr"`
	AdminToken string `yaml:"admin_token"`
}

type BridgeConfig struct {
	Addr           string `yaml:"addr"`
	ValidateFrames bool   `yaml:"validate_frames"`
}

type PersistenceConfig struct {
	Path        string `yaml:"path"`
	SnapshotDir string `yaml:"snapshot_dir"`
}

type WorldConfig struct {
	Seed int64 `yaml:"seed"`
	// Location selects the city for the optional live weather override.
	Location string        `yaml:"location"`
	Places   []world.Place `yaml:"places"`
}

type PersonaConfig struct {
	Name           string                `yaml:"name"`
	Gender         string                `yaml:"gender"`
	LifeStage      string                `yaml:"life_stage"`
	Place          string                `yaml:"place"`
	Attractiveness float64               `yaml:"attractiveness"`
	Traits         persona.Traits        `yaml:"traits"`
	Schedule       []persona.Appointment `yaml:"schedule"`
}

func defaults() Config {
	return Config{
		Clock: ClockConfig{
			TicksPerDay:    clock.DefaultTicksPerDay,
			MinutesPerTick: clock.DefaultMinutesPerTick,
		},
		Schedule:    ScheduleConfig{LookaheadMinutes: persona.DefaultLookaheadMinutes},
		Diary:       DiaryConfig{MinGapTicks: persona.DefaultMinGapTicks, SimilarityLimit: persona.DefaultSimilarityLimit},
		Interaction: InteractionConfig{OfferThreshold: 4.5},
		LLM: LLMConfig{
			MaxTokens:         200,
			Temperature:       0.7,
			TopP:              0.9,
			RequestsPerMinute: 20,
			DecideEveryTicks:  12,
		},
		API:         APIConfig{Addr: ":8080"},
		Bridge:      BridgeConfig{Addr: ":8081"},
		Persistence: PersistenceConfig{Path: "data/personasim.db", SnapshotDir: "data/snapshots"},
		World:       WorldConfig{Seed: 1},
	}
}

// Load reads a YAML configuration file, checks it against the embedded
// JSON Schema and overlays it on the built-in defaults.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(raw)
}

// Parse is Load for in-memory documents.
func Parse(raw []byte) (Config, error) {
	if err := checkSchema(raw); err != nil {
		return Config{}, err
	}
	cfg := defaults()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// checkSchema validates the raw YAML document against config.schema.json.
// The validator expects JSON-shaped values, so the document is round-tripped
// through encoding/json first.
func checkSchema(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	var jdoc any
	if err := json.Unmarshal(b, &jdoc); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	s, err := schemas.Compile("config.schema.json", schemas.Config)
	if err != nil {
		return err
	}
	if err := s.Validate(jdoc); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	if c.Clock.TicksPerDay <= 0 {
		return fmt.Errorf("clock.ticks_per_day must be > 0")
	}
	if c.Clock.MinutesPerTick <= 0 {
		return fmt.Errorf("clock.minutes_per_tick must be > 0")
	}
	if c.Schedule.LookaheadMinutes < 0 {
		return fmt.Errorf("schedule.lookahead_minutes must be >= 0")
	}
	if c.Diary.SimilarityLimit < 0 || c.Diary.SimilarityLimit > 1 {
		return fmt.Errorf("diary.similarity_limit must be in [0,1]")
	}
	if c.LLM.DecideEveryTicks <= 0 {
		return fmt.Errorf("llm.decide_every_ticks must be > 0")
	}
	if len(c.World.Places) == 0 {
		return fmt.Errorf("world.places must not be empty")
	}
	places := map[string]bool{}
	for _, pl := range c.World.Places {
		name := strings.TrimSpace(pl.Name)
		if name == "" {
			return fmt.Errorf("place name must not be empty")
		}
		if places[name] {
			return fmt.Errorf("duplicate place name: %s", name)
		}
		places[name] = true
	}
	if len(c.Personas) == 0 {
		return fmt.Errorf("personas must not be empty")
	}
	seen := map[string]bool{}
	for _, pc := range c.Personas {
		if seen[pc.Name] {
			return fmt.Errorf("duplicate persona name: %s", pc.Name)
		}
		seen[pc.Name] = true
		if !places[pc.Place] {
			return fmt.Errorf("persona %s: place %q not found in world.places", pc.Name, pc.Place)
		}
		for _, ap := range pc.Schedule {
			if !places[ap.Place] {
				return fmt.Errorf("persona %s: schedule place %q not found in world.places", pc.Name, ap.Place)
			}
		}
	}
	return nil
}

// Graph builds the place graph described by world.places.
func (c Config) Graph() *world.Graph {
	return world.NewGraph(c.World.Places)
}

// DecayRates returns the configured per-need decay overrides, or nil when
// the file sets none and the built-in rates apply.
func (c Config) DecayRates() persona.DecayRates {
	if len(c.Needs.Decay) == 0 {
		return nil
	}
	return persona.DecayRates(c.Needs.Decay)
}

// BuildPersonas constructs the simulation roster. Missing required fields
// surface here, at construction, never during a tick.
func (c Config) BuildPersonas() ([]*persona.Persona, error) {
	out := make([]*persona.Persona, 0, len(c.Personas))
	for _, pc := range c.Personas {
		p, err := persona.New(persona.Seed{
			Name:           pc.Name,
			Gender:         pc.Gender,
			LifeStage:      pc.LifeStage,
			Place:          pc.Place,
			Attractiveness: pc.Attractiveness,
			Traits:         pc.Traits,
			Schedule:       pc.Schedule,
		})
		if err != nil {
			return nil, fmt.Errorf("roster: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}
