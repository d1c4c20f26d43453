// Package persona implements the per-tick agent state engine: physiological
// needs and moodlets, schedule enforcement, interaction preference scoring,
// and the diary novelty gate.
package persona

import "fmt"

// Life-stage tags used to select decay modifiers.
const (
	StageInfant  = "infant"
	StageToddler = "toddler"
	StageChild   = "child"
	StageTeen    = "teen"
	StageAdult   = "adult"
	StageElder   = "elder"
)

// Traits holds the Likert-scale (1..7) personality axes the preference
// model consumes. Read-only during simulation.
type Traits struct {
	Extraversion  float64 `json:"extraversion" yaml:"extraversion"`
	Agreeableness float64 `json:"agreeableness" yaml:"agreeableness"`
	Neuroticism   float64 `json:"neuroticism" yaml:"neuroticism"`
}

// Persona is one simulated agent. Each persona's state is owned exclusively
// by its own update call; nothing here is shared across agents.
type Persona struct {
	Name           string        `json:"name"`
	Gender         string        `json:"gender"`
	LifeStage      string        `json:"life_stage"`
	Place          string        `json:"place"`
	Attractiveness float64       `json:"attractiveness"`
	Traits         Traits        `json:"traits"`
	Calendar       []Appointment `json:"calendar"`

	// Physio may be nil for personas with no physiological model attached;
	// every needs/mood operation is then a no-op.
	Physio *Physiology `json:"physio,omitempty"`

	Diary *DiaryFilter `json:"-"`
}

// Seed is the construction-time description of a persona.
type Seed struct {
	Name           string
	Gender         string
	LifeStage      string
	Place          string
	Attractiveness float64
	Traits         Traits
	Schedule       []Appointment
}

// New validates required fields and builds a live persona. A missing name,
// schedule or starting place is the one hard failure in this package; it is
// reported at construction, never during a tick.
func New(seed Seed) (*Persona, error) {
	if seed.Name == "" {
		return nil, fmt.Errorf("persona: name is required")
	}
	if len(seed.Schedule) == 0 {
		return nil, fmt.Errorf("persona %q: schedule is required", seed.Name)
	}
	if seed.Place == "" {
		return nil, fmt.Errorf("persona %q: starting place is required", seed.Name)
	}

	stage := seed.LifeStage
	if stage == "" {
		stage = StageAdult
	}
	return &Persona{
		Name:           seed.Name,
		Gender:         seed.Gender,
		LifeStage:      stage,
		Place:          seed.Place,
		Attractiveness: seed.Attractiveness,
		Traits:         seed.Traits,
		Calendar:       seed.Schedule,
		Physio:         NewPhysiology(),
	}, nil
}

// UpdateNeedsAndMood runs one tick of the needs and mood state machine.
// No-op when the persona has no physiology attached.
func (p *Persona) UpdateNeedsAndMood(rates DecayRates) {
	p.Physio.Update(p.LifeStage, rates)
}

// SetMood overwrites the mood label. Any string is accepted.
func (p *Persona) SetMood(mood string) {
	if p.Physio == nil {
		return
	}
	p.Physio.Mood = mood
}

// SetEmotionalState overwrites the emotional-state label. Any string is accepted.
func (p *Persona) SetEmotionalState(state string) {
	if p.Physio == nil {
		return
	}
	p.Physio.EmotionalState = state
}
