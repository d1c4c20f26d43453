package persona

// Needs tracks the eight physiological axes, each in [0,1]. For most needs
// 1.0 means fully satisfied; hunger and stress run the other way, rising
// toward 1.0 as things get worse.
type Needs struct {
	Hunger  float32 `json:"hunger"`
	Energy  float32 `json:"energy"`
	Social  float32 `json:"social"`
	Fun     float32 `json:"fun"`
	Hygiene float32 `json:"hygiene"`
	Comfort float32 `json:"comfort"`
	Bladder float32 `json:"bladder"`
	Stress  float32 `json:"stress"`
}

// DefaultNeeds returns a comfortable starting state.
func DefaultNeeds() Needs {
	return Needs{
		Hunger:  0.2,
		Energy:  0.9,
		Social:  0.6,
		Fun:     0.6,
		Hygiene: 0.8,
		Comfort: 0.7,
		Bladder: 0.8,
		Stress:  0.2,
	}
}

// DecayRates maps a need name to its per-tick base rate. Missing entries
// fall back to the built-in defaults, so partial overrides work.
type DecayRates map[string]float32

// DefaultDecayRates returns the tuned base rates for a 5-minute tick.
func DefaultDecayRates() DecayRates {
	return DecayRates{
		"hunger":  0.004,
		"energy":  0.003,
		"social":  0.002,
		"fun":     0.0025,
		"hygiene": 0.0015,
		"comfort": 0.001,
		"bladder": 0.006,
		"stress":  0.001,
	}
}

// needAxis describes one need: where it lives, which direction is worse,
// and which life-stage modifier scales its rate.
type needAxis struct {
	name  string
	get   func(*Needs) *float32
	rises bool   // true: accumulates toward 1 (hunger, stress)
	scale string // life-stage modifier axis: "hunger", "energy", "stress" or ""
}

var needAxes = []needAxis{
	{"hunger", func(n *Needs) *float32 { return &n.Hunger }, true, "hunger"},
	{"energy", func(n *Needs) *float32 { return &n.Energy }, false, "energy"},
	{"social", func(n *Needs) *float32 { return &n.Social }, false, ""},
	{"fun", func(n *Needs) *float32 { return &n.Fun }, false, ""},
	{"hygiene", func(n *Needs) *float32 { return &n.Hygiene }, false, ""},
	{"comfort", func(n *Needs) *float32 { return &n.Comfort }, false, ""},
	{"bladder", func(n *Needs) *float32 { return &n.Bladder }, false, ""},
	{"stress", func(n *Needs) *float32 { return &n.Stress }, true, "stress"},
}

// value reads a need by its axis name; unknown names read as 0.
func (n *Needs) value(name string) float32 {
	for _, ax := range needAxes {
		if ax.name == name {
			return *ax.get(n)
		}
	}
	return 0
}

// Adjust moves a need by delta, clamped to [0,1]. Unknown names are ignored.
func (n *Needs) Adjust(name string, delta float32) {
	for _, ax := range needAxes {
		if ax.name == name {
			v := ax.get(n)
			*v = clamp01(*v + delta)
			return
		}
	}
}

// StageModifiers scales need decay for a life stage.
type StageModifiers struct {
	HungerDecay       float32 `json:"hunger_decay" yaml:"hunger_decay"`
	EnergyDecay       float32 `json:"energy_decay" yaml:"energy_decay"`
	StressSensitivity float32 `json:"stress_sensitivity" yaml:"stress_sensitivity"`
}

// lifeStages is the fixed modifier table, keyed by life-stage tag.
// Infants burn through needs fastest; elders eat less but tire quicker.
var lifeStages = map[string]StageModifiers{
	StageInfant:  {HungerDecay: 1.6, EnergyDecay: 1.4, StressSensitivity: 1.5},
	StageToddler: {HungerDecay: 1.4, EnergyDecay: 1.3, StressSensitivity: 1.3},
	StageChild:   {HungerDecay: 1.2, EnergyDecay: 1.1, StressSensitivity: 1.1},
	StageTeen:    {HungerDecay: 1.3, EnergyDecay: 1.2, StressSensitivity: 1.2},
	StageAdult:   {HungerDecay: 1.0, EnergyDecay: 1.0, StressSensitivity: 1.0},
	StageElder:   {HungerDecay: 0.8, EnergyDecay: 1.3, StressSensitivity: 1.2},
}

// StageFor returns the modifier set for a life-stage tag.
// Unknown tags fall back to adult.
func StageFor(tag string) StageModifiers {
	if m, ok := lifeStages[tag]; ok {
		return m
	}
	return lifeStages[StageAdult]
}

// moodRule fires a moodlet when a post-decay need crosses its threshold.
type moodRule struct {
	need    string
	above   bool // fire when value > limit, otherwise when value < limit
	limit   float32
	moodlet string
}

var moodRules = []moodRule{
	{"hunger", true, 0.9, "starving"},
	{"energy", false, 0.1, "exhausted"},
	{"social", false, 0.1, "lonely"},
	{"fun", false, 0.1, "bored"},
	{"hygiene", false, 0.1, "dirty"},
	{"comfort", false, 0.1, "uncomfortable"},
	{"bladder", false, 0.05, "desperate"},
	{"stress", true, 0.9, "overwhelmed"},
}

// Physiology is the mutable needs-and-mood state attached to a persona.
type Physiology struct {
	Needs          Needs          `json:"needs"`
	Moodlets       map[string]int `json:"moodlets"`
	Mood           string         `json:"mood"`
	EmotionalState string         `json:"emotional_state"`
}

// NewPhysiology returns a fresh physiology in the default state.
func NewPhysiology() *Physiology {
	return &Physiology{
		Needs:    DefaultNeeds(),
		Moodlets: make(map[string]int),
	}
}

// Update runs one tick of the state machine: decay scaled by the life
// stage, threshold moodlets evaluated on the post-decay values, then the
// moodlet countdown. Safe to call on a nil physiology.
func (ph *Physiology) Update(stage string, rates DecayRates) {
	if ph == nil {
		return
	}
	ph.decay(rates, StageFor(stage))
	ph.applyMoodRules()
	ph.TickMoodlets()
}

func (ph *Physiology) decay(rates DecayRates, mods StageModifiers) {
	defaults := DefaultDecayRates()
	for _, ax := range needAxes {
		rate := rates[ax.name]
		if rate == 0 {
			rate = defaults[ax.name]
		}
		switch ax.scale {
		case "hunger":
			rate *= mods.HungerDecay
		case "energy":
			rate *= mods.EnergyDecay
		case "stress":
			rate *= mods.StressSensitivity
		}

		v := ax.get(&ph.Needs)
		if ax.rises {
			*v = clamp01(*v + rate)
		} else {
			*v = clamp01(*v - rate)
		}
	}
}

func (ph *Physiology) applyMoodRules() {
	for _, r := range moodRules {
		v := ph.Needs.value(r.need)
		if r.above && v > r.limit || !r.above && v < r.limit {
			ph.SetMoodlet(r.moodlet, MoodletDuration)
		}
	}
}

// Wellbeing averages need satisfaction across all axes, flipping the two
// where high means bad. Used for reporting only.
func (ph *Physiology) Wellbeing() float32 {
	if ph == nil {
		return 0
	}
	var total float32
	for _, ax := range needAxes {
		v := *ax.get(&ph.Needs)
		if ax.rises {
			v = 1 - v
		}
		total += v
	}
	return total / float32(len(needAxes))
}

// UrgentNeed returns the worst-off need and how bad it is, in [0,1].
func (ph *Physiology) UrgentNeed() (string, float32) {
	if ph == nil {
		return "", 0
	}
	var worstName string
	var worst float32
	for _, ax := range needAxes {
		bad := *ax.get(&ph.Needs)
		if !ax.rises {
			bad = 1 - bad
		}
		if bad > worst {
			worst, worstName = bad, ax.name
		}
	}
	return worstName, worst
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
