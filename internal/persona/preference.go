package persona

import "math"

// preferenceWeights is the fixed coefficient table of the interaction
// desirability model. Self extraversion carries no main effect; it only
// enters through the extraversion product term.
var preferenceWeights = struct {
	PartnerE, PartnerA, PartnerN float64
	SelfA, SelfN                 float64
	ExtraProduct                 float64 // self E × partner E
	AgreeNeuro                   float64 // self A × partner N
	Familiarity                  float64
	Attractiveness               float64
	SameGender                   float64
	BadWeather                   float64
	TraitDistance                float64 // Euclidean distance over (E,A,N)
}{
	PartnerE:       0.103,
	PartnerA:       0.164,
	PartnerN:       -0.060,
	SelfA:          0.019,
	SelfN:          -0.001,
	ExtraProduct:   0.002,
	AgreeNeuro:     0.004,
	Familiarity:    0.226,
	Attractiveness: 0.097,
	SameGender:     0.158,
	BadWeather:     -0.05,
	TraitDistance:  0.162,
}

// PreferenceInput collects the ten inputs of the scoring function.
// Trait and attractiveness values are Likert 1..7; nothing is clamped on
// the way in.
type PreferenceInput struct {
	Self           Traits
	Partner        Traits
	Familiarity    float64
	Attractiveness float64
	SameGender     bool
	BadWeather     bool
}

// PreferenceScore computes the desirability of an interaction from the
// asker's point of view: a weighted linear combination over the inputs,
// minus a trait-distance penalty, clamped to [1,7] and rounded to two
// decimals. Pure function; the host loop decides what to do with it.
func PreferenceScore(in PreferenceInput) float64 {
	w := preferenceWeights

	dE := in.Self.Extraversion - in.Partner.Extraversion
	dA := in.Self.Agreeableness - in.Partner.Agreeableness
	dN := in.Self.Neuroticism - in.Partner.Neuroticism
	dist := math.Sqrt(dE*dE + dA*dA + dN*dN)

	score := w.PartnerE*in.Partner.Extraversion +
		w.PartnerA*in.Partner.Agreeableness +
		w.PartnerN*in.Partner.Neuroticism +
		w.SelfA*in.Self.Agreeableness +
		w.SelfN*in.Self.Neuroticism +
		w.ExtraProduct*in.Self.Extraversion*in.Partner.Extraversion +
		w.AgreeNeuro*in.Self.Agreeableness*in.Partner.Neuroticism +
		w.Familiarity*in.Familiarity +
		w.Attractiveness*in.Attractiveness -
		w.TraitDistance*dist

	if in.SameGender {
		score += w.SameGender
	}
	if in.BadWeather {
		score += w.BadWeather
	}

	if score < 1 {
		score = 1
	}
	if score > 7 {
		score = 7
	}
	return math.Round(score*100) / 100
}
