// Action executor: applies canonical instructions to persona and world
// state. Malformed or unsatisfiable payloads degrade to a described no-op,
// never an error.
package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rotty13/llm-sim-sub001/internal/action"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
)

// Payload shapes the executor understands. Unknown or missing fields simply
// decode to zero values.
type movePayload struct {
	To string `json:"to"`
}

type interactPayload struct {
	With string `json:"with"`
}

type sayPayload struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type notePayload struct {
	Note string `json:"note"`
}

// needDelta is one clamped adjustment an action applies.
type needDelta struct {
	need  string
	delta float32
}

// actionEffects maps each verb to its per-tick need adjustments. Values are
// sized for a 5-minute tick: a chosen action repeats every tick until the
// next decision replaces it, so sustained activities move needs slowly while
// one-shot acts like a meal land in a single tick.
var actionEffects = map[action.Verb][]needDelta{
	action.VerbEat:      {{"hunger", -0.6}, {"comfort", 0.05}},
	action.VerbSleep:    {{"energy", 0.05}, {"stress", -0.01}, {"bladder", 0.05}, {"hygiene", 0.02}},
	action.VerbWork:     {{"stress", 0.003}, {"energy", -0.004}, {"fun", -0.003}},
	action.VerbInteract: {{"social", 0.15}, {"fun", 0.08}},
	action.VerbSay:      {{"social", 0.05}},
	action.VerbThink:    {{"stress", -0.02}},
	action.VerbPlan:     {{"stress", -0.02}},
}

func applyEffects(p *persona.Persona, verb action.Verb) {
	if p.Physio == nil {
		return
	}
	for _, d := range actionEffects[verb] {
		p.Physio.Needs.Adjust(d.need, d.delta)
	}
}

// Execute applies one canonical instruction and returns a human-readable
// description of what happened. Empty means nothing worth reporting.
func (s *Simulation) Execute(p *persona.Persona, in action.Instruction) string {
	switch in.Verb {
	case action.VerbMove:
		var pl movePayload
		_ = json.Unmarshal([]byte(in.Payload), &pl)
		if pl.To == "" {
			return p.Name + " wanders without a destination"
		}
		if !s.Graph.Has(pl.To) {
			return fmt.Sprintf("%s looks for %s but no such place exists", p.Name, pl.To)
		}
		if pl.To == p.Place {
			return ""
		}
		p.Place = pl.To
		return fmt.Sprintf("%s walks to %s", p.Name, pl.To)

	case action.VerbEat:
		applyEffects(p, in.Verb)
		return p.Name + " eats a meal"

	case action.VerbSleep:
		applyEffects(p, in.Verb)
		return p.Name + " sleeps"

	case action.VerbWork:
		applyEffects(p, in.Verb)
		return p.Name + " gets some work done"

	case action.VerbInteract:
		var pl interactPayload
		_ = json.Unmarshal([]byte(in.Payload), &pl)
		if pl.With == "" {
			return p.Name + " looks around for company"
		}
		partner := s.Index[pl.With]
		if partner == nil || partner == p || partner.Place != p.Place {
			return fmt.Sprintf("%s looks around for %s, who is not here", p.Name, pl.With)
		}
		applyEffects(p, in.Verb)
		applyEffects(partner, in.Verb)
		level := s.Familiarity.Bump(p.Name, partner.Name)
		partner.Diary.AddObservation(fmt.Sprintf("%s spent time with me at %s", p.Name, p.Place))
		return fmt.Sprintf("%s spends time with %s (familiarity %.2f)", p.Name, partner.Name, level)

	case action.VerbSay:
		var pl sayPayload
		_ = json.Unmarshal([]byte(in.Payload), &pl)
		applyEffects(p, in.Verb)
		text := strings.TrimSpace(pl.Text)
		if text == "" {
			return p.Name + " starts to speak, then trails off"
		}
		line := fmt.Sprintf("%s says: %q", p.Name, truncate(text, 120))
		// Everyone co-located overhears; the words land as observations.
		for _, other := range s.Personas {
			if other != p && other.Place == p.Place {
				other.Diary.AddObservation(line)
			}
		}
		return line

	case action.VerbThink:
		applyEffects(p, in.Verb)
		if note := noteText(in.Payload); note != "" {
			return fmt.Sprintf("%s reflects: %s", p.Name, truncate(note, 120))
		}
		return p.Name + " pauses to think"

	case action.VerbPlan:
		applyEffects(p, in.Verb)
		if note := noteText(in.Payload); note != "" {
			return fmt.Sprintf("%s plans: %s", p.Name, truncate(note, 120))
		}
		return p.Name + " adjusts plans for the day"

	case action.VerbContinue:
		return ""
	}
	return ""
}

func noteText(payload string) string {
	var pl notePayload
	_ = json.Unmarshal([]byte(payload), &pl)
	return strings.TrimSpace(pl.Note)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
