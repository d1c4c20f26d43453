package persona

import "github.com/Rotty13/llm-sim-sub001/internal/action"

// DefaultLookaheadMinutes is the forced-relocation window ahead of an
// appointment start.
const DefaultLookaheadMinutes = 15

// Appointment is one scheduled obligation, starting at a minute of the day.
type Appointment struct {
	StartMinute int    `json:"start_minute" yaml:"start_minute"`
	Place       string `json:"place" yaml:"place"`
	Label       string `json:"label" yaml:"label"`
}

// Enforcer issues forced relocations for imminent appointments.
type Enforcer struct {
	Lookahead int // closed window, in minutes, ahead of an appointment start
}

// NewEnforcer returns an enforcer with the default lookahead window.
func NewEnforcer() *Enforcer {
	return &Enforcer{Lookahead: DefaultLookaheadMinutes}
}

// Check scans appointments in caller order and returns a forced MOVE for
// the first one starting within the lookahead window while the persona is
// elsewhere. Nil means no appointment qualifies and the persona's own
// intent stands.
//
// Nothing is marked as handled: a qualifying appointment keeps firing
// every tick inside its window until the persona arrives.
func (e *Enforcer) Check(appts []Appointment, place string, nowMinutes int) *action.Instruction {
	for _, ap := range appts {
		wait := ap.StartMinute - nowMinutes
		if wait < 0 || wait > e.Lookahead {
			continue
		}
		if ap.Place == place {
			continue
		}
		return &action.Instruction{Verb: action.VerbMove, Payload: action.MovePayload(ap.Place)}
	}
	return nil
}
