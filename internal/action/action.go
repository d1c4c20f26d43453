// Package action normalizes loosely-structured agent output into the
// canonical instruction grammar consumed by the action executor.
package action

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Verb is one of the nine canonical instruction verbs.
type Verb string

const (
	VerbSay      Verb = "SAY"
	VerbMove     Verb = "MOVE"
	VerbInteract Verb = "INTERACT"
	VerbThink    Verb = "THINK"
	VerbPlan     Verb = "PLAN"
	VerbSleep    Verb = "SLEEP"
	VerbEat      Verb = "EAT"
	VerbWork     Verb = "WORK"
	VerbContinue Verb = "CONTINUE"
)

// knownVerbs whitelists the canonical verb tokens.
var knownVerbs = map[Verb]bool{
	VerbSay:      true,
	VerbMove:     true,
	VerbInteract: true,
	VerbThink:    true,
	VerbPlan:     true,
	VerbSleep:    true,
	VerbEat:      true,
	VerbWork:     true,
	VerbContinue: true,
}

// verbPattern matches the first verb token in free text, with an optional
// parenthesized payload taken greedily to the last closing paren.
var verbPattern = regexp.MustCompile(`(?s)\b(SAY|MOVE|INTERACT|THINK|PLAN|SLEEP|EAT|WORK|CONTINUE)\b(?:\((.*)\))?`)

// Instruction is one canonical action: a verb plus an optional payload.
// Record-form payloads are compact JSON objects; string-form payloads are
// re-emitted as matched, without JSON validation.
type Instruction struct {
	Verb    Verb
	Payload string
}

// String renders the canonical wire form: VERB(payload) or VERB().
func (in Instruction) String() string {
	return string(in.Verb) + "(" + in.Payload + ")"
}

// MovePayload builds the payload for a forced relocation.
func MovePayload(place string) string {
	b, _ := json.Marshal(map[string]string{"to": place})
	return string(b)
}

// Fallbacks for input the grammar cannot place. The simulation must never
// stall on a malformed action, so bad input degrades to a harmless think.
func fallbackReconsider() Instruction {
	return Instruction{Verb: VerbThink, Payload: `{"note":"breathe and reconsider"}`}
}

func fallbackInvalid() Instruction {
	return Instruction{Verb: VerbThink, Payload: `{"note":"invalid action format"}`}
}

// Normalize converts a loosely-structured action, either a record with a
// type/action key or a raw string, into one canonical instruction. It is
// total: every input yields a valid instruction, never an error.
func Normalize(input any) Instruction {
	switch v := input.(type) {
	case map[string]any:
		return normalizeRecord(v)
	case string:
		return normalizeString(v)
	default:
		return fallbackInvalid()
	}
}

func normalizeRecord(rec map[string]any) Instruction {
	verb := VerbThink
	verbKey := ""
	if v, ok := rec["type"].(string); ok {
		verb = Verb(strings.TrimSpace(v))
		verbKey = "type"
	} else if v, ok := rec["action"].(string); ok {
		verb = Verb(strings.TrimSpace(v))
		verbKey = "action"
	}
	if !knownVerbs[verb] {
		return fallbackReconsider()
	}

	payload := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == verbKey {
			continue
		}
		payload[k] = v
	}
	if len(payload) == 0 {
		return Instruction{Verb: verb}
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fallbackReconsider()
	}
	return Instruction{Verb: verb, Payload: string(b)}
}

func normalizeString(s string) Instruction {
	trimmed := strings.TrimSpace(s)
	if knownVerbs[Verb(trimmed)] {
		return Instruction{Verb: Verb(trimmed)}
	}
	m := verbPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return fallbackReconsider()
	}
	return Instruction{Verb: Verb(m[1]), Payload: m[2]}
}
