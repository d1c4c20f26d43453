package action

import "testing"

func TestNormalizeCanonicalStringsUnchanged(t *testing.T) {
	cases := []string{
		`SAY({"text":"hi"})`,
		`MOVE({"to":"Park"})`,
		`EAT()`,
		`CONTINUE()`,
		`THINK({"note":"breathe and reconsider"})`,
	}
	for _, in := range cases {
		got := Normalize(in).String()
		if got != in {
			t.Errorf("Normalize(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestNormalizeBareVerb(t *testing.T) {
	for _, in := range []string{"SLEEP", "  WORK  ", "CONTINUE"} {
		got := Normalize(in)
		if got.Payload != "" {
			t.Errorf("Normalize(%q): payload = %q, want empty", in, got.Payload)
		}
		if !knownVerbs[got.Verb] {
			t.Errorf("Normalize(%q): verb = %q, not canonical", in, got.Verb)
		}
	}
}

func TestNormalizeRecord(t *testing.T) {
	cases := []struct {
		name string
		in   map[string]any
		want string
	}{
		{"type key", map[string]any{"type": "MOVE", "to": "Park"}, `MOVE({"to":"Park"})`},
		{"action key", map[string]any{"action": "SAY", "text": "hello"}, `SAY({"text":"hello"})`},
		{"no verb key", map[string]any{"note": "idle"}, `THINK({"note":"idle"})`},
		{"empty payload", map[string]any{"type": "SLEEP"}, `SLEEP()`},
		{"trimmed verb", map[string]any{"type": " EAT "}, `EAT()`},
		{"sorted keys", map[string]any{"type": "SAY", "to": "Bob", "text": "hi"}, `SAY({"text":"hi","to":"Bob"})`},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in).String(); got != tc.want {
			t.Errorf("%s: Normalize(%v) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestNormalizeVerbEmbeddedInText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`I will MOVE({"to":"Cafe"}) right away`, `MOVE({"to":"Cafe"})`},
		{"Let me THINK about this", "THINK()"},
		{"time to EAT() something", "EAT()"},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in).String(); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	reconsider := `THINK({"note":"breathe and reconsider"})`
	invalid := `THINK({"note":"invalid action format"})`

	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nonsense string", "banana", reconsider},
		{"lowercase verb", "move(Park)", reconsider},
		{"verb inside word", "BEATS me", reconsider},
		{"unknown record verb", map[string]any{"type": "DANCE", "with": "Ana"}, reconsider},
		{"integer input", 42, invalid},
		{"nil input", nil, invalid},
		{"slice input", []string{"MOVE"}, invalid},
	}
	for _, tc := range cases {
		if got := Normalize(tc.in).String(); got != tc.want {
			t.Errorf("%s: Normalize(%v) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestNormalizeNeverPanicsAndAlwaysCanonical(t *testing.T) {
	inputs := []any{
		"", "   ", "((((", "MOVE(", ")EAT", "SAY hi SAY bye",
		map[string]any{}, map[string]any{"type": ""}, 3.14, true,
	}
	for _, in := range inputs {
		got := Normalize(in)
		if !knownVerbs[got.Verb] {
			t.Errorf("Normalize(%v): verb %q not canonical", in, got.Verb)
		}
	}
}

func TestMovePayload(t *testing.T) {
	if got := MovePayload("Office"); got != `{"to":"Office"}` {
		t.Errorf("MovePayload = %q, want %q", got, `{"to":"Office"}`)
	}
}
