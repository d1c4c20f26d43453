package llm

import (
	"strings"
	"testing"
)

func TestActionSystemPromptListsEveryVerb(t *testing.T) {
	sys := buildActionSystemPrompt(&ActionContext{Name: "Mara", Gender: "female"})
	for _, verb := range []string{"SAY", "MOVE", "INTERACT", "THINK", "PLAN", "SLEEP", "EAT", "WORK", "CONTINUE"} {
		if !strings.Contains(sys, verb+"(") {
			t.Errorf("system prompt missing verb %s", verb)
		}
	}
	if !strings.Contains(sys, "Mara") || !strings.Contains(sys, "woman") {
		t.Errorf("system prompt missing identity: %q", sys)
	}
}

func TestActionUserPromptSkipsEmptySections(t *testing.T) {
	ctx := &ActionContext{
		Name:      "Bo",
		Place:     "Home",
		Day:       2,
		ClockTime: "07:35",
		TimeOfDay: "morning",
	}
	user := buildActionUserPrompt(ctx)
	if !strings.Contains(user, "day 2, 07:35 (morning)") || !strings.Contains(user, "at Home") {
		t.Errorf("user prompt missing clock line: %q", user)
	}
	for _, absent := range []string{"Weather:", "Active states:", "Also here:", "Recent diary entries:"} {
		if strings.Contains(user, absent) {
			t.Errorf("user prompt should omit %q when empty: %q", absent, user)
		}
	}

	ctx.Weather = "rain"
	ctx.Mood = "lonely"
	ctx.Moodlets = []string{"starving"}
	ctx.UrgentNeed = "hunger"
	ctx.NextAppointment = "market at Square in 40 minutes"
	ctx.Nearby = []string{"Mara", "Tess"}
	ctx.Recent = []string{"met Mara at the square"}
	user = buildActionUserPrompt(ctx)
	for _, want := range []string{
		"Weather: rain.",
		"feeling lonely",
		"Active states: starving.",
		"pressing need is hunger",
		"market at Square in 40 minutes",
		"Also here: Mara, Tess.",
		"- met Mara at the square",
	} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q:\n%s", want, user)
		}
	}
}

func TestDecideActionRequiresClient(t *testing.T) {
	if _, err := DecideAction(nil, &ActionContext{Name: "Bo"}, Options{}); err == nil {
		t.Error("expected error for nil client")
	}
	var c *Client
	if c.Enabled() {
		t.Error("nil client should report disabled")
	}
}

func TestNewClientDefaults(t *testing.T) {
	if NewClient("", Settings{}) != nil {
		t.Error("empty key should disable the client")
	}
	c := NewClient("k", Settings{})
	if c.model != defaultModel {
		t.Errorf("model = %q, want default", c.model)
	}
	if c.maxPerMin != 20 {
		t.Errorf("maxPerMin = %d, want 20", c.maxPerMin)
	}
	c = NewClient("k", Settings{Model: "claude-sonnet-4-5", RequestsPerMinute: 5})
	if c.model != "claude-sonnet-4-5" || c.maxPerMin != 5 {
		t.Errorf("settings not applied: %q %d", c.model, c.maxPerMin)
	}
}
