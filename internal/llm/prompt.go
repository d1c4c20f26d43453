// Action prompts: each decision call shows a persona its own state and asks
// for exactly one canonical action line.
package llm

import (
	"fmt"
	"strings"
)

// ActionContext provides one persona's view of the world for a decision call.
type ActionContext struct {
	// Identity.
	Name, Gender, Place string

	// Clock.
	Day       int
	ClockTime string // "07:35"
	TimeOfDay string // "morning", "afternoon", "evening", "night"

	// State.
	Mood       string
	Moodlets   []string
	UrgentNeed string
	Weather    string

	// Surroundings.
	Nearby []string // co-located persona names

	// Schedule.
	NextAppointment string // e.g. "market at Square in 40 minutes"

	// Memory.
	Recent []string // recent diary lines, newest first
}

// DecideAction asks the model for the persona's next action line. The reply
// is returned verbatim apart from whitespace trimming; callers normalize it.
func DecideAction(client *Client, ctx *ActionContext, opts Options) (string, error) {
	if !client.Enabled() {
		return "", fmt.Errorf("LLM client not configured")
	}

	opts.System = buildActionSystemPrompt(ctx)
	out, err := client.Generate(buildActionUserPrompt(ctx), opts)
	if err != nil {
		return "", fmt.Errorf("action decision: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func buildActionSystemPrompt(ctx *ActionContext) string {
	return fmt.Sprintf(
		`You are %s, a %s living in a small village. You experience the day tick by tick and act in character at all times.

Each turn you choose exactly one action. Respond with a single line of the form VERB({...}) using one of:
- SAY({"to":"name","text":"..."}): speak to someone present
- MOVE({"to":"place"}): walk to a place
- INTERACT({"with":"name"}): spend time with someone present
- THINK({"note":"..."}): reflect privately
- PLAN({"note":"..."}): adjust your intentions
- SLEEP({}): rest where you are
- EAT({}): have a meal
- WORK({}): do your job
- CONTINUE({}): keep doing what you were doing

No prose, no explanation, only the single action line.`,
		ctx.Name, genderNoun(ctx.Gender),
	)
}

func buildActionUserPrompt(ctx *ActionContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "It is day %d, %s (%s), and you are at %s.\n", ctx.Day, ctx.ClockTime, ctx.TimeOfDay, ctx.Place)

	if ctx.Weather != "" {
		fmt.Fprintf(&b, "Weather: %s.\n", ctx.Weather)
	}
	if ctx.Mood != "" {
		fmt.Fprintf(&b, "You are feeling %s.\n", ctx.Mood)
	}
	if len(ctx.Moodlets) > 0 {
		fmt.Fprintf(&b, "Active states: %s.\n", strings.Join(ctx.Moodlets, ", "))
	}
	if ctx.UrgentNeed != "" {
		fmt.Fprintf(&b, "Your most pressing need is %s.\n", ctx.UrgentNeed)
	}
	if ctx.NextAppointment != "" {
		fmt.Fprintf(&b, "Next on your schedule: %s.\n", ctx.NextAppointment)
	}
	if len(ctx.Nearby) > 0 {
		fmt.Fprintf(&b, "Also here: %s.\n", strings.Join(ctx.Nearby, ", "))
	}

	if len(ctx.Recent) > 0 {
		b.WriteString("Recent diary entries:\n")
		for _, m := range ctx.Recent {
			fmt.Fprintf(&b, "- %s\n", m)
		}
	}

	b.WriteString("\nWhat do you do next? Reply with the single action line.")
	return b.String()
}

func genderNoun(gender string) string {
	switch strings.ToLower(gender) {
	case "female":
		return "woman"
	case "male":
		return "man"
	default:
		return "person"
	}
}
