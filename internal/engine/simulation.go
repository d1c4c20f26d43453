// Simulation ties the clock, world, roster and per-persona state machines
// together and advances them one tick at a time. Persona updates all run on
// the engine goroutine; nothing here is safe for concurrent mutation.
package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/Rotty13/llm-sim-sub001/internal/action"
	"github.com/Rotty13/llm-sim-sub001/internal/clock"
	"github.com/Rotty13/llm-sim-sub001/internal/config"
	"github.com/Rotty13/llm-sim-sub001/internal/events"
	"github.com/Rotty13/llm-sim-sub001/internal/llm"
	"github.com/Rotty13/llm-sim-sub001/internal/memory"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
	"github.com/Rotty13/llm-sim-sub001/internal/weather"
	"github.com/Rotty13/llm-sim-sub001/internal/world"
)

// observationImportance is the fixed importance for overheard observations;
// diary entries carry persona.DiaryImportance.
const observationImportance = 0.3

// Simulation holds the complete simulation state and wires systems together.
type Simulation struct {
	Clock    *clock.Clock
	Graph    *world.Graph
	Weather  *world.Weather
	Personas []*persona.Persona
	Index    map[string]*persona.Persona

	// Live, when enabled, overrides the simulated sky with fetched
	// real-world conditions.
	Live *weather.Client

	Events   *events.Log
	Memories *memory.Store

	Enforcer *persona.Enforcer
	Rates    persona.DecayRates

	OfferThreshold float64
	DecideEvery    int

	LLMOpts llm.Options

	Familiarity *Ledger

	// OnInstruction, if set, receives every executed instruction. The
	// websocket bridge hooks in here.
	OnInstruction func(name string, tick int, in action.Instruction)

	// LastTick is the most recent tick processed.
	LastTick uint64

	// Stats are refreshed once per sim-day.
	Stats SimStats

	decide      func(*llm.ActionContext) (string, error)
	lastWeather world.Conditions
}

// SimStats tracks aggregate roster statistics.
type SimStats struct {
	Personas       int     `json:"personas"`
	AvgWellbeing   float32 `json:"avg_wellbeing"`
	ActiveMoodlets int     `json:"active_moodlets"`
}

// New builds a simulation from a validated configuration and its wired
// collaborators. store may be nil (diaries then write nowhere) and client
// may be nil (personas fall back to rule-based decisions).
func New(cfg config.Config, roster []*persona.Persona, log *events.Log, store *memory.Store, client *llm.Client) *Simulation {
	ck := clock.New()
	if cfg.Clock.TicksPerDay > 0 {
		ck.TicksPerDay = cfg.Clock.TicksPerDay
	}
	if cfg.Clock.MinutesPerTick > 0 {
		ck.MinutesPerTick = cfg.Clock.MinutesPerTick
	}

	sim := &Simulation{
		Clock:          ck,
		Graph:          cfg.Graph(),
		Weather:        world.NewWeather(cfg.World.Seed),
		Personas:       roster,
		Index:          make(map[string]*persona.Persona, len(roster)),
		Events:         log,
		Memories:       store,
		Enforcer:       &persona.Enforcer{Lookahead: cfg.Schedule.LookaheadMinutes},
		Rates:          cfg.DecayRates(),
		OfferThreshold: cfg.Interaction.OfferThreshold,
		DecideEvery:    cfg.LLM.DecideEveryTicks,
		LLMOpts: llm.Options{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
		},
		Familiarity: NewLedger(),
	}

	for _, p := range roster {
		sim.Index[p.Name] = p
		if store != nil {
			p.Diary = persona.NewDiaryFilter(&storeSink{sim: sim, name: p.Name}, memory.SimilarityRatio)
			p.Diary.MinGapTicks = cfg.Diary.MinGapTicks
			p.Diary.SimilarityLimit = cfg.Diary.SimilarityLimit
		}
	}

	if client.Enabled() {
		sim.decide = func(ctx *llm.ActionContext) (string, error) {
			return llm.DecideAction(client, ctx, sim.LLMOpts)
		}
	}
	return sim
}

// CurrentTick returns the most recently processed tick number.
func (s *Simulation) CurrentTick() uint64 {
	return s.LastTick
}

// TickPersonas runs one simulation tick: clock and weather first, then each
// persona in roster order.
func (s *Simulation) TickPersonas(tick uint64) {
	s.LastTick = tick
	s.Clock.SetTick(int(tick))

	cond := s.Conditions(int(tick))
	if cond.Description != s.lastWeather.Description {
		s.Events.Append(events.Event{
			Tick:        int(tick),
			Category:    events.CategoryWeather,
			Description: "the weather turns " + cond.Description,
		})
	}
	s.lastWeather = cond

	for i, p := range s.Personas {
		s.tickPersona(tick, i, p, cond)
	}
}

// Conditions samples the simulated sky, replaced by live conditions when
// the weather client is configured and reachable. Snow counts as rain for
// the staying-indoors checks.
func (s *Simulation) Conditions(tick int) world.Conditions {
	cond := s.Weather.At(tick)
	if s.Live.Enabled() {
		if lc, err := s.Live.Fetch(); err == nil {
			cond = world.Conditions{
				Temp:        lc.Temp,
				Raining:     lc.Raining || lc.Snowing,
				Storm:       lc.Storm,
				Description: lc.Description,
			}
		}
	}
	return cond
}

// tickPersona advances one persona: schedule check, needs and mood, then a
// single decided-normalized-executed action.
func (s *Simulation) tickPersona(tick uint64, idx int, p *persona.Persona, cond world.Conditions) {
	// 1. A due appointment overrides whatever the persona wanted to do.
	forced := s.Enforcer.Check(p.Calendar, p.Place, s.Clock.MinuteOfDay())

	// 2. Needs decay, threshold moodlets, moodlet countdown.
	before := p.Physio.ActiveMoodlets()
	p.UpdateNeedsAndMood(s.Rates)
	p.SetMood(moodLabel(p.Physio.Wellbeing()))
	for _, m := range p.Physio.ActiveMoodlets() {
		if !slices.Contains(before, m) {
			s.Events.Append(events.Event{
				Tick:        int(tick),
				Persona:     p.Name,
				Category:    events.CategoryMood,
				Description: fmt.Sprintf("%s is feeling %s", p.Name, m),
			})
		}
	}

	// 3. Pick the tick's instruction.
	var in action.Instruction
	switch {
	case forced != nil:
		in = *forced
		var pl movePayload
		_ = json.Unmarshal([]byte(in.Payload), &pl)
		s.Events.Append(events.Event{
			Tick:        int(tick),
			Persona:     p.Name,
			Category:    events.CategorySchedule,
			Description: fmt.Sprintf("%s is due at %s and heads there", p.Name, pl.To),
		})
	default:
		if offer := s.bestOffer(p, cond); offer != nil {
			in = *offer
		} else {
			in = s.decideAction(tick, idx, p, cond)
		}
	}

	// 4. Execute and report.
	if desc := s.Execute(p, in); desc != "" {
		s.Events.Append(events.Event{
			Tick:        int(tick),
			Persona:     p.Name,
			Category:    events.CategoryAction,
			Description: desc,
		})
	}
	if s.OnInstruction != nil {
		s.OnInstruction(p.Name, int(tick), in)
	}

	// 5. Thoughts feed the diary through the novelty gate.
	if in.Verb == action.VerbThink || in.Verb == action.VerbPlan {
		if note := noteText(in.Payload); note != "" {
			p.Diary.MaybeWriteDiary(note, int(tick))
		}
	}
}

// bestOffer scores every co-located persona through the preference model and
// returns an INTERACT offer for the best partner at or above the threshold.
func (s *Simulation) bestOffer(p *persona.Persona, cond world.Conditions) *action.Instruction {
	var best *persona.Persona
	var bestScore float64
	for _, other := range s.Personas {
		if other == p || other.Place != p.Place {
			continue
		}
		score := persona.PreferenceScore(persona.PreferenceInput{
			Self:           p.Traits,
			Partner:        other.Traits,
			Familiarity:    s.Familiarity.Level(p.Name, other.Name),
			Attractiveness: other.Attractiveness,
			SameGender:     p.Gender != "" && p.Gender == other.Gender,
			BadWeather:     cond.Bad(),
		})
		if best == nil || score > bestScore {
			best, bestScore = other, score
		}
	}
	if best == nil || bestScore < s.OfferThreshold {
		return nil
	}
	pl, _ := json.Marshal(map[string]string{"with": best.Name})
	return &action.Instruction{Verb: action.VerbInteract, Payload: string(pl)}
}

// decideAction produces this tick's instruction. Personas take a model
// decision on their staggered cadence when a client is wired; every other
// tick, and on any model failure, the rule fallback serves.
func (s *Simulation) decideAction(tick uint64, idx int, p *persona.Persona, cond world.Conditions) action.Instruction {
	if s.decide != nil && s.DecideEvery > 0 && tick%uint64(s.DecideEvery) == uint64(idx%s.DecideEvery) {
		raw, err := s.decide(s.buildContext(p, cond))
		if err != nil {
			slog.Debug("decision call failed, falling back to rules",
				"persona", p.Name, "error", err)
		} else {
			return action.Normalize(raw)
		}
	}
	return s.ruleAction(p)
}

// ruleAction is the deterministic fallback: serve the most pressing need,
// otherwise follow the time of day.
func (s *Simulation) ruleAction(p *persona.Persona) action.Instruction {
	name, badness := p.Physio.UrgentNeed()
	if badness >= 0.7 {
		switch name {
		case "hunger":
			return action.Instruction{Verb: action.VerbEat, Payload: "{}"}
		case "energy":
			return action.Instruction{Verb: action.VerbSleep, Payload: "{}"}
		case "social", "fun":
			if other := s.anyoneNearby(p); other != "" {
				pl, _ := json.Marshal(map[string]string{"with": other})
				return action.Instruction{Verb: action.VerbInteract, Payload: string(pl)}
			}
		}
	}

	switch s.Clock.TimeOfDay() {
	case clock.Night:
		return action.Instruction{Verb: action.VerbSleep, Payload: "{}"}
	case clock.Morning, clock.Afternoon:
		return action.Instruction{Verb: action.VerbWork, Payload: "{}"}
	default:
		return action.Instruction{Verb: action.VerbContinue, Payload: "{}"}
	}
}

func (s *Simulation) anyoneNearby(p *persona.Persona) string {
	for _, other := range s.Personas {
		if other != p && other.Place == p.Place {
			return other.Name
		}
	}
	return ""
}

// buildContext assembles one persona's view of the world for a model call.
func (s *Simulation) buildContext(p *persona.Persona, cond world.Conditions) *llm.ActionContext {
	ctx := &llm.ActionContext{
		Name:      p.Name,
		Gender:    p.Gender,
		Place:     p.Place,
		Day:       s.Clock.Day(),
		ClockTime: fmt.Sprintf("%02d:%02d", s.Clock.Hour(), s.Clock.Minutes()),
		TimeOfDay: s.Clock.TimeOfDay(),
		Weather:   cond.Description,
	}
	if p.Physio != nil {
		ctx.Mood = p.Physio.Mood
		ctx.Moodlets = p.Physio.ActiveMoodlets()
		if name, bad := p.Physio.UrgentNeed(); bad >= 0.5 {
			ctx.UrgentNeed = name
		}
	}
	for _, other := range s.Personas {
		if other != p && other.Place == p.Place {
			ctx.Nearby = append(ctx.Nearby, other.Name)
		}
	}
	dayMinutes := s.Clock.TicksPerDay * s.Clock.MinutesPerTick
	ctx.NextAppointment = nextAppointment(p.Calendar, s.Clock.MinuteOfDay(), dayMinutes)
	if s.Memories != nil {
		if items, err := s.Memories.Recent(p.Name, 5); err == nil {
			for _, it := range items {
				ctx.Recent = append(ctx.Recent, it.Text)
			}
		}
	}
	return ctx
}

// nextAppointment renders the soonest upcoming appointment, wrapping past
// midnight to tomorrow's first entry.
func nextAppointment(appts []persona.Appointment, nowMinutes, dayMinutes int) string {
	bestWait := -1
	var best persona.Appointment
	for _, ap := range appts {
		wait := ap.StartMinute - nowMinutes
		if wait < 0 {
			wait += dayMinutes
		}
		if bestWait == -1 || wait < bestWait {
			bestWait, best = wait, ap
		}
	}
	if bestWait == -1 {
		return ""
	}
	label := best.Label
	if label == "" {
		label = "an appointment"
	}
	return fmt.Sprintf("%s at %s in %d minutes", label, best.Place, bestWait)
}

// TickDay runs once per sim-day: stats, daily report, a day-summary diary
// line per persona, event log trim.
func (s *Simulation) TickDay(tick uint64) {
	s.updateStats()

	counts := make(map[string]int)
	for _, e := range s.Events.Recent(1000) {
		counts[e.Category]++
	}

	slog.Info("daily report",
		"tick", tick,
		"time", s.Clock.String(),
		"personas", s.Stats.Personas,
		"avg_wellbeing", fmt.Sprintf("%.3f", s.Stats.AvgWellbeing),
		"active_moodlets", s.Stats.ActiveMoodlets,
		"weather", s.lastWeather.Description,
		"events_action", counts[events.CategoryAction],
		"events_schedule", counts[events.CategorySchedule],
		"events_mood", counts[events.CategoryMood],
	)

	finished := int((tick - 1) / uint64(s.Clock.TicksPerDay))
	for _, p := range s.Personas {
		line := fmt.Sprintf("Day %d: ended the day at %s feeling %s", finished, p.Place, moodOrDefault(p))
		p.Diary.MaybeWriteDiary(line, int(tick))
	}

	// Keep the in-memory log bounded; persisted rows are unaffected.
	s.Events.Trim(1000)
}

func (s *Simulation) updateStats() {
	st := SimStats{Personas: len(s.Personas)}
	var total float32
	for _, p := range s.Personas {
		total += p.Physio.Wellbeing()
		st.ActiveMoodlets += len(p.Physio.ActiveMoodlets())
	}
	if st.Personas > 0 {
		st.AvgWellbeing = total / float32(st.Personas)
	}
	s.Stats = st
}

// moodLabel buckets overall wellbeing into the coarse mood the prompt and
// daily report show.
func moodLabel(wellbeing float32) string {
	switch {
	case wellbeing > 0.75:
		return "content"
	case wellbeing > 0.5:
		return "steady"
	case wellbeing > 0.3:
		return "weary"
	default:
		return "miserable"
	}
}

func moodOrDefault(p *persona.Persona) string {
	if p.Physio != nil && p.Physio.Mood != "" {
		return p.Physio.Mood
	}
	return "steady"
}

// storeSink binds one persona's diary filter to the shared memory store.
type storeSink struct {
	sim  *Simulation
	name string
}

func (k *storeSink) WriteMemory(m persona.Memory) error {
	return k.sim.Memories.Write(k.name, m.Tick, m.Kind, m.Text, m.Importance)
}

func (k *storeSink) AddObservation(text string) error {
	return k.sim.Memories.Write(k.name, k.sim.Clock.Tick, persona.KindObservation, text, observationImportance)
}

func (k *storeSink) NormalizeText(text string) string {
	return memory.NormalizeText(text)
}
