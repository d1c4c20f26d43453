package persona

import "sort"

// MoodletDuration is how many ticks a threshold moodlet lives, counting
// the tick it was set.
const MoodletDuration = 5

// SetMoodlet sets or refreshes a moodlet's remaining-ticks counter.
// Non-positive durations are ignored.
func (ph *Physiology) SetMoodlet(name string, duration int) {
	if ph == nil || duration <= 0 {
		return
	}
	if ph.Moodlets == nil {
		ph.Moodlets = make(map[string]int)
	}
	ph.Moodlets[name] = duration
}

// TickMoodlets counts every active moodlet down by one tick. A moodlet on
// its last tick is removed outright, so a counter is never observable at
// zero or below: duration 5 means alive through exactly five of these calls.
func (ph *Physiology) TickMoodlets() {
	if ph == nil {
		return
	}
	for name, remaining := range ph.Moodlets {
		if remaining <= 1 {
			delete(ph.Moodlets, name)
		} else {
			ph.Moodlets[name] = remaining - 1
		}
	}
}

// HasMoodlet reports whether a moodlet is currently active.
func (ph *Physiology) HasMoodlet(name string) bool {
	if ph == nil {
		return false
	}
	_, ok := ph.Moodlets[name]
	return ok
}

// ActiveMoodlets returns the active moodlet names in sorted order.
func (ph *Physiology) ActiveMoodlets() []string {
	if ph == nil || len(ph.Moodlets) == 0 {
		return nil
	}
	names := make([]string, 0, len(ph.Moodlets))
	for name := range ph.Moodlets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
