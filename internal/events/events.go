// Package events provides the append-only simulation event log. The log is
// a passed-in sink, handed to whoever needs to report; there is no global
// monitor.
package events

import (
	"log/slog"
	"sync"
)

// Event is one recorded simulation occurrence.
type Event struct {
	Tick        int    `db:"tick" json:"tick"`
	Persona     string `db:"persona" json:"persona"`
	Category    string `db:"category" json:"category"`
	Description string `db:"description" json:"description"`
}

// Event categories.
const (
	CategoryAction   = "action"
	CategorySchedule = "schedule"
	CategoryMood     = "mood"
	CategoryWeather  = "weather"
	CategorySystem   = "system"
)

// Persister receives every appended event for durable storage.
type Persister interface {
	PersistEvent(e Event) error
}

// Log is an append-only in-memory event log, safe for concurrent use.
// Readers address events by absolute index, which stays stable across Trim.
type Log struct {
	mu      sync.RWMutex
	events  []Event
	base    int // absolute index of events[0]
	persist Persister
}

// NewLog creates an empty event log.
func NewLog() *Log {
	return &Log{}
}

// SetPersister attaches a durable store; every later append flows through it.
func (l *Log) SetPersister(p Persister) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.persist = p
}

// Append records one event.
func (l *Log) Append(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	if l.persist != nil {
		if err := l.persist.PersistEvent(e); err != nil {
			slog.Warn("event persist failed", "tick", e.Tick, "error", err)
		}
	}
}

// Total returns the absolute number of events ever appended.
func (l *Log) Total() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.base + len(l.events)
}

// Since returns a copy of the events at and after the absolute index
// cursor, plus the new cursor. Events trimmed from memory are skipped.
func (l *Log) Since(cursor int) ([]Event, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if cursor < l.base {
		cursor = l.base
	}
	end := l.base + len(l.events)
	if cursor >= end {
		return nil, end
	}
	out := make([]Event, end-cursor)
	copy(out, l.events[cursor-l.base:])
	return out, end
}

// Recent returns up to n of the latest retained events, oldest first.
func (l *Log) Recent(n int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || len(l.events) == 0 {
		return nil
	}
	if n > len(l.events) {
		n = len(l.events)
	}
	out := make([]Event, n)
	copy(out, l.events[len(l.events)-n:])
	return out
}

// Trim drops all but the latest keep events from memory. Persisted rows
// are unaffected.
func (l *Log) Trim(keep int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if keep < 0 {
		keep = 0
	}
	if len(l.events) <= keep {
		return
	}
	drop := len(l.events) - keep
	l.events = append([]Event(nil), l.events[drop:]...)
	l.base += drop
}
