// Package persistence provides SQLite-backed storage for village state:
// personas, the event history, familiarity levels and resume metadata.
// Memories share the same database file through the Conn accessor.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Rotty13/llm-sim-sub001/internal/engine"
	"github.com/Rotty13/llm-sim-sub001/internal/events"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
)

// DB wraps a SQLite connection for village state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the underlying handle so the memory store can share the
// same database file.
func (db *DB) Conn() *sqlx.DB {
	return db.conn
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS personas (
		name TEXT PRIMARY KEY,
		gender TEXT NOT NULL,
		life_stage TEXT NOT NULL,
		place TEXT NOT NULL,
		attractiveness REAL NOT NULL,
		mood TEXT NOT NULL,
		emotional_state TEXT NOT NULL,
		needs_json TEXT NOT NULL,
		moodlets_json TEXT NOT NULL,
		traits_json TEXT NOT NULL,
		schedule_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		persona TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_events_persona ON events(persona);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SavePersonas writes the whole roster to the database (full replace).
func (db *DB) SavePersonas(roster []*persona.Persona) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM personas"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO personas
		(name, gender, life_stage, place, attractiveness, mood, emotional_state,
		 needs_json, moodlets_json, traits_json, schedule_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range roster {
		ph := p.Physio
		if ph == nil {
			ph = persona.NewPhysiology()
		}
		needsJSON, _ := json.Marshal(ph.Needs)
		moodletsJSON, _ := json.Marshal(ph.Moodlets)
		traitsJSON, _ := json.Marshal(p.Traits)
		scheduleJSON, _ := json.Marshal(p.Calendar)

		_, err := stmt.Exec(
			p.Name, p.Gender, p.LifeStage, p.Place, p.Attractiveness,
			ph.Mood, ph.EmotionalState,
			string(needsJSON), string(moodletsJSON), string(traitsJSON), string(scheduleJSON),
		)
		if err != nil {
			return fmt.Errorf("insert persona %s: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

type personaRow struct {
	Name           string  `db:"name"`
	Gender         string  `db:"gender"`
	LifeStage      string  `db:"life_stage"`
	Place          string  `db:"place"`
	Attractiveness float64 `db:"attractiveness"`
	Mood           string  `db:"mood"`
	EmotionalState string  `db:"emotional_state"`
	NeedsJSON      string  `db:"needs_json"`
	MoodletsJSON   string  `db:"moodlets_json"`
	TraitsJSON     string  `db:"traits_json"`
	ScheduleJSON   string  `db:"schedule_json"`
}

// LoadPersonas rebuilds the roster from the database.
func (db *DB) LoadPersonas() ([]*persona.Persona, error) {
	var rows []personaRow
	if err := db.conn.Select(&rows, "SELECT * FROM personas ORDER BY name"); err != nil {
		return nil, fmt.Errorf("select personas: %w", err)
	}

	roster := make([]*persona.Persona, 0, len(rows))
	for _, r := range rows {
		p := &persona.Persona{
			Name:           r.Name,
			Gender:         r.Gender,
			LifeStage:      r.LifeStage,
			Place:          r.Place,
			Attractiveness: r.Attractiveness,
			Physio:         persona.NewPhysiology(),
		}
		p.Physio.Mood = r.Mood
		p.Physio.EmotionalState = r.EmotionalState

		if err := json.Unmarshal([]byte(r.NeedsJSON), &p.Physio.Needs); err != nil {
			return nil, fmt.Errorf("persona %s: decode needs: %w", r.Name, err)
		}
		if err := json.Unmarshal([]byte(r.MoodletsJSON), &p.Physio.Moodlets); err != nil {
			return nil, fmt.Errorf("persona %s: decode moodlets: %w", r.Name, err)
		}
		if p.Physio.Moodlets == nil {
			p.Physio.Moodlets = make(map[string]int)
		}
		if err := json.Unmarshal([]byte(r.TraitsJSON), &p.Traits); err != nil {
			return nil, fmt.Errorf("persona %s: decode traits: %w", r.Name, err)
		}
		if err := json.Unmarshal([]byte(r.ScheduleJSON), &p.Calendar); err != nil {
			return nil, fmt.Errorf("persona %s: decode schedule: %w", r.Name, err)
		}

		roster = append(roster, p)
	}
	return roster, nil
}

// HasState reports whether a saved roster exists to resume from.
func (db *DB) HasState() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM personas"); err != nil {
		return false
	}
	return n > 0
}

// PersistEvent appends one event row. The in-memory log calls this for
// every append once the database is attached as its persister.
func (db *DB) PersistEvent(e events.Event) error {
	_, err := db.conn.Exec(
		"INSERT INTO events (tick, persona, category, description) VALUES (?, ?, ?, ?)",
		e.Tick, e.Persona, e.Category, e.Description,
	)
	return err
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]events.Event, error) {
	var out []events.Event
	err := db.conn.Select(&out,
		"SELECT tick, persona, category, description FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return out, err
}

// EventsForPersona returns the most recent N events mentioning a persona,
// newest first.
func (db *DB) EventsForPersona(name string, limit int) ([]events.Event, error) {
	var out []events.Event
	err := db.conn.Select(&out,
		"SELECT tick, persona, category, description FROM events WHERE persona = ? ORDER BY id DESC LIMIT ?",
		name, limit,
	)
	return out, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveFamiliarity stores the pairwise familiarity levels as a meta blob.
func (db *DB) SaveFamiliarity(levels map[string]float64) error {
	blob, err := json.Marshal(levels)
	if err != nil {
		return fmt.Errorf("encode familiarity: %w", err)
	}
	return db.SaveMeta("familiarity", string(blob))
}

// LoadFamiliarity restores the pairwise familiarity levels. A missing row
// reads as an empty map.
func (db *DB) LoadFamiliarity() (map[string]float64, error) {
	raw, err := db.GetMeta("familiarity")
	if err != nil {
		return map[string]float64{}, nil
	}
	levels := map[string]float64{}
	if err := json.Unmarshal([]byte(raw), &levels); err != nil {
		return nil, fmt.Errorf("decode familiarity: %w", err)
	}
	return levels, nil
}

// SaveWorldState performs a full save of the resumable village state.
// Events and memories are not touched here: both are written row by row
// as the simulation produces them.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	slog.Info("saving village state", "personas", len(sim.Personas), "tick", sim.CurrentTick())

	if err := db.SavePersonas(sim.Personas); err != nil {
		return fmt.Errorf("save personas: %w", err)
	}
	if err := db.SaveFamiliarity(sim.Familiarity.Export()); err != nil {
		return fmt.Errorf("save familiarity: %w", err)
	}
	if err := db.SaveMeta("last_tick", fmt.Sprintf("%d", sim.CurrentTick())); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("village state saved")
	return nil
}
