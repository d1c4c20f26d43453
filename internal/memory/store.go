// Package memory provides the sqlite-backed memory store and the text
// primitives the diary novelty gate relies on.
package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Item is one stored memory row.
type Item struct {
	ID         string  `db:"id" json:"id"`
	Persona    string  `db:"persona" json:"persona"`
	Tick       int     `db:"tick" json:"tick"`
	Kind       string  `db:"kind" json:"kind"`
	Text       string  `db:"text" json:"text"`
	Importance float64 `db:"importance" json:"importance"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
}

// Store is the sqlite-backed memory store shared by all personas.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle and ensures the memories table.
func NewStore(db *sqlx.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("memory schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id TEXT PRIMARY KEY,
		persona TEXT NOT NULL,
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		text TEXT NOT NULL,
		importance REAL NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_memories_persona_tick ON memories(persona, tick);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Write inserts one memory item. Row ids are generated here.
func (s *Store) Write(persona string, tick int, kind, text string, importance float64) error {
	_, err := s.db.Exec(
		`INSERT INTO memories (id, persona, tick, kind, text, importance, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), persona, tick, kind, text, importance,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

// Recent returns the latest n memories for a persona, newest first.
func (s *Store) Recent(persona string, n int) ([]Item, error) {
	var items []Item
	err := s.db.Select(&items,
		`SELECT * FROM memories WHERE persona = ?
		 ORDER BY tick DESC, created_at DESC LIMIT ?`,
		persona, n,
	)
	if err != nil {
		return nil, fmt.Errorf("select recent memories: %w", err)
	}
	return items, nil
}

// ByKind returns the latest n memories of one kind for a persona.
func (s *Store) ByKind(persona, kind string, n int) ([]Item, error) {
	var items []Item
	err := s.db.Select(&items,
		`SELECT * FROM memories WHERE persona = ? AND kind = ?
		 ORDER BY tick DESC, created_at DESC LIMIT ?`,
		persona, kind, n,
	)
	if err != nil {
		return nil, fmt.Errorf("select memories by kind: %w", err)
	}
	return items, nil
}

// Count returns the number of stored memories for a persona.
func (s *Store) Count(persona string) (int, error) {
	var n int
	err := s.db.Get(&n, "SELECT COUNT(*) FROM memories WHERE persona = ?", persona)
	return n, err
}
