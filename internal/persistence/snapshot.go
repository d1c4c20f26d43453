package persistence

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/Rotty13/llm-sim-sub001/internal/engine"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
)

// Header identifies a snapshot file. It is written as a plain JSON line
// ahead of the compressed payload so a file can be identified without a
// full decode.
type Header struct {
	Version int    `json:"version"`
	Tick    uint64 `json:"tick"`
	Day     int    `json:"day"`
}

// SnapshotV1 is a point-in-time export of the resumable village state.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed           int64 `json:"seed"`
	TicksPerDay    int   `json:"ticks_per_day"`
	MinutesPerTick int   `json:"minutes_per_tick"`

	Personas    []PersonaV1        `json:"personas"`
	Familiarity map[string]float64 `json:"familiarity,omitempty"`
}

// PersonaV1 is the snapshot form of one persona.
type PersonaV1 struct {
	Name           string                `json:"name"`
	Gender         string                `json:"gender"`
	LifeStage      string                `json:"life_stage"`
	Place          string                `json:"place"`
	Attractiveness float64               `json:"attractiveness"`
	Traits         persona.Traits        `json:"traits"`
	Schedule       []persona.Appointment `json:"schedule"`

	Needs          persona.Needs  `json:"needs"`
	Moodlets       map[string]int `json:"moodlets,omitempty"`
	Mood           string         `json:"mood,omitempty"`
	EmotionalState string         `json:"emotional_state,omitempty"`
}

// Capture builds a snapshot of the live simulation. The seed comes from
// configuration; everything else is read off the simulation itself.
func Capture(sim *engine.Simulation, seed int64) SnapshotV1 {
	snap := SnapshotV1{
		Header: Header{
			Version: 1,
			Tick:    sim.CurrentTick(),
			Day:     sim.Clock.Day(),
		},
		Seed:           seed,
		TicksPerDay:    sim.Clock.TicksPerDay,
		MinutesPerTick: sim.Clock.MinutesPerTick,
		Familiarity:    sim.Familiarity.Export(),
	}

	for _, p := range sim.Personas {
		pv := PersonaV1{
			Name:           p.Name,
			Gender:         p.Gender,
			LifeStage:      p.LifeStage,
			Place:          p.Place,
			Attractiveness: p.Attractiveness,
			Traits:         p.Traits,
			Schedule:       p.Calendar,
		}
		if p.Physio != nil {
			pv.Needs = p.Physio.Needs
			pv.Moodlets = p.Physio.Moodlets
			pv.Mood = p.Physio.Mood
			pv.EmotionalState = p.Physio.EmotionalState
		}
		snap.Personas = append(snap.Personas, pv)
	}
	return snap
}

// Roster rebuilds live personas from a snapshot.
func (snap SnapshotV1) Roster() []*persona.Persona {
	out := make([]*persona.Persona, 0, len(snap.Personas))
	for _, pv := range snap.Personas {
		p := &persona.Persona{
			Name:           pv.Name,
			Gender:         pv.Gender,
			LifeStage:      pv.LifeStage,
			Place:          pv.Place,
			Attractiveness: pv.Attractiveness,
			Traits:         pv.Traits,
			Calendar:       pv.Schedule,
			Physio:         persona.NewPhysiology(),
		}
		p.Physio.Needs = pv.Needs
		if pv.Moodlets != nil {
			p.Physio.Moodlets = pv.Moodlets
		}
		p.Physio.Mood = pv.Mood
		p.Physio.EmotionalState = pv.EmotionalState
		out = append(out, p)
	}
	return out
}

// SnapshotPath names a snapshot file inside dir for the given tick.
func SnapshotPath(dir string, tick uint64) string {
	return filepath.Join(dir, fmt.Sprintf("village-%010d.zst", tick))
}

// WriteSnapshot writes a snapshot file: one JSON header line, then the
// gob-encoded body, the whole stream zstd-compressed.
func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 64*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot file written by WriteSnapshot.
func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Skip the header line; the gob body carries the header too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
