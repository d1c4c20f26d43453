// Pairwise familiarity bookkeeping. Levels live on the 1..7 scale the
// interaction preference model consumes.
package engine

// Familiarity scale constants.
const (
	familiarityStart = 1.0
	familiarityStep  = 0.25
	familiarityMax   = 7.0
)

// Ledger tracks how well each pair of personas knows each other. Keys are
// order-independent, so Level(a, b) == Level(b, a).
type Ledger struct {
	levels map[string]float64
}

// NewLedger creates an empty familiarity ledger.
func NewLedger() *Ledger {
	return &Ledger{levels: make(map[string]float64)}
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// Level returns the familiarity between two personas. Strangers start at 1.
func (l *Ledger) Level(a, b string) float64 {
	if v, ok := l.levels[pairKey(a, b)]; ok {
		return v
	}
	return familiarityStart
}

// Bump raises the pair's familiarity by one interaction step, capped at 7,
// and returns the new level.
func (l *Ledger) Bump(a, b string) float64 {
	v := l.Level(a, b) + familiarityStep
	if v > familiarityMax {
		v = familiarityMax
	}
	l.levels[pairKey(a, b)] = v
	return v
}

// Export copies the tracked pairs for persistence.
func (l *Ledger) Export() map[string]float64 {
	out := make(map[string]float64, len(l.levels))
	for k, v := range l.levels {
		out[k] = v
	}
	return out
}

// Import replaces the tracked pairs, typically from a saved run.
func (l *Ledger) Import(levels map[string]float64) {
	l.levels = make(map[string]float64, len(levels))
	for k, v := range levels {
		l.levels[k] = v
	}
}
