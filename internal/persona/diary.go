package persona

// Memory kinds.
const (
	KindAutobio     = "autobio"
	KindObservation = "observation"
)

// DiaryImportance is the fixed importance assigned to diary entries.
const DiaryImportance = 0.6

// Novelty gate defaults. Tuned-by-feel values carried over from long
// simulation runs; override through the diary config section if needed.
const (
	DefaultMinGapTicks     = 6
	DefaultSimilarityLimit = 0.93
)

// Memory is one item destined for the external memory store.
type Memory struct {
	Tick       int     `json:"tick"`
	Kind       string  `json:"kind"`
	Text       string  `json:"text"`
	Importance float64 `json:"importance"`
}

// MemorySink is the external memory store the filter writes through.
type MemorySink interface {
	AddObservation(text string) error
	WriteMemory(m Memory) error
	NormalizeText(text string) string
}

// DiaryFilter gates autobiographical notes on recency and novelty, so
// near-duplicate restatements do not flood the memory store.
type DiaryFilter struct {
	Sink       MemorySink
	Similarity func(a, b string) float64

	MinGapTicks     int
	SimilarityLimit float64

	lastText string
	lastTick int
	written  bool
}

// NewDiaryFilter wires a filter to its memory sink and similarity
// primitive, with the default gap and similarity limits.
func NewDiaryFilter(sink MemorySink, similarity func(a, b string) float64) *DiaryFilter {
	return &DiaryFilter{
		Sink:            sink,
		Similarity:      similarity,
		MinGapTicks:     DefaultMinGapTicks,
		SimilarityLimit: DefaultSimilarityLimit,
	}
}

// MaybeWriteDiary commits text as an autobio memory when it is non-empty,
// far enough in ticks from the previous diary write, and dissimilar enough
// from it. The first-ever write always passes both gates. Reports whether
// the entry was committed.
func (d *DiaryFilter) MaybeWriteDiary(text string, tick int) bool {
	if d == nil || d.Sink == nil || text == "" {
		return false
	}
	if d.written {
		if tick-d.lastTick < d.MinGapTicks {
			return false
		}
		if d.Similarity != nil {
			prev := d.Sink.NormalizeText(d.lastText)
			next := d.Sink.NormalizeText(text)
			if d.Similarity(prev, next) >= d.SimilarityLimit {
				return false
			}
		}
	}

	entry := Memory{Tick: tick, Kind: KindAutobio, Text: text, Importance: DiaryImportance}
	if err := d.Sink.WriteMemory(entry); err != nil {
		return false
	}
	d.lastText = text
	d.lastTick = tick
	d.written = true
	return true
}

// AddObservation passes text straight through to the memory store.
// Observations carry no novelty gate.
func (d *DiaryFilter) AddObservation(text string) {
	if d == nil || d.Sink == nil {
		return
	}
	d.Sink.AddObservation(text)
}
