package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Conditions holds the derived weather for one tick.
type Conditions struct {
	Temp        float64 `json:"temp"` // Celsius
	Raining     bool    `json:"raining"`
	Storm       bool    `json:"storm"`
	Description string  `json:"description"`
}

// Bad reports whether conditions should discourage meeting outdoors.
// Feeds the bad-weather input of the interaction preference model.
func (c Conditions) Bad() bool {
	return c.Raining || c.Storm
}

// Thresholds on the normalized wetness field.
const (
	rainLevel  = 0.62
	stormLevel = 0.82
)

// Weather is a deterministic weather field over tick time, driven by
// layered simplex noise. The same seed always produces the same sky.
type Weather struct {
	wet  opensimplex.Noise
	heat opensimplex.Noise
}

// NewWeather creates a weather field from a seed.
func NewWeather(seed int64) *Weather {
	return &Weather{
		wet:  opensimplex.NewNormalized(seed),
		heat: opensimplex.NewNormalized(seed + 1),
	}
}

// At samples the conditions for a tick.
func (w *Weather) At(tick int) Conditions {
	t := float64(tick)
	wet := octaveNoise(w.wet, t, 0, 3, 0.004, 0.5)
	heat := octaveNoise(w.heat, t, 64, 3, 0.002, 0.5)

	c := Conditions{Temp: 2 + heat*28}
	switch {
	case wet >= stormLevel:
		c.Storm = true
		c.Raining = true
		c.Description = "storm"
	case wet >= rainLevel:
		c.Raining = true
		c.Description = "rain"
	case heat < 0.25:
		c.Description = "overcast"
	default:
		c.Description = "clear"
	}
	return c
}

// octaveNoise layers multiple noise frequencies into fractal detail.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
