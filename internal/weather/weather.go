// Package weather provides the optional live-sky integration. Conditions
// from OpenWeatherMap override the simulated weather field when an API key
// is configured; without one the seeded sky stands alone.
package weather

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Conditions holds parsed live weather.
type Conditions struct {
	Temp        float64 `json:"temp"` // Celsius
	WindSpeed   float64 `json:"wind_speed"`
	Raining     bool    `json:"raining"`
	Snowing     bool    `json:"snowing"`
	Storm       bool    `json:"storm"`
	Description string  `json:"description"`
}

// Client fetches conditions from OpenWeatherMap.
type Client struct {
	apiKey   string
	location string
	client   *http.Client

	mu          sync.Mutex
	cached      *Conditions
	cachedAt    time.Time
	cacheTTL    time.Duration
	lastFailAt  time.Time
	failBackoff time.Duration
}

// NewClient creates a weather API client. Returns nil if apiKey is empty.
func NewClient(apiKey, location string) *Client {
	if apiKey == "" {
		return nil
	}
	if location == "" {
		location = "Lisbon,PT"
	}
	return &Client{
		apiKey:   apiKey,
		location: location,
		client:   &http.Client{Timeout: 10 * time.Second},
		cacheTTL: 5 * time.Minute,
	}
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Fetch retrieves current conditions, using cache if fresh. Repeated API
// failures back off up to 10 minutes; a stale cache is served meanwhile.
func (c *Client) Fetch() (*Conditions, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.cachedAt) < c.cacheTTL {
		return c.cached, nil
	}

	if c.failBackoff > 0 && time.Since(c.lastFailAt) < c.failBackoff {
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, fmt.Errorf("weather API backoff (%s remaining)", c.failBackoff-time.Since(c.lastFailAt))
	}

	conditions, err := c.fetchFromAPI()
	if err != nil {
		c.lastFailAt = time.Now()
		if c.failBackoff == 0 {
			c.failBackoff = 1 * time.Minute
		} else if c.failBackoff < 10*time.Minute {
			c.failBackoff *= 2
		}
		if c.cached != nil {
			return c.cached, nil
		}
		return nil, err
	}

	c.cached = conditions
	c.cachedAt = time.Now()
	c.failBackoff = 0
	return conditions, nil
}

func (c *Client) fetchFromAPI() (*Conditions, error) {
	apiURL := fmt.Sprintf("https://api.openweathermap.org/data/2.5/weather?q=%s&appid=%s&units=metric",
		url.QueryEscape(c.location), c.apiKey)

	resp, err := c.client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("weather API call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather API error %d: %s", resp.StatusCode, string(body))
	}

	conditions, err := parseOWM(body)
	if err != nil {
		return nil, err
	}

	slog.Debug("weather fetched", "temp", conditions.Temp, "desc", conditions.Description)
	return conditions, nil
}

// parseOWM maps an OpenWeatherMap response body onto Conditions. Sustained
// wind above 15 m/s counts as a storm even without thunder.
func parseOWM(body []byte) (*Conditions, error) {
	var owm struct {
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Main        string `json:"main"`
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}

	if err := json.Unmarshal(body, &owm); err != nil {
		return nil, fmt.Errorf("parse weather: %w", err)
	}

	conditions := &Conditions{
		Temp:      owm.Main.Temp,
		WindSpeed: owm.Wind.Speed,
	}

	if len(owm.Weather) > 0 {
		conditions.Description = owm.Weather[0].Description
		main := strings.ToLower(owm.Weather[0].Main)
		conditions.Raining = main == "rain" || main == "drizzle" || main == "thunderstorm"
		conditions.Snowing = main == "snow"
		conditions.Storm = main == "thunderstorm" || conditions.WindSpeed > 15
	}

	return conditions, nil
}
