// Package api provides the HTTP API for querying village state.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rotty13/llm-sim-sub001/internal/engine"
	"github.com/Rotty13/llm-sim-sub001/internal/events"
	"github.com/Rotty13/llm-sim-sub001/internal/memory"
	"github.com/Rotty13/llm-sim-sub001/internal/persistence"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
)

// Server serves the village state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Memories *memory.Store
	Addr     string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Snapshot settings for the admin snapshot endpoint.
	SnapshotDir string
	Seed        int64
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Snapshots rewrite every persona row and compress a file to disk, so
	// the endpoint gets a per-IP budget.
	snapshotLimiter := NewLimiter(6, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints, all GET and read-only.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/places", s.handlePlaces)
	mux.HandleFunc("/api/v1/personas", s.handlePersonas)
	mux.HandleFunc("/api/v1/persona/", s.handlePersonaRoutes)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/history", s.handleHistory)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/familiarity", s.handleFamiliarity)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(LimitRequests(snapshotLimiter, s.handleSnapshot)))

	slog.Info("HTTP API starting", "addr", s.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(s.Addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin token configured)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cond := s.Sim.Conditions(int(s.Sim.CurrentTick()))
	weatherInfo := map[string]any{
		"description": cond.Description,
		"temp":        cond.Temp,
		"raining":     cond.Raining,
	}

	status := map[string]any{
		"tick":        s.Sim.CurrentTick(),
		"sim_time":    s.Sim.Clock.String(),
		"day":         s.Sim.Clock.Day(),
		"time_of_day": s.Sim.Clock.TimeOfDay(),
		"speed":       s.Eng.Speed,
		"running":     s.Eng.Running,
		"personas":    len(s.Sim.Personas),
		"places":      s.Sim.Graph.Len(),
		"weather":     weatherInfo,
	}
	writeJSON(w, status)
}

func (s *Server) handlePlaces(w http.ResponseWriter, r *http.Request) {
	type placeSummary struct {
		Name      string   `json:"name"`
		Kind      string   `json:"kind,omitempty"`
		Neighbors []string `json:"neighbors,omitempty"`
		Occupants []string `json:"occupants,omitempty"`
	}

	occupants := make(map[string][]string)
	for _, p := range s.Sim.Personas {
		occupants[p.Place] = append(occupants[p.Place], p.Name)
	}

	var result []placeSummary
	for _, name := range s.Sim.Graph.Names() {
		pl, _ := s.Sim.Graph.Get(name)
		result = append(result, placeSummary{
			Name:      pl.Name,
			Kind:      pl.Kind,
			Neighbors: s.Sim.Graph.Neighbors(name),
			Occupants: occupants[name],
		})
	}
	writeJSON(w, result)
}

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")

	type personaSummary struct {
		Name      string  `json:"name"`
		LifeStage string  `json:"life_stage"`
		Place     string  `json:"place"`
		Mood      string  `json:"mood,omitempty"`
		Wellbeing float32 `json:"wellbeing"`
		Moodlets  int     `json:"moodlets"`
	}

	var result []personaSummary
	for _, p := range s.Sim.Personas {
		if place != "" && p.Place != place {
			continue
		}

		sum := personaSummary{
			Name:      p.Name,
			LifeStage: p.LifeStage,
			Place:     p.Place,
		}
		if p.Physio != nil {
			sum.Mood = p.Physio.Mood
			sum.Wellbeing = p.Physio.Wellbeing()
			sum.Moodlets = len(p.Physio.ActiveMoodlets())
		}
		result = append(result, sum)
	}
	writeJSON(w, result)
}

// handlePersonaRoutes dispatches /persona/:name and its subresources
// (/persona/:name/memories, /persona/:name/events).
func (s *Server) handlePersonaRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing persona name", http.StatusBadRequest)
		return
	}

	p, ok := s.Sim.Index[parts[4]]
	if !ok {
		http.Error(w, "persona not found", http.StatusNotFound)
		return
	}

	if len(parts) >= 6 && parts[5] != "" {
		switch parts[5] {
		case "memories":
			s.handlePersonaMemories(w, r, p)
		case "events":
			s.handlePersonaEvents(w, r, p)
		default:
			http.Error(w, "unknown persona resource", http.StatusNotFound)
		}
		return
	}

	writeJSON(w, p)
}

func (s *Server) handlePersonaMemories(w http.ResponseWriter, r *http.Request, p *persona.Persona) {
	if s.Memories == nil {
		http.Error(w, "memory store not available", http.StatusServiceUnavailable)
		return
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	var (
		items []memory.Item
		err   error
	)
	if kind := r.URL.Query().Get("kind"); kind != "" {
		items, err = s.Memories.ByKind(p.Name, kind, limit)
	} else {
		items, err = s.Memories.Recent(p.Name, limit)
	}
	if err != nil {
		slog.Error("memory query failed", "persona", p.Name, "error", err)
		http.Error(w, "memory query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, items)
}

func (s *Server) handlePersonaEvents(w http.ResponseWriter, r *http.Request, p *persona.Persona) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	rows, err := s.DB.EventsForPersona(p.Name, limit)
	if err != nil {
		slog.Error("event query failed", "persona", p.Name, "error", err)
		http.Error(w, "event query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	// The engine trims the live log to its retained tail; query against
	// all of it, then cut to the requested window.
	list := s.Sim.Events.Recent(1000)

	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []events.Event
		for _, e := range list {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		list = filtered
	}

	if name := r.URL.Query().Get("persona"); name != "" {
		var filtered []events.Event
		for _, e := range list {
			if e.Persona == name {
				filtered = append(filtered, e)
			}
		}
		list = filtered
	}

	start := 0
	if len(list) > limit {
		start = len(list) - limit
	}
	writeJSON(w, list[start:])
}

// handleHistory reads from the persisted event rows, which outlive the
// trimmed in-memory log.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 100
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	rows, err := s.DB.RecentEvents(limit)
	if err != nil {
		slog.Error("event history query failed", "error", err)
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats)
}

func (s *Server) handleFamiliarity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Familiarity.Export())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveWorldState(s.Sim); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"tick":    s.Sim.CurrentTick(),
		"message": "snapshot saved",
	}

	if s.SnapshotDir != "" {
		snap := persistence.Capture(s.Sim, s.Seed)
		path := persistence.SnapshotPath(s.SnapshotDir, snap.Header.Tick)
		if err := persistence.WriteSnapshot(path, snap); err != nil {
			slog.Error("snapshot file write failed", "path", path, "error", err)
			http.Error(w, "snapshot failed", http.StatusInternalServerError)
			return
		}
		resp["file"] = path
	}

	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
