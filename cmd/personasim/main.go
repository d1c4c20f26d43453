// Command personasim runs the LLM-persona village simulation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/Rotty13/llm-sim-sub001/internal/api"
	"github.com/Rotty13/llm-sim-sub001/internal/bridge"
	"github.com/Rotty13/llm-sim-sub001/internal/config"
	"github.com/Rotty13/llm-sim-sub001/internal/engine"
	"github.com/Rotty13/llm-sim-sub001/internal/events"
	"github.com/Rotty13/llm-sim-sub001/internal/llm"
	"github.com/Rotty13/llm-sim-sub001/internal/memory"
	"github.com/Rotty13/llm-sim-sub001/internal/persistence"
	"github.com/Rotty13/llm-sim-sub001/internal/persona"
	"github.com/Rotty13/llm-sim-sub001/internal/weather"
)

func main() {
	configPath := flag.String("config", "configs/village.yaml", "path to the simulation config")
	restorePath := flag.String("restore", "", "snapshot file to restore instead of the saved database state")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	slog.Info("config loaded", "path", *configPath, "personas", len(cfg.Personas), "places", len(cfg.World.Places))

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll(filepath.Dir(cfg.Persistence.Path), 0755)
	db, err := persistence.Open(cfg.Persistence.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.Persistence.Path)

	store, err := memory.NewStore(db.Conn())
	if err != nil {
		slog.Error("failed to prepare memory store", "error", err)
		os.Exit(1)
	}

	// ── Load or Build Roster ─────────────────────────────────────────
	var roster []*persona.Persona
	var familiarity map[string]float64
	var startTick uint64

	switch {
	case *restorePath != "":
		snap, err := persistence.ReadSnapshot(*restorePath)
		if err != nil {
			slog.Error("failed to read snapshot", "path", *restorePath, "error", err)
			os.Exit(1)
		}
		roster = snap.Roster()
		familiarity = snap.Familiarity
		startTick = snap.Header.Tick
		slog.Info("snapshot restored",
			"path", *restorePath,
			"personas", len(roster),
			"tick", startTick,
		)

	case db.HasState():
		slog.Info("found saved village state, loading...")
		roster, err = db.LoadPersonas()
		if err != nil {
			slog.Error("failed to load personas", "error", err)
			os.Exit(1)
		}
		familiarity, err = db.LoadFamiliarity()
		if err != nil {
			slog.Error("failed to load familiarity", "error", err)
			os.Exit(1)
		}
		if tickStr, err := db.GetMeta("last_tick"); err == nil {
			if t, err := strconv.ParseUint(tickStr, 10, 64); err == nil {
				startTick = t
			}
		}
		slog.Info("village state restored", "personas", len(roster), "tick", startTick)

	default:
		slog.Info("no saved state found, building roster from config...")
		roster, err = cfg.BuildPersonas()
		if err != nil {
			slog.Error("invalid roster", "error", err)
			os.Exit(1)
		}
	}

	// ── Simulation ────────────────────────────────────────────────────
	log := events.NewLog()
	log.SetPersister(db)

	llmClient := llm.NewClient(os.Getenv("ANTHROPIC_API_KEY"), llm.Settings{
		Model:             cfg.LLM.Model,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	})
	if llmClient.Enabled() {
		slog.Info("LLM client enabled", "decide_every_ticks", cfg.LLM.DecideEveryTicks)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — personas will use rule-based decisions")
	}

	sim := engine.New(cfg, roster, log, store, llmClient)
	sim.LastTick = startTick
	sim.Clock.SetTick(int(startTick))
	if len(familiarity) > 0 {
		sim.Familiarity.Import(familiarity)
	}

	sim.Live = weather.NewClient(os.Getenv("OPENWEATHER_API_KEY"), cfg.World.Location)
	if sim.Live.Enabled() {
		slog.Info("live weather enabled", "location", cfg.World.Location)
	}

	// Save on a fresh roster only (loaded villages are already saved).
	if startTick == 0 {
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	eng := engine.NewEngine(cfg.Clock.TicksPerDay)
	eng.Tick = startTick
	eng.Speed = 1

	// Wire tick callbacks. Auto-save every sim-day.
	eng.OnTick = sim.TickPersonas
	eng.OnDay = func(tick uint64) {
		sim.TickDay(tick)
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("daily save failed", "error", err)
		}
	}

	// ── Action Bridge ─────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub, err := bridge.NewHub(cfg.Bridge.ValidateFrames)
	if err != nil {
		slog.Error("failed to build bridge hub", "error", err)
		os.Exit(1)
	}
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, log)
	go func() {
		if err := hub.Serve(cfg.Bridge.Addr); err != nil {
			slog.Error("bridge server error", "error", err)
		}
	}()
	sim.OnInstruction = hub.OnInstruction

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("PERSONASIM_ADMIN_KEY")
	if adminKey == "" {
		adminKey = cfg.API.AdminToken
	}
	if adminKey == "" {
		slog.Warn("no admin token configured — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:         sim,
		Eng:         eng,
		DB:          db,
		Memories:    store,
		Addr:        cfg.API.Addr,
		AdminKey:    adminKey,
		SnapshotDir: cfg.Persistence.SnapshotDir,
		Seed:        cfg.World.Seed,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nThe village is awake: %d personas across %d places.\n", len(roster), sim.Graph.Len())
	fmt.Printf("API: http://localhost%s/api/v1/status\n", cfg.API.Addr)
	fmt.Printf("Bridge: ws://localhost%s/ws\n", cfg.Bridge.Addr)
	if startTick > 0 {
		fmt.Printf("Resuming from tick %d (%s)\n", startTick, sim.Clock.String())
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. Village state saved.")
}
