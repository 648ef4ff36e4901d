// Command orrery runs the star-system simulation headless, journaling
// events to SQLite and serving snapshots over HTTP and WebSocket.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/talgya/orrery/internal/api"
	"github.com/talgya/orrery/internal/config"
	"github.com/talgya/orrery/internal/engine"
	"github.com/talgya/orrery/internal/entropy"
	"github.com/talgya/orrery/internal/persistence"
	"github.com/talgya/orrery/internal/system"
)

// maxAttempts bounds generation retries when a seed yields too few bodies.
const maxAttempts = 10

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	ticks := flag.Int("ticks", 0, "run this many ticks as fast as possible, then exit")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	slog.SetDefault(newLogger(os.Stderr, *debug))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim, err := buildSimulation(cfg.Sim)
	if err != nil {
		slog.Error("failed to generate system", "error", err)
		os.Exit(1)
	}
	logSystem(sim)

	// ── Journal ───────────────────────────────────────────────────────
	var db *persistence.DB
	var runID string
	if cfg.Journal.Enabled {
		if dir := filepath.Dir(cfg.Journal.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				slog.Error("failed to create journal directory", "dir", dir, "error", err)
				os.Exit(1)
			}
		}
		db, err = persistence.Open(cfg.Journal.Path)
		if err != nil {
			slog.Error("failed to open journal", "path", cfg.Journal.Path, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		runID, err = db.BeginRun(sim.Seed, sim.Fingerprint, sim.System.Len())
		if err != nil {
			slog.Error("failed to record run", "error", err)
			os.Exit(1)
		}
		slog.Info("journal opened", "path", cfg.Journal.Path, "run_id", runID)
		if runs, err := db.Runs(6); err == nil {
			for _, r := range runs {
				if r.ID != runID {
					slog.Debug("previous run", "run_id", r.ID, "seed", r.Seed, "started", r.StartedAt)
				}
			}
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = cfg.Engine.Interval
	eng.SetSpeed(cfg.Engine.Speed)
	eng.ReportEvery = cfg.Engine.ReportEvery
	eng.OnReport = func(tick uint64) { report(sim, db, tick) }

	if *ticks > 0 {
		eng.OnTick = func(uint64) { sim.Update() }
		start := time.Now()
		eng.Advance(*ticks)
		slog.Info("headless run finished",
			"ticks", humanize.Comma(int64(*ticks)),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── HTTP API ──────────────────────────────────────────────────────
	var apiServer *api.Server
	if cfg.API.Enabled {
		if cfg.API.AdminKey == "" {
			slog.Warn("ORRERY_ADMIN_KEY not set, admin POST endpoints will be disabled")
		}
		hub := api.NewHub()
		go hub.Run(ctx)

		limiter := api.NewIPLimiter(cfg.API.RateLimit, cfg.API.RateBurst)
		go sweepLimiter(ctx, limiter)

		apiServer = &api.Server{
			Sim:      sim,
			Eng:      eng,
			Hub:      hub,
			Port:     cfg.API.Port,
			AdminKey: cfg.API.AdminKey,
			RunID:    runID,
			Limiter:  limiter,
		}
		if db != nil {
			apiServer.DB = db
		}
		apiServer.Start()

		streamEvery := cfg.API.StreamEvery
		eng.OnTick = func(tick uint64) {
			sim.Update()
			if tick%streamEvery == 0 {
				hub.Publish(api.Message{Type: "snapshot", Tick: tick, Payload: sim.Snapshot()})
			}
		}
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	} else {
		eng.OnTick = func(uint64) { sim.Update() }
	}

	// ── Start ─────────────────────────────────────────────────────────
	fmt.Println("Starting simulation... (Ctrl+C to stop)")
	eng.Run(ctx)

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP shutdown failed", "error", err)
		}
	}
	fmt.Println("Simulation stopped.")
}

// newLogger writes human-readable text to a terminal and JSON otherwise.
func newLogger(f *os.File, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return slog.New(slog.NewTextHandler(f, opts))
	}
	return slog.New(slog.NewJSONHandler(f, opts))
}

// buildSimulation generates a system, retrying with the next seed when a
// seed cannot fit the minimum bodies into the configured radius.
func buildSimulation(cfg config.SimConfig) (*engine.Simulation, error) {
	seed := entropy.Seed(cfg.Seed)
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var sim *engine.Simulation
		sim, err = engine.New(cfg, seed)
		if err == nil {
			return sim, nil
		}
		if !errors.Is(err, system.ErrSystemTooSmall) {
			return nil, err
		}
		slog.Warn("system too small, retrying", "attempt", attempt, "seed", seed)
		seed++
	}
	return nil, fmt.Errorf("%d attempts: %w", maxAttempts, err)
}

func logSystem(sim *engine.Simulation) {
	sys := sim.System
	counts := make(map[system.Class]int)
	for i := range sys.Bodies {
		counts[sys.Bodies[i].Class]++
	}
	for c := system.ClassStar; c <= system.ClassVolcanic; c++ {
		if counts[c] > 0 {
			slog.Info("bodies", "class", system.ClassName(c), "count", counts[c])
		}
	}
	slog.Info("system ready",
		"seed", sim.Seed,
		"fingerprint", sim.Fingerprint[:16],
		"bodies", sys.Len(),
		"stations", len(sys.Stations()),
		"ore", len(sys.Filter(system.FeatureOre)),
		"radius", fmt.Sprintf("%.3f", sys.Radius),
		"ships", sim.Fleet.Len(),
	)
}

// report flushes new events and a stats sample to the journal and logs a
// summary line.
func report(sim *engine.Simulation, db *persistence.DB, tick uint64) {
	stats := sim.CurrentStats()
	events := sim.TakeEvents()
	if db != nil {
		if err := db.SaveEvents(events); err != nil {
			slog.Error("journal events failed", "tick", tick, "error", err)
		}
		if err := db.SaveStats(stats); err != nil {
			slog.Error("journal stats failed", "tick", tick, "error", err)
		}
	}
	slog.Info("report",
		"tick", humanize.Comma(int64(tick)),
		"ships", stats.Ships,
		"traders", stats.Traders,
		"stock", stats.StationStock,
		"in_flight", stats.InFlight,
		"deliveries", humanize.Comma(int64(stats.Deliveries)),
		"kills", stats.Kills,
		"events", len(events),
	)
}

func sweepLimiter(ctx context.Context, l *api.IPLimiter) {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := l.Sweep(time.Hour); n > 0 {
				slog.Debug("rate limiter swept", "buckets", n)
			}
		}
	}
}
