package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/island/config"
	"github.com/pthm-cable/island/sim"
	"github.com/pthm-cable/island/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, config 0 = random)")
	years := flag.Int("years", -1, "Years to simulate (-1 = use config)")
	saveSlot := flag.String("save-slot", "", "Archive slot to save the final state to")
	resumeSlot := flag.String("resume", "", "Archive slot to resume from")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	numYears := cfg.Run.Years
	if *years >= 0 {
		numYears = *years
	}

	opts := sim.Options{
		Config:      cfg,
		Seed:        *seed,
		LogStats:    *logStats,
		OutputDir:   *outputDir,
		SnapshotDir: *snapshotDir,
		Logger:      logger,
	}

	var archive *telemetry.Archive
	if *saveSlot != "" || *resumeSlot != "" {
		var err error
		archive, err = telemetry.OpenArchive(cfg.Snapshot.AppName)
		if err != nil {
			slog.Error("failed to open archive", "error", err)
			os.Exit(1)
		}
	}

	var s *sim.Simulation
	var err error
	if *resumeSlot != "" {
		snap, lerr := archive.Load(*resumeSlot)
		if lerr != nil {
			slog.Error("failed to load save slot", "slot", *resumeSlot, "error", lerr)
			os.Exit(1)
		}
		s, err = sim.Resume(snap, opts)
	} else {
		s, err = sim.New(opts)
	}
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting simulation",
		"start_year", s.Year(),
		"years", numYears,
	)

	if err := s.Simulate(numYears); err != nil {
		slog.Error("simulation failed", "year", s.Year(), "error", err)
		s.Close()
		os.Exit(1)
	}

	slog.Info("simulation complete",
		"year", s.Year(),
		"animals", s.NumAnimals(),
		"per_species", s.NumAnimalsPerSpecies(),
	)

	if *saveSlot != "" {
		snap, err := s.Snapshot(nil)
		if err != nil {
			slog.Error("failed to capture state", "error", err)
			return
		}
		if err := archive.Save(*saveSlot, snap); err != nil {
			slog.Error("failed to save slot", "slot", *saveSlot, "error", err)
			return
		}
		slog.Info("state saved", "slot", *saveSlot, "year", snap.Year)
	}
}
