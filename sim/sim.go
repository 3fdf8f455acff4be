// Package sim drives an island through simulated years and wires the
// configuration, telemetry, bookmarks and snapshots around it.
package sim

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/pthm-cable/island/config"
	"github.com/pthm-cable/island/fauna"
	"github.com/pthm-cable/island/habitat"
	"github.com/pthm-cable/island/island"
	"github.com/pthm-cable/island/random"
	"github.com/pthm-cable/island/telemetry"
)

// perfWindow is the number of cycles the performance collector averages.
const perfWindow = 10

// Options configures a Simulation.
type Options struct {
	Config      *config.Config // nil = config.Cfg()
	Seed        int64          // overrides run.seed when non-zero
	LogStats    bool           // log year and perf stats every run.log_every years
	OutputDir   string         // overrides telemetry.output_dir when non-empty
	SnapshotDir string         // overrides snapshot.dir when non-empty
	Logger      *slog.Logger

	// StatsCallback is called with the stats of every completed year.
	StatsCallback func(telemetry.YearStats)
}

// Simulation owns an island and the telemetry around it.
type Simulation struct {
	cfg    *config.Config
	isl    *island.Island
	reg    *fauna.Registry
	table  *habitat.TerrainTable
	logger *slog.Logger

	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	perfCollector    *telemetry.PerfCollector
	outputManager    *telemetry.OutputManager

	snapshotDir   string
	logStats      bool
	statsCallback func(telemetry.YearStats)
}

// New builds a simulation from its configuration: the geography, the
// parameter overrides, the initial population and any introductions due
// at year zero.
func New(opts Options) (*Simulation, error) {
	s := newSimulation(opts)

	var err error
	seed := opts.Seed
	if seed == 0 {
		seed = s.cfg.Run.Seed
	}
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return nil, err
		}
	}

	s.isl, err = island.New(s.cfg.Geography, s.islandOptions(island.WithSeed(seed))...)
	if err != nil {
		return nil, fmt.Errorf("build island: %w", err)
	}
	for _, name := range slices.Sorted(maps.Keys(s.cfg.Species)) {
		if err := s.SetAnimalParameters(name, s.cfg.Species[name]); err != nil {
			return nil, err
		}
	}
	for _, code := range slices.Sorted(maps.Keys(s.cfg.Landscape)) {
		if err := s.SetLandscapeParameters(code, s.cfg.Landscape[code]); err != nil {
			return nil, err
		}
	}
	if err := s.AddPopulation(s.cfg.Population); err != nil {
		return nil, fmt.Errorf("initial population: %w", err)
	}
	if err := s.introduce(); err != nil {
		return nil, err
	}

	if err := s.openOutput(opts); err != nil {
		return nil, err
	}
	s.logger.Info("simulation created",
		"seed", seed,
		"rows", s.isl.Rows(),
		"cols", s.isl.Cols(),
		"animals", s.NumAnimals(),
		"configured", s.cfg.Derived.InitialCount,
		"introductions", s.cfg.Derived.IntroductionYears,
	)
	return s, nil
}

// Resume continues a simulation from a snapshot. The snapshot's parameters
// and random state replace those in the configuration; introductions
// already due are not repeated.
func Resume(snap *telemetry.Snapshot, opts Options) (*Simulation, error) {
	s := newSimulation(opts)

	var err error
	s.isl, err = snap.Restore(s.islandOptions()...)
	if err != nil {
		return nil, fmt.Errorf("resume: %w", err)
	}
	if err := s.openOutput(opts); err != nil {
		return nil, err
	}
	s.logger.Info("simulation resumed",
		"seed", snap.Seed,
		"year", s.Year(),
		"animals", s.NumAnimals(),
	)
	return s, nil
}

func newSimulation(opts Options) *Simulation {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	cfg.ComputeDerived()
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulation{
		cfg:           cfg,
		reg:           fauna.NewRegistry(),
		table:         habitat.NewTerrainTable(),
		logger:        logger,
		collector:     telemetry.NewCollector(),
		perfCollector: telemetry.NewPerfCollector(perfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(telemetry.DetectorConfig{
			HistorySize:    cfg.Bookmarks.HistorySize,
			CrashDrop:      cfg.Bookmarks.CrashDrop,
			RecoveryFactor: cfg.Bookmarks.RecoveryFactor,
			RecoveryFloor:  cfg.Bookmarks.RecoveryFloor,
			StableCV:       cfg.Bookmarks.StableCV,
		}),
		snapshotDir:   cfg.Snapshot.Dir,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	if opts.SnapshotDir != "" {
		s.snapshotDir = opts.SnapshotDir
	}
	return s
}

func (s *Simulation) islandOptions(extra ...island.Option) []island.Option {
	return append([]island.Option{
		island.WithRegistry(s.reg),
		island.WithTerrainTable(s.table),
		island.WithLogger(s.logger),
		island.WithPhaseHook(s.perfCollector.StartPhase),
	}, extra...)
}

func (s *Simulation) openOutput(opts Options) error {
	dir := s.cfg.Telemetry.OutputDir
	if opts.OutputDir != "" {
		dir = opts.OutputDir
	}
	om, err := telemetry.NewOutputManager(dir)
	if err != nil {
		return err
	}
	if err := om.WriteConfig(s.cfg); err != nil {
		om.Close()
		return err
	}
	s.outputManager = om
	return nil
}

// SetAnimalParameters updates the parameters of a species by name.
func (s *Simulation) SetAnimalParameters(species string, params map[string]float64) error {
	if err := s.isl.UpdateSpeciesParams(species, params); err != nil {
		return fmt.Errorf("species %s: %w", species, err)
	}
	return nil
}

// SetLandscapeParameters updates the parameters of a terrain by map code.
func (s *Simulation) SetLandscapeParameters(code string, params map[string]float64) error {
	if err := s.isl.UpdateTerrainParams(code, params); err != nil {
		return fmt.Errorf("landscape %s: %w", code, err)
	}
	return nil
}

// AddPopulation places organisms on the island.
func (s *Simulation) AddPopulation(placements []island.Placement) error {
	return s.isl.AddPopulation(placements)
}

// introduce adds the configured introductions due at the current year.
func (s *Simulation) introduce() error {
	placements := s.cfg.IntroductionsAt(s.isl.Year())
	if len(placements) == 0 {
		return nil
	}
	if err := s.AddPopulation(placements); err != nil {
		return fmt.Errorf("introduction at year %d: %w", s.isl.Year(), err)
	}
	s.logger.Info("population introduced",
		"year", s.isl.Year(),
		"organisms", config.CountOrganisms(placements),
	)
	return nil
}

// Simulate runs the given number of years.
func (s *Simulation) Simulate(years int) error {
	for i := 0; i < years; i++ {
		if err := s.step(); err != nil {
			return err
		}
	}
	return nil
}

// step runs one annual cycle and its bookkeeping.
func (s *Simulation) step() error {
	s.perfCollector.StartCycle()
	rep := s.isl.RunCycle()

	s.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	s.collector.Record(rep)
	stats := s.collector.Flush(s.isl)
	s.perfCollector.EndCycle()

	// Introduced organisms count from the next year's stats but are part
	// of this year's distribution and snapshots.
	if err := s.introduce(); err != nil {
		return err
	}
	s.recordYear(stats)
	return nil
}

func (s *Simulation) recordYear(stats telemetry.YearStats) {
	year := stats.Year

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if err := s.outputManager.WriteYear(stats); err != nil {
		s.logger.Error("failed to write year stats", "error", err)
	}

	if every := s.cfg.Run.LogEvery; every > 0 && year%every == 0 {
		perfStats := s.perfCollector.Stats()
		if s.logStats {
			stats.LogStats()
			perfStats.LogStats()
		}
		if err := s.outputManager.WritePerf(perfStats, year); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
	}

	if every := s.cfg.Telemetry.DistributionEvery; every > 0 && year%every == 0 {
		if err := s.outputManager.WriteDistribution(year, s.isl.Distribution()); err != nil {
			s.logger.Error("failed to write distribution", "error", err)
		}
	}

	for _, bm := range s.bookmarkDetector.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if err := s.outputManager.WriteBookmark(bm); err != nil {
			s.logger.Error("failed to write bookmark", "error", err)
		}
		if s.snapshotDir != "" {
			s.saveSnapshot(&bm)
		}
	}

	if every := s.cfg.Snapshot.Every; s.snapshotDir != "" && every > 0 && year%every == 0 {
		s.saveSnapshot(nil)
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (s *Simulation) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot, err := s.Snapshot(bookmark)
	if err != nil {
		s.logger.Error("failed to capture snapshot", "error", err)
		return
	}
	path, err := telemetry.SaveSnapshot(snapshot, s.snapshotDir)
	if err != nil {
		s.logger.Error("failed to save snapshot", "error", err)
		return
	}
	s.logger.Info("snapshot saved", "path", path, "year", snapshot.Year)
}

// Snapshot captures the current state, optionally tagged with a bookmark.
func (s *Simulation) Snapshot(bookmark *telemetry.Bookmark) (*telemetry.Snapshot, error) {
	return telemetry.CaptureSnapshot(s.isl, bookmark)
}

// Island returns the simulated island.
func (s *Simulation) Island() *island.Island { return s.isl }

// Year returns the number of completed years.
func (s *Simulation) Year() int { return s.isl.Year() }

// NumAnimals returns the total number of organisms on the island.
func (s *Simulation) NumAnimals() int { return s.isl.Population() }

// NumAnimalsPerSpecies returns the organism count keyed by species name.
func (s *Simulation) NumAnimalsPerSpecies() map[string]int {
	out := make(map[string]int, fauna.NumSpecies)
	for sp, n := range s.isl.PopulationBySpecies() {
		out[sp.String()] = n
	}
	return out
}

// AnimalDistribution returns per-cell counts for every habitable cell.
func (s *Simulation) AnimalDistribution() []island.CellCount {
	return s.isl.Distribution()
}

// Close flushes and closes output files.
func (s *Simulation) Close() error {
	return s.outputManager.Close()
}
