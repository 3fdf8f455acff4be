// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/island/island"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Run           RunConfig                     `yaml:"run"`
	Geography     string                        `yaml:"geography"`
	Population    []island.Placement            `yaml:"population"`
	Species       map[string]map[string]float64 `yaml:"species"`
	Landscape     map[string]map[string]float64 `yaml:"landscape"`
	Introductions []IntroductionConfig          `yaml:"introductions"`
	Telemetry     TelemetryConfig               `yaml:"telemetry"`
	Bookmarks     BookmarksConfig               `yaml:"bookmarks"`
	Snapshot      SnapshotConfig                `yaml:"snapshot"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// RunConfig holds the run length and seed. Fields can be overridden from
// the environment.
type RunConfig struct {
	Seed     int64 `yaml:"seed" env:"ISLAND_SEED"` // 0 = draw a fresh seed
	Years    int   `yaml:"years" env:"ISLAND_YEARS"`
	LogEvery int   `yaml:"log_every" env:"ISLAND_LOG_EVERY"`
}

// IntroductionConfig adds a population once Year cycles have completed.
type IntroductionConfig struct {
	Year       int                `yaml:"year"`
	Population []island.Placement `yaml:"population"`
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	OutputDir         string `yaml:"output_dir" env:"ISLAND_OUTPUT_DIR"`
	DistributionEvery int    `yaml:"distribution_every"`
}

// BookmarksConfig holds thresholds for automatic bookmark detection.
type BookmarksConfig struct {
	HistorySize    int     `yaml:"history_size"`
	CrashDrop      float64 `yaml:"crash_drop"`
	RecoveryFactor float64 `yaml:"recovery_factor"`
	RecoveryFloor  int     `yaml:"recovery_floor"`
	StableCV       float64 `yaml:"stable_cv"`
}

// SnapshotConfig holds snapshot settings.
type SnapshotConfig struct {
	Dir     string `yaml:"dir"`
	Every   int    `yaml:"every"`
	AppName string `yaml:"app_name"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	InitialCount      int   // organisms in Population
	IntroductionYears []int // sorted, distinct
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// then applies environment overrides.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file. yaml.v3 replaces nested
		// map values wholesale, so the override tables are decoded fresh
		// and merged parameter by parameter.
		species, landscape := cfg.Species, cfg.Landscape
		cfg.Species, cfg.Landscape = nil, nil
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		cfg.Species = mergeOverrides(species, cfg.Species)
		cfg.Landscape = mergeOverrides(landscape, cfg.Landscape)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()
	return cfg, nil
}

// mergeOverrides layers over on top of base, key by key within each table.
func mergeOverrides(base, over map[string]map[string]float64) map[string]map[string]float64 {
	if len(base) == 0 && len(over) == 0 {
		return base
	}
	out := make(map[string]map[string]float64, len(base)+len(over))
	for name, params := range base {
		out[name] = maps.Clone(params)
	}
	for name, params := range over {
		if out[name] == nil {
			out[name] = make(map[string]float64, len(params))
		}
		maps.Copy(out[name], params)
	}
	return out
}

func (c *Config) applyEnv() error {
	if err := env.Parse(&c.Run); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if err := env.Parse(&c.Telemetry); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Run.Years < 0 {
		return fmt.Errorf("run.years must not be negative, got %d", c.Run.Years)
	}
	for i, intro := range c.Introductions {
		if intro.Year < 0 {
			return fmt.Errorf("introductions[%d].year must not be negative, got %d", i, intro.Year)
		}
	}
	if c.Bookmarks.CrashDrop < 0 || c.Bookmarks.CrashDrop > 1 {
		return fmt.Errorf("bookmarks.crash_drop must be in [0, 1], got %v", c.Bookmarks.CrashDrop)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config. Load calls
// it; call it again after editing Population or Introductions in code.
func (c *Config) ComputeDerived() {
	c.Derived.InitialCount = CountOrganisms(c.Population)

	years := make([]int, 0, len(c.Introductions))
	for _, intro := range c.Introductions {
		years = append(years, intro.Year)
	}
	slices.Sort(years)
	c.Derived.IntroductionYears = slices.Compact(years)
}

// CountOrganisms returns the number of organisms the placements describe.
func CountOrganisms(placements []island.Placement) int {
	n := 0
	for _, p := range placements {
		for _, sp := range p.Pop {
			n += max(sp.Count, 1)
		}
	}
	return n
}

// IntroductionsAt returns the placements due once year cycles have completed.
func (c *Config) IntroductionsAt(year int) []island.Placement {
	if _, ok := slices.BinarySearch(c.Derived.IntroductionYears, year); !ok {
		return nil
	}
	var out []island.Placement
	for _, intro := range c.Introductions {
		if intro.Year == year {
			out = append(out, intro.Population...)
		}
	}
	return out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
