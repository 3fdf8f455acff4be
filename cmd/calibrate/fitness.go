package main

import (
	"log/slog"
	"maps"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/island/config"
	"github.com/pthm-cable/island/sim"
	"github.com/pthm-cable/island/telemetry"
)

// Targets are the mean populations a calibrated island should settle at.
type Targets struct {
	Herbivores float64
	Carnivores float64
}

// FitnessEvaluator runs simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	years      int
	seeds      []int64
	baseConfig *config.Config
	targets    Targets

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, years int, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		years:      years,
		seeds:      seeds,
		baseConfig: baseCfg,
		targets:    targets,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single simulation run.
type runResult struct {
	survivalYears int // years before a present species died out (or years if none did)
	yearStats     []telemetry.YearStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative survival years scaled by up to 20% for quality.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	quality := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	// Each simulation has its own parameter registry, so seeds run in parallel.
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(x, s)
			quality[idx] = fe.computeQuality(result.yearStats)
			fitness[idx] = -float64(result.survivalYears) * (1.0 + 0.2*quality[idx])
		}(i, seed)
	}
	wg.Wait()

	n := float64(len(fe.seeds))
	fe.mu.Lock()
	fe.lastQuality = floats.Sum(quality) / n
	fe.mu.Unlock()

	return floats.Sum(fitness) / n
}

// runSimulation runs until a species that has been present dies out, or
// for the full number of years.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	result := &runResult{survivalYears: fe.years}
	s, err := sim.New(sim.Options{
		Config: cfg,
		Seed:   seed,
		Logger: slog.New(slog.DiscardHandler),
		StatsCallback: func(stats telemetry.YearStats) {
			result.yearStats = append(result.yearStats, stats)
		},
	})
	if err != nil {
		slog.Error("failed to create simulation", "seed", seed, "error", err)
		result.survivalYears = 0
		return result
	}
	defer s.Close()

	seenCarnivores := false
	for s.Year() < fe.years {
		if err := s.Simulate(1); err != nil {
			slog.Error("simulation failed", "seed", seed, "error", err)
			result.survivalYears = s.Year()
			return result
		}
		counts := s.NumAnimalsPerSpecies()
		seenCarnivores = seenCarnivores || counts["Carnivore"] > 0
		if counts["Herbivore"] == 0 || (seenCarnivores && counts["Carnivore"] == 0) {
			result.survivalYears = s.Year()
			return result
		}
	}
	return result
}

// copyConfig creates a copy of the base config that evaluations can
// modify, with file output disabled.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Species = make(map[string]map[string]float64, len(fe.baseConfig.Species))
	for name, values := range fe.baseConfig.Species {
		cfg.Species[name] = maps.Clone(values)
	}
	cfg.Telemetry.OutputDir = ""
	cfg.Snapshot.Dir = ""
	return &cfg
}

// Quality component weights.
const (
	qualityWeightPopulation = 0.6
	qualityWeightStability  = 0.4

	qualityMinPop = 3 // exclude years where either species is below this
)

// computeQuality scores how close the coexistence years come to the target
// populations and how steady they are, in [0, 1].
func (fe *FitnessEvaluator) computeQuality(years []telemetry.YearStats) float64 {
	herbs := make([]float64, 0, len(years))
	carns := make([]float64, 0, len(years))
	for _, y := range years {
		if y.Herbivores < qualityMinPop || y.Carnivores < qualityMinPop {
			continue
		}
		herbs = append(herbs, float64(y.Herbivores))
		carns = append(carns, float64(y.Carnivores))
	}
	if len(herbs) < 2 {
		return 0
	}

	meanHerb, stdHerb := stat.PopMeanStdDev(herbs, nil)
	meanCarn, stdCarn := stat.PopMeanStdDev(carns, nil)

	popScore := (closeness(meanHerb, fe.targets.Herbivores) + closeness(meanCarn, fe.targets.Carnivores)) / 2
	cvHerb, cvCarn := stdHerb/meanHerb, stdCarn/meanCarn
	stabilityScore := math.Exp(-(cvHerb*cvHerb + cvCarn*cvCarn))

	return clamp01(qualityWeightPopulation*popScore + qualityWeightStability*stabilityScore)
}

// closeness is 1 when got equals want and falls off with the log ratio.
func closeness(got, want float64) float64 {
	if got <= 0 || want <= 0 {
		return 0
	}
	logErr := math.Log(got / want)
	return math.Exp(-logErr * logErr)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(max(x, 0), 1)
}
