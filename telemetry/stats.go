package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// YearStats holds aggregated statistics for one simulated year.
type YearStats struct {
	Year int `csv:"year"`

	// Population counts at year end
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`

	// Events during the year
	HerbivoreBirths int `csv:"herbivore_births"`
	CarnivoreBirths int `csv:"carnivore_births"`
	HerbivoreDeaths int `csv:"herbivore_deaths"`
	CarnivoreDeaths int `csv:"carnivore_deaths"`
	Kills           int `csv:"kills"`
	Migrations      int `csv:"migrations"`

	// Fodder
	FodderEaten float64 `csv:"fodder_eaten"`
	TotalFodder float64 `csv:"total_fodder"`

	// Weight distribution (sampled at year end)
	HerbivoreWeightMean float64 `csv:"herbivore_weight_mean"`
	HerbivoreWeightStd  float64 `csv:"herbivore_weight_std"`
	HerbivoreWeightP10  float64 `csv:"herbivore_weight_p10"`
	HerbivoreWeightP50  float64 `csv:"herbivore_weight_p50"`
	HerbivoreWeightP90  float64 `csv:"herbivore_weight_p90"`
	CarnivoreWeightMean float64 `csv:"carnivore_weight_mean"`
	CarnivoreWeightStd  float64 `csv:"carnivore_weight_std"`
	CarnivoreWeightP10  float64 `csv:"carnivore_weight_p10"`
	CarnivoreWeightP50  float64 `csv:"carnivore_weight_p50"`
	CarnivoreWeightP90  float64 `csv:"carnivore_weight_p90"`

	HerbivoreAgeMean     float64 `csv:"herbivore_age_mean"`
	CarnivoreAgeMean     float64 `csv:"carnivore_age_mean"`
	HerbivoreFitnessMean float64 `csv:"herbivore_fitness_mean"`
	CarnivoreFitnessMean float64 `csv:"carnivore_fitness_mean"`
}

// Dist summarises a sample of values.
type Dist struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation between ranks. p should be in [0, 1]. Returns 0 if slice
// is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}
	idx := p * float64(n-1)
	lo := int(idx)
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// ComputeDist calculates mean, population standard deviation and
// percentiles of values.
func ComputeDist(values []float64) Dist {
	if len(values) == 0 {
		return Dist{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return Dist{
		Mean: mean,
		Std:  std,
		P10:  Percentile(sorted, 0.10),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
	}
}

// Mean returns the arithmetic mean of values, or 0 when empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s YearStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", s.Year),
		slog.Int("herbivores", s.Herbivores),
		slog.Int("carnivores", s.Carnivores),
		slog.Int("herbivore_births", s.HerbivoreBirths),
		slog.Int("carnivore_births", s.CarnivoreBirths),
		slog.Int("herbivore_deaths", s.HerbivoreDeaths),
		slog.Int("carnivore_deaths", s.CarnivoreDeaths),
		slog.Int("kills", s.Kills),
		slog.Int("migrations", s.Migrations),
		slog.Float64("fodder_eaten", s.FodderEaten),
		slog.Float64("total_fodder", s.TotalFodder),
		slog.Float64("herbivore_weight_mean", s.HerbivoreWeightMean),
		slog.Float64("carnivore_weight_mean", s.CarnivoreWeightMean),
		slog.Float64("herbivore_fitness_mean", s.HerbivoreFitnessMean),
		slog.Float64("carnivore_fitness_mean", s.CarnivoreFitnessMean),
	)
}

// LogStats logs the year stats using slog.
func (s YearStats) LogStats() {
	slog.Info("stats", "year_stats", s)
}
