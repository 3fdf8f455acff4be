// Package telemetry provides population statistics, bookmarking, CSV output
// and snapshots.
package telemetry

import (
	"github.com/pthm-cable/island/fauna"
	"github.com/pthm-cable/island/island"
)

// Collector accumulates cycle events until they are flushed into a
// YearStats.
type Collector struct {
	births      fauna.Tally
	deaths      fauna.Tally
	migrations  fauna.Tally
	kills       int
	fodderEaten float64
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record adds the events of one cycle.
func (c *Collector) Record(rep island.CycleReport) {
	c.births.Merge(rep.Births)
	c.deaths.Merge(rep.Deaths)
	c.migrations.Merge(rep.Migrations)
	c.kills += rep.Kills
	c.fodderEaten += rep.FodderEaten
}

// Flush samples the island, produces a YearStats and resets the counters.
func (c *Collector) Flush(isl *island.Island) YearStats {
	herbs := Sample(isl.Organisms(fauna.Herbivore))
	carns := Sample(isl.Organisms(fauna.Carnivore))
	hw := ComputeDist(herbs.Weights)
	cw := ComputeDist(carns.Weights)

	stats := YearStats{
		Year:       isl.Year(),
		Herbivores: len(herbs.Weights),
		Carnivores: len(carns.Weights),

		HerbivoreBirths: c.births[fauna.Herbivore],
		CarnivoreBirths: c.births[fauna.Carnivore],
		HerbivoreDeaths: c.deaths[fauna.Herbivore],
		CarnivoreDeaths: c.deaths[fauna.Carnivore],
		Kills:           c.kills,
		Migrations:      c.migrations.Total(),

		FodderEaten: c.fodderEaten,
		TotalFodder: isl.TotalFodder(),

		HerbivoreWeightMean: hw.Mean,
		HerbivoreWeightStd:  hw.Std,
		HerbivoreWeightP10:  hw.P10,
		HerbivoreWeightP50:  hw.P50,
		HerbivoreWeightP90:  hw.P90,
		CarnivoreWeightMean: cw.Mean,
		CarnivoreWeightStd:  cw.Std,
		CarnivoreWeightP10:  cw.P10,
		CarnivoreWeightP50:  cw.P50,
		CarnivoreWeightP90:  cw.P90,

		HerbivoreAgeMean:     Mean(herbs.Ages),
		CarnivoreAgeMean:     Mean(carns.Ages),
		HerbivoreFitnessMean: Mean(herbs.Fitness),
		CarnivoreFitnessMean: Mean(carns.Fitness),
	}

	*c = Collector{}
	return stats
}

// Traits holds per-organism values of a population, index-aligned.
type Traits struct {
	Weights []float64
	Ages    []float64
	Fitness []float64
}

// Sample extracts the traits of orgs.
func Sample(orgs []*fauna.Organism) Traits {
	t := Traits{
		Weights: make([]float64, len(orgs)),
		Ages:    make([]float64, len(orgs)),
		Fitness: make([]float64, len(orgs)),
	}
	for i, o := range orgs {
		t.Weights[i] = o.Weight()
		t.Ages[i] = float64(o.Age())
		t.Fitness[i] = o.Fitness()
	}
	return t
}
