package island

import (
	"log/slog"

	"github.com/pthm-cable/island/fauna"
)

// Phase names passed to the phase hook, in cycle order.
const (
	PhaseRegenerate     = "regenerate"
	PhaseFeedHerbivores = "feed_herbivores"
	PhaseFeedCarnivores = "feed_carnivores"
	PhaseMate           = "mate"
	PhaseMigrate        = "migrate"
	PhaseAge            = "age"
	PhaseLoseWeight     = "lose_weight"
	PhaseCull           = "cull"
)

// Phases lists the phase names in cycle order.
var Phases = []string{
	PhaseRegenerate, PhaseFeedHerbivores, PhaseFeedCarnivores, PhaseMate,
	PhaseMigrate, PhaseAge, PhaseLoseWeight, PhaseCull,
}

// CycleReport summarises the events of one annual cycle.
type CycleReport struct {
	Year        int
	FodderEaten float64
	Kills       int
	Births      fauna.Tally
	Migrations  fauna.Tally
	Deaths      fauna.Tally
}

// LogValue implements slog.LogValuer.
func (r CycleReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("year", r.Year),
		slog.Float64("fodder_eaten", r.FodderEaten),
		slog.Int("kills", r.Kills),
		slog.Int("herbivore_births", r.Births[fauna.Herbivore]),
		slog.Int("carnivore_births", r.Births[fauna.Carnivore]),
		slog.Int("herbivore_deaths", r.Deaths[fauna.Herbivore]),
		slog.Int("carnivore_deaths", r.Deaths[fauna.Carnivore]),
		slog.Int("migrations", r.Migrations.Total()),
	)
}

// RunCycle advances the island by one year. Each phase is a full raster
// pass over the habitable cells before the next phase starts:
//
//	regenerate fodder, feed herbivores, feed carnivores, mate,
//	migrate, age, lose weight, cull.
func (isl *Island) RunCycle() CycleReport {
	rep := CycleReport{Year: isl.year + 1}

	isl.phase(PhaseRegenerate)
	for _, s := range isl.sites {
		s.cell.RegenerateFodder()
	}
	isl.phase(PhaseFeedHerbivores)
	for _, s := range isl.sites {
		rep.FodderEaten += s.cell.FeedHerbivores(isl.rng)
	}
	isl.phase(PhaseFeedCarnivores)
	for _, s := range isl.sites {
		rep.Kills += s.cell.FeedCarnivores(isl.rng)
	}
	isl.phase(PhaseMate)
	for _, s := range isl.sites {
		rep.Births.Merge(s.cell.Mate(isl.rng))
	}
	isl.phase(PhaseMigrate)
	for _, s := range isl.sites {
		rep.Migrations.Merge(s.cell.Emigrate(s.neighbors, isl.rng))
	}
	isl.phase(PhaseAge)
	for _, s := range isl.sites {
		s.cell.Age()
	}
	isl.phase(PhaseLoseWeight)
	for _, s := range isl.sites {
		s.cell.LoseWeight()
	}
	isl.phase(PhaseCull)
	for _, s := range isl.sites {
		rep.Deaths.Merge(s.cell.Cull(isl.rng))
	}

	isl.year++
	return rep
}

func (isl *Island) phase(name string) {
	if isl.hook != nil {
		isl.hook(name)
	}
}
