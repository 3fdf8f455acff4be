package fauna

import (
	"math"

	"github.com/pthm-cable/island/random"
)

// Destination is a candidate cell for migration, as seen by an organism.
type Destination interface {
	Habitable() bool
	RelativeAbundance(o *Organism) float64
}

// Organism is one animal. Fitness is derived from age and weight on every
// read and never cached.
type Organism struct {
	species  Species
	params   *Params
	age      int
	weight   float64
	sick     bool
	migrated bool
}

// New creates an organism of species s with the given age and weight.
func (r *Registry) New(s Species, age int, weight float64) (*Organism, error) {
	if age < 0 {
		return nil, &OutOfRangeError{Owner: s.String(), Name: "age", Value: float64(age), Reason: "must not be negative"}
	}
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return nil, &OutOfRangeError{Owner: s.String(), Name: "weight", Value: weight, Reason: "must be finite and not negative"}
	}
	return &Organism{species: s, params: r.params[s], age: age, weight: weight}, nil
}

// BirthWeight draws a birth weight for species s. Draws below zero are
// clamped to zero.
func (r *Registry) BirthWeight(s Species, rng *random.Source) float64 {
	p := r.params[s]
	return math.Max(0, rng.Normal(p.WBirth, p.SigmaBirth))
}

func (o *Organism) Species() Species { return o.species }
func (o *Organism) Age() int         { return o.age }
func (o *Organism) Weight() float64  { return o.weight }

// Sick reports whether the organism fell sick at its last meal.
func (o *Organism) Sick() bool { return o.sick }

// Migrated reports whether the organism has already moved this year.
func (o *Organism) Migrated() bool { return o.migrated }

// MarkMigrated records that the organism has used its move for the year.
func (o *Organism) MarkMigrated() { o.migrated = true }

// ResetMigration clears the yearly move flag.
func (o *Organism) ResetMigration() { o.migrated = false }

// Params returns the live parameter record of the organism's species.
func (o *Organism) Params() *Params { return o.params }

// Fitness returns the [0,1] fitness of the organism. It is exactly zero
// when the weight is zero.
func (o *Organism) Fitness() float64 {
	if o.weight == 0 {
		return 0
	}
	p := o.params
	return sigmoid(float64(o.age), p.AHalf, p.PhiAge, 1) *
		sigmoid(o.weight, p.WHalf, p.PhiWeight, -1)
}

func sigmoid(x, x0, k, sign float64) float64 {
	return 1 / (1 + math.Exp(sign*k*(x-x0)))
}

// AddAge advances the organism by one year.
func (o *Organism) AddAge() {
	o.age++
}

// WantsToMove decides whether the organism attempts to migrate this year.
func (o *Organism) WantsToMove(rng *random.Source) bool {
	return rng.Bernoulli(o.Fitness() * o.params.Mu)
}

// MoveWeights returns the unnormalised propensity to move to each
// destination. Uninhabitable destinations get zero.
func (o *Organism) MoveWeights(dests []Destination) []float64 {
	weights := make([]float64, len(dests))
	for i, d := range dests {
		if !d.Habitable() {
			continue
		}
		weights[i] = math.Exp(o.params.Lambda * d.RelativeAbundance(o))
	}
	return weights
}

// Dies decides whether the organism dies this year. Zero fitness is
// certain death.
func (o *Organism) Dies(rng *random.Source) bool {
	phi := o.Fitness()
	if phi == 0 {
		return true
	}
	return rng.Bernoulli(o.params.Omega * (1 - phi))
}

// GiveBirth decides whether the organism gives birth given n same-species
// organisms in its cell, and returns the child if it does. The parent pays
// xi times the child's weight.
func (o *Organism) GiveBirth(n int, rng *random.Source) *Organism {
	p := o.params
	if n < 2 || o.weight < p.Zeta*(p.WBirth+p.SigmaBirth) {
		return nil
	}
	prob := math.Min(1, p.Gamma*o.Fitness()*float64(n-1))
	if !rng.Bernoulli(prob) {
		return nil
	}
	childWeight := rng.Normal(p.WBirth, p.SigmaBirth)
	if childWeight <= 0 || p.Xi*childWeight > o.weight {
		return nil
	}
	o.weight -= p.Xi * childWeight
	return &Organism{species: o.species, params: o.params, weight: childWeight}
}

// Eat adds the weight gained from amount of food. A sickness outcome is
// drawn at every meal; a sick organism converts food at loss_rate.
func (o *Organism) Eat(amount float64, rng *random.Source) {
	p := o.params
	o.sick = rng.Bernoulli(p.PSick)
	gain := p.Beta * amount
	if o.sick {
		gain *= p.LossRate
	}
	o.weight += gain
}

// LoseWeight applies the yearly metabolic weight loss.
func (o *Organism) LoseWeight() {
	o.weight -= o.params.Eta * o.weight
}

// KillProbability returns the chance that the organism kills prey of the
// given fitness. Only carnivores hunt.
func (o *Organism) KillProbability(preyFitness float64) float64 {
	if o.species != Carnivore {
		return 0
	}
	gap := o.Fitness() - preyFitness
	if gap <= 0 {
		return 0
	}
	if gap >= o.params.DeltaPhiMax {
		return 1
	}
	return gap / o.params.DeltaPhiMax
}

// Kills decides whether the organism kills prey of the given fitness.
func (o *Organism) Kills(preyFitness float64, rng *random.Source) bool {
	return rng.Bernoulli(o.KillProbability(preyFitness))
}
