package habitat

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/pthm-cable/island/fauna"
	"github.com/pthm-cable/island/random"
)

// Cell is one grid square. It owns the organisms standing on it, one list
// per species. List order carries no meaning outside a single phase.
type Cell struct {
	terrain Terrain
	table   *TerrainTable
	fodder  float64
	pop     [fauna.NumSpecies][]*fauna.Organism
}

// New creates a cell of the given terrain reading its parameters from
// table. Fodder-producing cells start full.
func New(t Terrain, table *TerrainTable) *Cell {
	if table == nil {
		table = NewTerrainTable()
	}
	c := &Cell{terrain: t, table: table}
	if t == Jungle || t == Savannah {
		c.fodder = table.Params(t).FMax
	}
	return c
}

func (c *Cell) Terrain() Terrain { return c.terrain }
func (c *Cell) Fodder() float64  { return c.fodder }

// Habitable reports whether organisms may live in the cell.
func (c *Cell) Habitable() bool { return c.terrain.Habitable() }

// SetFodder overrides the current fodder, e.g. when restoring a snapshot.
func (c *Cell) SetFodder(f float64) {
	c.fodder = math.Max(0, f)
}

// Count returns the number of organisms of species s in the cell.
func (c *Cell) Count(s fauna.Species) int { return len(c.pop[s]) }

// Total returns the number of organisms of all species in the cell.
func (c *Cell) Total() int {
	n := 0
	for _, list := range c.pop {
		n += len(list)
	}
	return n
}

// Organisms returns a copy of the species list.
func (c *Cell) Organisms(s fauna.Species) []*fauna.Organism {
	return slices.Clone(c.pop[s])
}

// HerbivoreWeight returns the summed weight of every herbivore in the cell.
func (c *Cell) HerbivoreWeight() float64 {
	var w float64
	for _, h := range c.pop[fauna.Herbivore] {
		w += h.Weight()
	}
	return w
}

// AddOrganisms creates and inserts the organisms described by specs. Every
// spec is checked before anything is inserted.
func (c *Cell) AddOrganisms(reg *fauna.Registry, specs []fauna.Spec, rng *random.Source) error {
	if !c.Habitable() {
		return &UninhabitableTerrainError{Terrain: c.terrain}
	}
	for _, sp := range specs {
		if _, err := sp.Validate(); err != nil {
			return err
		}
	}
	var created []*fauna.Organism
	for _, sp := range specs {
		orgs, err := reg.Spawn(sp, rng)
		if err != nil {
			return err
		}
		created = append(created, orgs...)
	}
	for _, o := range created {
		c.pop[o.Species()] = append(c.pop[o.Species()], o)
	}
	return nil
}

// Insert places an existing organism in the cell.
func (c *Cell) Insert(o *fauna.Organism) error {
	if !c.Habitable() {
		return &UninhabitableTerrainError{Terrain: c.terrain}
	}
	c.pop[o.Species()] = append(c.pop[o.Species()], o)
	return nil
}

// Remove takes an organism out of the cell.
func (c *Cell) Remove(o *fauna.Organism) error {
	s := o.Species()
	i := slices.Index(c.pop[s], o)
	if i < 0 {
		return fmt.Errorf("remove %s (age %d, weight %.2f): %w", s, o.Age(), o.Weight(), ErrOrganismNotPresent)
	}
	c.pop[s] = slices.Delete(c.pop[s], i, i+1)
	return nil
}

// RegenerateFodder applies the terrain's yearly fodder rule.
func (c *Cell) RegenerateFodder() {
	c.fodder = regenerate[c.terrain](c.fodder, c.table.Params(c.terrain))
}

// FeedHerbivores lets herbivores graze, fittest first. Each eats its
// appetite or whatever is left; once the fodder is gone nobody else eats.
// It returns the amount of fodder eaten.
func (c *Cell) FeedHerbivores(rng *random.Source) float64 {
	herbs := c.pop[fauna.Herbivore]
	sortByFitness(herbs, true)

	var eaten float64
	for _, h := range herbs {
		if c.fodder <= 0 {
			break
		}
		amount := math.Min(h.Params().F, c.fodder)
		h.Eat(amount, rng)
		c.fodder -= amount
		eaten += amount
	}
	return eaten
}

// FeedCarnivores lets carnivores hunt, fittest first, each working through
// the remaining herbivores from the weakest up until it has eaten at least
// its appetite. It returns the number of kills.
func (c *Cell) FeedCarnivores(rng *random.Source) int {
	herbs := c.pop[fauna.Herbivore]
	if len(herbs) == 0 {
		return 0
	}
	carns := c.pop[fauna.Carnivore]
	sortByFitness(carns, true)
	sortByFitness(herbs, false)

	kills := 0
	for _, carn := range carns {
		if len(herbs) == 0 {
			break
		}
		appetite := carn.Params().F
		var consumed float64
		kept := make([]*fauna.Organism, 0, len(herbs))
		for i, h := range herbs {
			if consumed >= appetite {
				kept = append(kept, herbs[i:]...)
				break
			}
			if carn.Kills(h.Fitness(), rng) {
				carn.Eat(h.Weight(), rng)
				consumed += h.Weight()
				kills++
				continue
			}
			kept = append(kept, h)
		}
		herbs = kept
	}
	c.pop[fauna.Herbivore] = herbs
	return kills
}

// Mate runs one birth decision per organism. Every decision sees the list
// size at the start of the phase; newborns join after all decisions and
// sit out this year's migration.
func (c *Cell) Mate(rng *random.Source) fauna.Tally {
	var births fauna.Tally
	for _, s := range fauna.AllSpecies {
		list := c.pop[s]
		n := len(list)
		var children []*fauna.Organism
		for _, o := range list {
			if child := o.GiveBirth(n, rng); child != nil {
				child.MarkMigrated()
				children = append(children, child)
			}
		}
		c.pop[s] = append(list, children...)
		births.Add(s, len(children))
	}
	return births
}

// Emigrate gives every organism that has not moved this year a chance to
// move to one of neighbors. It returns the number of organisms that left.
func (c *Cell) Emigrate(neighbors []*Cell, rng *random.Source) fauna.Tally {
	var moved fauna.Tally
	dests := make([]fauna.Destination, len(neighbors))
	for i, n := range neighbors {
		dests[i] = n
	}
	for _, s := range fauna.AllSpecies {
		list := c.pop[s]
		stay := make([]*fauna.Organism, 0, len(list))
		for _, o := range list {
			if o.Migrated() || !o.WantsToMove(rng) {
				stay = append(stay, o)
				continue
			}
			idx, ok := rng.WeightedIndex(o.MoveWeights(dests))
			if !ok {
				stay = append(stay, o)
				continue
			}
			o.MarkMigrated()
			dest := neighbors[idx]
			dest.pop[s] = append(dest.pop[s], o)
			moved.Add(s, 1)
		}
		c.pop[s] = stay
	}
	return moved
}

// RelativeAbundance returns the food available to o's species in the cell
// per prospective same-species occupant, in units of appetite.
func (c *Cell) RelativeAbundance(o *fauna.Organism) float64 {
	s := o.Species()
	var food float64
	if s == fauna.Herbivore {
		food = c.fodder
	} else {
		food = c.HerbivoreWeight()
	}
	denom := float64(len(c.pop[s])+1) * o.Params().F
	if food == 0 || denom == 0 {
		return 0
	}
	return food / denom
}

// Age advances every organism by one year.
func (c *Cell) Age() {
	for _, list := range c.pop {
		for _, o := range list {
			o.AddAge()
		}
	}
}

// LoseWeight applies yearly weight loss to every organism.
func (c *Cell) LoseWeight() {
	for _, list := range c.pop {
		for _, o := range list {
			o.LoseWeight()
		}
	}
}

// Cull draws a death decision for every organism, then removes the dead.
// Survivors have their migration flag cleared for the next year.
func (c *Cell) Cull(rng *random.Source) fauna.Tally {
	var deaths fauna.Tally
	for _, s := range fauna.AllSpecies {
		list := c.pop[s]
		dead := make([]bool, len(list))
		for i, o := range list {
			dead[i] = o.Dies(rng)
		}
		alive := make([]*fauna.Organism, 0, len(list))
		for i, o := range list {
			if dead[i] {
				deaths.Add(s, 1)
				continue
			}
			o.ResetMigration()
			alive = append(alive, o)
		}
		c.pop[s] = alive
	}
	return deaths
}

func sortByFitness(list []*fauna.Organism, descending bool) {
	slices.SortStableFunc(list, func(a, b *fauna.Organism) int {
		if descending {
			return cmp.Compare(b.Fitness(), a.Fitness())
		}
		return cmp.Compare(a.Fitness(), b.Fitness())
	})
}
