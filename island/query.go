package island

import (
	"github.com/pthm-cable/island/fauna"
)

// CellCount is the per-species head count of one habitable cell.
type CellCount struct {
	Row        int `csv:"row" json:"row"`
	Col        int `csv:"col" json:"col"`
	Herbivores int `csv:"herbivores" json:"herbivores"`
	Carnivores int `csv:"carnivores" json:"carnivores"`
}

// Population returns the number of organisms on the island.
func (isl *Island) Population() int {
	return isl.Counts().Total()
}

// Counts returns the number of organisms per species.
func (isl *Island) Counts() fauna.Tally {
	var t fauna.Tally
	for _, s := range isl.sites {
		for _, sp := range fauna.AllSpecies {
			t.Add(sp, s.cell.Count(sp))
		}
	}
	return t
}

// PopulationBySpecies returns the number of organisms keyed by species.
func (isl *Island) PopulationBySpecies() map[fauna.Species]int {
	t := isl.Counts()
	out := make(map[fauna.Species]int, len(fauna.AllSpecies))
	for _, sp := range fauna.AllSpecies {
		out[sp] = t[sp]
	}
	return out
}

// Distribution returns the head counts of every habitable cell in raster
// order.
func (isl *Island) Distribution() []CellCount {
	out := make([]CellCount, 0, len(isl.sites))
	for _, s := range isl.sites {
		out = append(out, CellCount{
			Row:        s.row,
			Col:        s.col,
			Herbivores: s.cell.Count(fauna.Herbivore),
			Carnivores: s.cell.Count(fauna.Carnivore),
		})
	}
	return out
}

// Organisms returns every organism of a species in raster order. The
// slice is a copy; the organisms are live.
func (isl *Island) Organisms(sp fauna.Species) []*fauna.Organism {
	var out []*fauna.Organism
	for _, s := range isl.sites {
		out = append(out, s.cell.Organisms(sp)...)
	}
	return out
}

// TotalFodder returns the fodder standing on the island.
func (isl *Island) TotalFodder() float64 {
	var f float64
	for _, s := range isl.sites {
		f += s.cell.Fodder()
	}
	return f
}
