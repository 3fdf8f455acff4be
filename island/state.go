package island

import (
	"fmt"

	"github.com/pthm-cable/island/fauna"
	"github.com/pthm-cable/island/habitat"
	"github.com/pthm-cable/island/random"
)

// State is the complete, serialisable state of an island between cycles.
type State struct {
	Geography string                           `json:"geography" yaml:"geography"`
	Year      int                              `json:"year" yaml:"year"`
	Seed      int64                            `json:"seed" yaml:"seed"`
	RNG       []byte                           `json:"rng,omitempty" yaml:"rng,omitempty"`
	Species   map[string]fauna.Params          `json:"species" yaml:"species"`
	Terrain   map[string]habitat.TerrainParams `json:"terrain" yaml:"terrain"`
	Cells     []CellState                      `json:"cells" yaml:"cells"`
}

// CellState holds the contents of one occupied or fodder-bearing cell.
type CellState struct {
	Row       int             `json:"row" yaml:"row"`
	Col       int             `json:"col" yaml:"col"`
	Fodder    float64         `json:"fodder" yaml:"fodder"`
	Organisms []OrganismState `json:"organisms,omitempty" yaml:"organisms,omitempty"`
}

// OrganismState holds one organism.
type OrganismState struct {
	Species fauna.Species `json:"species" yaml:"species"`
	Age     int           `json:"age" yaml:"age"`
	Weight  float64       `json:"weight" yaml:"weight"`
}

// Snapshot captures the island, including the position of its random
// stream.
func (isl *Island) Snapshot() (*State, error) {
	rngState, err := isl.rng.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("snapshot random state: %w", err)
	}
	st := &State{
		Geography: isl.geography,
		Year:      isl.year,
		Seed:      isl.rng.Seed(),
		RNG:       rngState,
		Species:   make(map[string]fauna.Params, len(fauna.AllSpecies)),
		Terrain:   make(map[string]habitat.TerrainParams, len(habitat.AllTerrains)),
	}
	for _, sp := range fauna.AllSpecies {
		st.Species[sp.String()] = isl.reg.Params(sp)
	}
	for _, t := range habitat.AllTerrains {
		st.Terrain[string(t.Code())] = isl.table.Params(t)
	}
	for _, s := range isl.sites {
		cs := CellState{Row: s.row, Col: s.col, Fodder: s.cell.Fodder()}
		for _, sp := range fauna.AllSpecies {
			for _, o := range s.cell.Organisms(sp) {
				cs.Organisms = append(cs.Organisms, OrganismState{Species: sp, Age: o.Age(), Weight: o.Weight()})
			}
		}
		st.Cells = append(st.Cells, cs)
	}
	return st, nil
}

// Restore rebuilds an island from a snapshot. Parameters in the snapshot
// are written into the registry and terrain table the options supply.
func Restore(st *State, opts ...Option) (*Island, error) {
	rng := random.New(st.Seed)
	if len(st.RNG) > 0 {
		if err := rng.UnmarshalBinary(st.RNG); err != nil {
			return nil, err
		}
	}
	isl, err := New(st.Geography, append(opts, WithRandom(rng))...)
	if err != nil {
		return nil, fmt.Errorf("restore geography: %w", err)
	}
	for name, p := range st.Species {
		if err := isl.UpdateSpeciesParams(name, p.AsMap()); err != nil {
			return nil, fmt.Errorf("restore species: %w", err)
		}
	}
	for code, p := range st.Terrain {
		values := map[string]float64{"f_max": p.FMax, "alpha": p.Alpha}
		if err := isl.UpdateTerrainParams(code, values); err != nil {
			return nil, fmt.Errorf("restore terrain: %w", err)
		}
	}
	for _, cs := range st.Cells {
		cell := isl.Cell(cs.Row, cs.Col)
		if cell == nil {
			return nil, &OutOfBoundsError{Row: cs.Row, Col: cs.Col, Rows: isl.rows, Cols: isl.cols}
		}
		cell.SetFodder(cs.Fodder)
		for _, ost := range cs.Organisms {
			o, err := isl.reg.New(ost.Species, ost.Age, ost.Weight)
			if err != nil {
				return nil, fmt.Errorf("restore cell (%d, %d): %w", cs.Row, cs.Col, err)
			}
			if err := cell.Insert(o); err != nil {
				return nil, fmt.Errorf("restore cell (%d, %d): %w", cs.Row, cs.Col, err)
			}
		}
	}
	isl.year = st.Year
	return isl, nil
}
