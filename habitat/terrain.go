// Package habitat implements the grid square: terrain, fodder and the
// per-cell phases of the annual cycle.
package habitat

import (
	"maps"
	"math"
	"slices"

	"github.com/pthm-cable/island/fauna"
)

// Terrain is the landscape type of a cell.
type Terrain uint8

const (
	Ocean Terrain = iota
	Mountain
	Desert
	Savannah
	Jungle

	numTerrains = 5
)

// AllTerrains lists every terrain in code order.
var AllTerrains = []Terrain{Ocean, Mountain, Desert, Savannah, Jungle}

var terrainCodes = [numTerrains]rune{'O', 'M', 'D', 'S', 'J'}

var terrainNames = [numTerrains]string{"Ocean", "Mountain", "Desert", "Savannah", "Jungle"}

// Code returns the single-character map code of the terrain.
func (t Terrain) Code() rune {
	return terrainCodes[t]
}

func (t Terrain) String() string {
	if int(t) >= numTerrains {
		return "Unknown"
	}
	return terrainNames[t]
}

// Habitable reports whether organisms may live on the terrain.
func (t Terrain) Habitable() bool {
	return t == Desert || t == Savannah || t == Jungle
}

// ParseTerrain resolves a map code.
func ParseTerrain(code rune) (Terrain, error) {
	for i, c := range terrainCodes {
		if c == code {
			return Terrain(i), nil
		}
	}
	return 0, &UnknownTerrainCodeError{Code: code}
}

// TerrainParams holds the fodder constants of a terrain.
type TerrainParams struct {
	FMax  float64 `yaml:"f_max" json:"f_max"`
	Alpha float64 `yaml:"alpha" json:"alpha"` // savannah regrowth fraction
}

// TerrainParamNames lists the recognised terrain parameter keys.
var TerrainParamNames = []string{"f_max", "alpha"}

func (p *TerrainParams) field(name string) *float64 {
	switch name {
	case "f_max":
		return &p.FMax
	case "alpha":
		return &p.Alpha
	}
	return nil
}

// DefaultTerrainParams returns the defaults for a terrain. Only jungle and
// savannah produce fodder.
func DefaultTerrainParams(t Terrain) TerrainParams {
	switch t {
	case Jungle:
		return TerrainParams{FMax: 800}
	case Savannah:
		return TerrainParams{FMax: 300, Alpha: 0.3}
	default:
		return TerrainParams{}
	}
}

// regenerate maps each terrain to its yearly fodder rule.
var regenerate = [numTerrains]func(fodder float64, p TerrainParams) float64{
	Ocean:    noFodder,
	Mountain: noFodder,
	Desert:   noFodder,
	Savannah: func(fodder float64, p TerrainParams) float64 {
		return fodder + p.Alpha*(p.FMax-fodder)
	},
	Jungle: func(_ float64, p TerrainParams) float64 {
		return p.FMax
	},
}

func noFodder(float64, TerrainParams) float64 { return 0 }

// TerrainTable holds the live parameters of every terrain. Cells read it at
// each regeneration, so an update applies from the next year on.
type TerrainTable struct {
	params [numTerrains]TerrainParams
}

// NewTerrainTable returns a table with the default parameters.
func NewTerrainTable() *TerrainTable {
	tt := &TerrainTable{}
	tt.Reset()
	return tt
}

// Params returns the current parameters of a terrain.
func (tt *TerrainTable) Params(t Terrain) TerrainParams {
	return tt.params[t]
}

// Reset restores every terrain to its defaults.
func (tt *TerrainTable) Reset() {
	for _, t := range AllTerrains {
		tt.params[t] = DefaultTerrainParams(t)
	}
}

// Update validates every key and applies them only if all pass.
func (tt *TerrainTable) Update(t Terrain, values map[string]float64) error {
	next := tt.params[t]
	for _, name := range slices.Sorted(maps.Keys(values)) {
		v := values[name]
		f := next.field(name)
		if f == nil {
			return &fauna.UnknownParameterError{
				Owner:      t.String(),
				Name:       name,
				Suggestion: fauna.Suggest(name, TerrainParamNames),
			}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &fauna.OutOfRangeError{Owner: t.String(), Name: name, Value: v, Reason: "must be finite and not negative"}
		}
		if name == "alpha" && v > 1 {
			return &fauna.OutOfRangeError{Owner: t.String(), Name: name, Value: v, Reason: "must be at most 1"}
		}
		*f = v
	}
	tt.params[t] = next
	return nil
}
