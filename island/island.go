// Package island holds the grid of habitat cells and runs the annual cycle
// across it.
package island

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pthm-cable/island/fauna"
	"github.com/pthm-cable/island/habitat"
	"github.com/pthm-cable/island/random"
)

// DefaultSeed seeds the random source when none is given.
const DefaultSeed = 123456

// Island is a rectangular grid of cells with an ocean border.
// It is not safe for concurrent use.
type Island struct {
	geography string
	rows      int
	cols      int
	cells     [][]*habitat.Cell
	sites     []site // habitable cells in raster order

	rng    *random.Source
	reg    *fauna.Registry
	table  *habitat.TerrainTable
	logger *slog.Logger
	hook   func(phase string)
	year   int
}

type site struct {
	row, col  int
	cell      *habitat.Cell
	neighbors []*habitat.Cell
}

// Option configures an Island.
type Option func(*Island)

// WithRandom sets the random source every decision draws from.
func WithRandom(rng *random.Source) Option {
	return func(isl *Island) { isl.rng = rng }
}

// WithSeed creates a fresh random source from seed.
func WithSeed(seed int64) Option {
	return func(isl *Island) { isl.rng = random.New(seed) }
}

// WithRegistry sets the species parameter registry. The default is
// fauna.Default.
func WithRegistry(reg *fauna.Registry) Option {
	return func(isl *Island) { isl.reg = reg }
}

// WithTerrainTable sets the terrain parameter table.
func WithTerrainTable(table *habitat.TerrainTable) Option {
	return func(isl *Island) { isl.table = table }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(isl *Island) { isl.logger = logger }
}

// WithPhaseHook registers fn to be called as each cycle phase starts,
// e.g. for timing.
func WithPhaseHook(fn func(phase string)) Option {
	return func(isl *Island) { isl.hook = fn }
}

// New builds an island from a geography string: newline-separated rows of
// equal length using the codes O, M, D, S and J. Surrounding blank lines
// and indentation are ignored.
func New(geography string, opts ...Option) (*Island, error) {
	isl := &Island{}
	for _, opt := range opts {
		opt(isl)
	}
	if isl.rng == nil {
		isl.rng = random.New(DefaultSeed)
	}
	if isl.reg == nil {
		isl.reg = fauna.Default
	}
	if isl.table == nil {
		isl.table = habitat.NewTerrainTable()
	}
	if isl.logger == nil {
		isl.logger = slog.Default()
	}

	lines := parseLines(geography)
	if len(lines) == 0 {
		return nil, &MalformedGridError{Row: -1}
	}
	grid := make([][]rune, len(lines))
	for i, line := range lines {
		grid[i] = []rune(line)
	}
	cols := len(grid[0])
	for i, row := range grid {
		if len(row) != cols {
			return nil, &MalformedGridError{Row: i, Len: len(row), Want: cols}
		}
	}

	isl.geography = strings.Join(lines, "\n")
	isl.rows = len(lines)
	isl.cols = cols
	isl.cells = make([][]*habitat.Cell, isl.rows)
	for r, row := range grid {
		isl.cells[r] = make([]*habitat.Cell, cols)
		for c, code := range row {
			t, err := habitat.ParseTerrain(code)
			if err != nil {
				return nil, fmt.Errorf("geography row %d col %d: %w", r, c, err)
			}
			isl.cells[r][c] = habitat.New(t, isl.table)
		}
	}

	for r := 0; r < isl.rows; r++ {
		for c := 0; c < isl.cols; c++ {
			onBorder := r == 0 || c == 0 || r == isl.rows-1 || c == isl.cols-1
			if t := isl.cells[r][c].Terrain(); onBorder && t != habitat.Ocean {
				return nil, &OpenBorderError{Row: r, Col: c, Terrain: t}
			}
		}
	}

	for r := 0; r < isl.rows; r++ {
		for c := 0; c < isl.cols; c++ {
			if cell := isl.cells[r][c]; cell.Habitable() {
				isl.sites = append(isl.sites, site{row: r, col: c, cell: cell, neighbors: isl.Neighbors(r, c)})
			}
		}
	}

	isl.logger.Debug("island built",
		"rows", isl.rows,
		"cols", isl.cols,
		"habitable", len(isl.sites),
		"seed", isl.rng.Seed(),
	)
	return isl, nil
}

// parseLines splits a geography into trimmed rows, dropping leading and
// trailing blank lines. Rows must be ASCII codes, so byte length equals
// cell count for every valid row.
func parseLines(geography string) []string {
	raw := strings.Split(strings.TrimSpace(geography), "\n")
	if len(raw) == 1 && raw[0] == "" {
		return nil
	}
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines
}

func (isl *Island) Rows() int { return isl.rows }
func (isl *Island) Cols() int { return isl.cols }

// Year returns the number of completed cycles.
func (isl *Island) Year() int { return isl.year }

// Geography returns the normalised map string.
func (isl *Island) Geography() string { return isl.geography }

// Registry returns the species parameters the island's organisms use.
func (isl *Island) Registry() *fauna.Registry { return isl.reg }

// Terrain returns the terrain parameter table.
func (isl *Island) Terrain() *habitat.TerrainTable { return isl.table }

// Random returns the island's random source.
func (isl *Island) Random() *random.Source { return isl.rng }

func (isl *Island) inBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < isl.rows && col < isl.cols
}

// Cell returns the cell at (row, col), or nil outside the grid.
func (isl *Island) Cell(row, col int) *habitat.Cell {
	if !isl.inBounds(row, col) {
		return nil
	}
	return isl.cells[row][col]
}

// Neighbors returns the in-bounds cells above, below, left and right of
// (row, col), in that order. Out-of-range locations have no neighbours.
func (isl *Island) Neighbors(row, col int) []*habitat.Cell {
	if !isl.inBounds(row, col) {
		return nil
	}
	var out []*habitat.Cell
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if c := isl.Cell(row+d[0], col+d[1]); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Placement puts a population at a grid location.
type Placement struct {
	Loc [2]int       `yaml:"loc" json:"loc"` // row, col
	Pop []fauna.Spec `yaml:"pop" json:"pop"`
}

// AddPopulation inserts every placement. All placements are validated
// before any organism is created, so a rejected call changes nothing.
func (isl *Island) AddPopulation(placements []Placement) error {
	for _, p := range placements {
		row, col := p.Loc[0], p.Loc[1]
		cell := isl.Cell(row, col)
		if cell == nil {
			return &OutOfBoundsError{Row: row, Col: col, Rows: isl.rows, Cols: isl.cols}
		}
		if !cell.Habitable() {
			return fmt.Errorf("location (%d, %d): %w", row, col, &habitat.UninhabitableTerrainError{Terrain: cell.Terrain()})
		}
		for _, sp := range p.Pop {
			if _, err := sp.Validate(); err != nil {
				return fmt.Errorf("location (%d, %d): %w", row, col, err)
			}
		}
	}

	added := 0
	for _, p := range placements {
		cell := isl.cells[p.Loc[0]][p.Loc[1]]
		before := cell.Total()
		if err := cell.AddOrganisms(isl.reg, p.Pop, isl.rng); err != nil {
			return fmt.Errorf("location (%d, %d): %w", p.Loc[0], p.Loc[1], err)
		}
		added += cell.Total() - before
	}
	isl.logger.Debug("population added", "year", isl.year, "placements", len(placements), "organisms", added)
	return nil
}

// UpdateSpeciesParams applies a validated parameter update to a species.
func (isl *Island) UpdateSpeciesParams(species string, values map[string]float64) error {
	s, err := fauna.ParseSpecies(species)
	if err != nil {
		return err
	}
	return isl.reg.Update(s, values)
}

// UpdateTerrainParams applies a validated parameter update to a terrain
// given by its map code.
func (isl *Island) UpdateTerrainParams(code string, values map[string]float64) error {
	r := []rune(code)
	if len(r) != 1 {
		return &habitat.UnknownTerrainCodeError{Code: firstRune(r)}
	}
	t, err := habitat.ParseTerrain(r[0])
	if err != nil {
		return err
	}
	return isl.table.Update(t, values)
}

func firstRune(r []rune) rune {
	if len(r) == 0 {
		return 0
	}
	return r[0]
}
