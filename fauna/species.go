// Package fauna models individual animals: the per-species parameter sets
// and the stochastic decision rules each organism follows during a year.
package fauna

import "strings"

// Species identifies one of the two animal species on the island.
type Species uint8

const (
	Herbivore Species = iota
	Carnivore

	NumSpecies = 2
)

// AllSpecies lists every species in a stable order. Cells and telemetry
// iterate species in this order.
var AllSpecies = []Species{Herbivore, Carnivore}

func (s Species) String() string {
	switch s {
	case Herbivore:
		return "Herbivore"
	case Carnivore:
		return "Carnivore"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Species) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Species) UnmarshalText(b []byte) error {
	parsed, err := ParseSpecies(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSpecies resolves a species name, ignoring case.
func ParseSpecies(name string) (Species, error) {
	for _, s := range AllSpecies {
		if strings.EqualFold(name, s.String()) {
			return s, nil
		}
	}
	names := make([]string, len(AllSpecies))
	for i, s := range AllSpecies {
		names[i] = s.String()
	}
	return 0, &InvalidSpeciesError{Name: name, Suggestion: Suggest(name, names)}
}

// Tally counts something per species.
type Tally [NumSpecies]int

// Add adds n to the count of species s.
func (t *Tally) Add(s Species, n int) { t[s] += n }

// Merge adds every count of other.
func (t *Tally) Merge(other Tally) {
	for i := range t {
		t[i] += other[i]
	}
}

// Total returns the sum over all species.
func (t Tally) Total() int {
	n := 0
	for _, v := range t {
		n += v
	}
	return n
}
