package telemetry

import (
	"testing"

	"github.com/pthm-cable/island/fauna"
	"github.com/pthm-cable/island/island"
)

const smallMap = `
OOOOOOO
OJJSJJO
OJDJSJO
OJJJJJO
OOOOOOO
`

// newPopulatedIsland returns a small island with herbivores and carnivores
// in the centre cell and its own parameter registry.
func newPopulatedIsland(t *testing.T, seed int64) *island.Island {
	t.Helper()
	isl, err := island.New(smallMap,
		island.WithSeed(seed),
		island.WithRegistry(fauna.NewRegistry()),
	)
	if err != nil {
		t.Fatalf("island.New: %v", err)
	}
	herbs := fauna.Individual(fauna.Herbivore, 5, 20)
	herbs.Count = 60
	carns := fauna.Individual(fauna.Carnivore, 5, 20)
	carns.Count = 8
	err = isl.AddPopulation([]island.Placement{
		{Loc: [2]int{2, 3}, Pop: []fauna.Spec{herbs, carns}},
	})
	if err != nil {
		t.Fatalf("AddPopulation: %v", err)
	}
	return isl
}
