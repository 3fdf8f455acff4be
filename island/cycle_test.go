package island

import (
	"slices"
	"testing"

	"github.com/pthm-cable/island/fauna"
)

func TestHerbivoresStayBounded(t *testing.T) {
	isl := newIsland(t, exampleMap, WithSeed(123456))
	if err := isl.AddPopulation([]Placement{{Loc: [2]int{10, 10}, Pop: herbivores(150, 5, 20)}}); err != nil {
		t.Fatal(err)
	}

	// Generous multiple of the number of herbivores the fodder can feed.
	capacity := 5 * isl.TotalFodder() / isl.Registry().Params(fauna.Herbivore).F
	for year := 1; year <= 100; year++ {
		isl.RunCycle()
		n := isl.PopulationBySpecies()[fauna.Herbivore]
		if n < 0 || float64(n) > capacity {
			t.Fatalf("year %d: %d herbivores outside [0, %v]", year, n, capacity)
		}
	}
	if isl.Year() != 100 {
		t.Errorf("year = %d, want 100", isl.Year())
	}
}

func TestDesertHerbivoresDecline(t *testing.T) {
	isl := newIsland(t, "OOOOO\nODDDO\nODDDO\nODDDO\nOOOOO", WithSeed(7))
	if err := isl.AddPopulation([]Placement{{Loc: [2]int{2, 2}, Pop: herbivores(200, 5, 20)}}); err != nil {
		t.Fatal(err)
	}

	prev := isl.Population()
	for year := 1; year <= 10; year++ {
		rep := isl.RunCycle()
		if rep.Births.Total() != 0 || rep.FodderEaten != 0 {
			t.Fatalf("year %d: births %v, fodder eaten %v", year, rep.Births, rep.FodderEaten)
		}
		n := isl.Population()
		if n >= prev {
			t.Fatalf("year %d: population %d did not fall from %d", year, n, prev)
		}
		prev = n
	}
}

func TestCarnivoresWithoutPreyLoseWeight(t *testing.T) {
	isl := newIsland(t, "OOOO\nOJJO\nOJJO\nOOOO", WithSeed(11))
	specs := make([]fauna.Spec, 30)
	for i := range specs {
		specs[i] = fauna.Individual(fauna.Carnivore, 5, 20)
	}
	if err := isl.AddPopulation([]Placement{{Loc: [2]int{1, 1}, Pop: specs}}); err != nil {
		t.Fatal(err)
	}

	weights := make(map[*fauna.Organism]float64)
	for _, o := range isl.Organisms(fauna.Carnivore) {
		weights[o] = o.Weight()
	}
	for year := 1; year <= 5; year++ {
		if rep := isl.RunCycle(); rep.Kills != 0 {
			t.Fatalf("year %d: %d kills without prey", year, rep.Kills)
		}
		for _, o := range isl.Organisms(fauna.Carnivore) {
			before, ok := weights[o]
			if ok && o.Weight() >= before {
				t.Fatalf("year %d: carnivore weight %v did not fall from %v", year, o.Weight(), before)
			}
			weights[o] = o.Weight()
		}
	}
}

func TestCycleAccounting(t *testing.T) {
	isl := newIsland(t, exampleMap, WithSeed(99))
	if err := isl.AddPopulation([]Placement{{Loc: [2]int{10, 10}, Pop: herbivores(150, 5, 20)}}); err != nil {
		t.Fatal(err)
	}
	for year := 0; year < 30; year++ {
		if year == 15 {
			carns := make([]fauna.Spec, 20)
			for i := range carns {
				carns[i] = fauna.Individual(fauna.Carnivore, 5, 20)
			}
			if err := isl.AddPopulation([]Placement{{Loc: [2]int{10, 10}, Pop: carns}}); err != nil {
				t.Fatal(err)
			}
		}
		before := isl.Counts()
		rep := isl.RunCycle()
		after := isl.Counts()

		for _, s := range fauna.AllSpecies {
			want := before[s] + rep.Births[s] - rep.Deaths[s]
			if s == fauna.Herbivore {
				want -= rep.Kills
			}
			if after[s] != want {
				t.Fatalf("year %d %v: count %d, want %d (report %+v)", rep.Year, s, after[s], want, rep)
			}
		}
		for _, s := range fauna.AllSpecies {
			for _, o := range isl.Organisms(s) {
				if o.Migrated() {
					t.Fatalf("year %d: migration flag survived the cycle", rep.Year)
				}
			}
		}
	}
}

func TestSameSeedSameTrajectory(t *testing.T) {
	run := func() []CellCount {
		isl := newIsland(t, exampleMap, WithSeed(2024))
		if err := isl.AddPopulation([]Placement{{Loc: [2]int{10, 10}, Pop: herbivores(100, 5, 20)}}); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 20; i++ {
			isl.RunCycle()
		}
		return isl.Distribution()
	}
	if a, b := run(), run(); !slices.Equal(a, b) {
		t.Error("identical seeds produced different distributions")
	}
}

func TestSnapshotRestoreContinues(t *testing.T) {
	isl := newIsland(t, exampleMap, WithSeed(5))
	if err := isl.UpdateSpeciesParams("Herbivore", map[string]float64{"zeta": 3.2, "xi": 1.8}); err != nil {
		t.Fatal(err)
	}
	if err := isl.AddPopulation([]Placement{{Loc: [2]int{10, 10}, Pop: herbivores(80, 5, 20)}}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		isl.RunCycle()
	}

	st, err := isl.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	restored, err := Restore(st, WithRegistry(fauna.NewRegistry()))
	if err != nil {
		t.Fatal(err)
	}
	if restored.Year() != 5 || restored.Population() != isl.Population() {
		t.Fatalf("restored year %d population %d, want 5 and %d", restored.Year(), restored.Population(), isl.Population())
	}
	if restored.Registry().Params(fauna.Herbivore) != isl.Registry().Params(fauna.Herbivore) {
		t.Error("species parameters not restored")
	}

	for i := 0; i < 5; i++ {
		isl.RunCycle()
		restored.RunCycle()
	}
	if !slices.Equal(isl.Distribution(), restored.Distribution()) {
		t.Error("restored island diverged")
	}
}

func TestPhaseHookOrder(t *testing.T) {
	var got []string
	isl := newIsland(t, "OOO\nOJO\nOOO", WithPhaseHook(func(p string) { got = append(got, p) }))
	isl.RunCycle()
	if !slices.Equal(got, Phases) {
		t.Errorf("phases = %v, want %v", got, Phases)
	}
}
