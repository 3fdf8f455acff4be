package fauna

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/island/random"
)

type stubDest struct {
	habitable bool
	abundance float64
}

func (d stubDest) Habitable() bool                     { return d.habitable }
func (d stubDest) RelativeAbundance(*Organism) float64 { return d.abundance }

func mustNew(t *testing.T, r *Registry, s Species, age int, weight float64) *Organism {
	t.Helper()
	o, err := r.New(s, age, weight)
	if err != nil {
		t.Fatalf("New(%v, %d, %v): %v", s, age, weight, err)
	}
	return o
}

func TestFitnessZeroWeight(t *testing.T) {
	r := NewRegistry()
	for _, s := range AllSpecies {
		for _, age := range []int{0, 1, 5, 40, 200} {
			if f := mustNew(t, r, s, age, 0).Fitness(); f != 0 {
				t.Errorf("%v age %d weight 0: fitness = %v, want exactly 0", s, age, f)
			}
		}
	}
}

func TestFitnessBounded(t *testing.T) {
	r := NewRegistry()
	ages := []int{0, 1, 10, 40, 60, 100, 500, 100000}
	weights := []float64{1e-9, 0.5, 4, 10, 50, 1000, 1e9}
	for _, s := range AllSpecies {
		for _, a := range ages {
			for _, w := range weights {
				f := mustNew(t, r, s, a, w).Fitness()
				if f < 0 || f > 1 || math.IsNaN(f) {
					t.Errorf("%v age %d weight %v: fitness %v outside [0,1]", s, a, w, f)
				}
			}
		}
	}
}

func TestFitnessAtHalfPoints(t *testing.T) {
	r := NewRegistry()
	o := mustNew(t, r, Herbivore, 40, 10)
	if math.Abs(o.Fitness()-0.25) > 1e-12 {
		t.Errorf("fitness at a_half/w_half = %v, want 0.25", o.Fitness())
	}
}

func TestFitnessTracksAgeAndWeight(t *testing.T) {
	r := NewRegistry()
	rng := random.New(1)
	o := mustNew(t, r, Herbivore, 10, 20)

	f0 := o.Fitness()
	o.AddAge()
	if o.Age() != 11 {
		t.Errorf("age = %d, want 11", o.Age())
	}
	f1 := o.Fitness()
	if f1 >= f0 {
		t.Errorf("fitness should fall with age: %v -> %v", f0, f1)
	}

	o.Eat(10, rng)
	if f2 := o.Fitness(); f2 <= f1 {
		t.Errorf("fitness should rise after eating: %v -> %v", f1, f2)
	}
}

func TestNewRejectsNegative(t *testing.T) {
	r := NewRegistry()
	var e *OutOfRangeError
	if _, err := r.New(Herbivore, -1, 10); !errors.As(err, &e) {
		t.Errorf("negative age: got %v", err)
	}
	if _, err := r.New(Herbivore, 1, -10); !errors.As(err, &e) {
		t.Errorf("negative weight: got %v", err)
	}
}

func TestDies(t *testing.T) {
	r := NewRegistry()
	rng := random.New(3)

	starving := mustNew(t, r, Herbivore, 5, 0)
	for i := 0; i < 100; i++ {
		if !starving.Dies(rng) {
			t.Fatal("zero-fitness organism survived")
		}
	}

	if err := r.Update(Herbivore, map[string]float64{"omega": 0}); err != nil {
		t.Fatal(err)
	}
	healthy := mustNew(t, r, Herbivore, 5, 30)
	for i := 0; i < 100; i++ {
		if healthy.Dies(rng) {
			t.Fatal("organism died with omega = 0")
		}
	}
}

func TestWantsToMoveWithZeroMu(t *testing.T) {
	r := NewRegistry()
	rng := random.New(4)
	if err := r.Update(Carnivore, map[string]float64{"mu": 0}); err != nil {
		t.Fatal(err)
	}
	o := mustNew(t, r, Carnivore, 5, 20)
	for i := 0; i < 100; i++ {
		if o.WantsToMove(rng) {
			t.Fatal("organism moved with mu = 0")
		}
	}
}

func TestMoveWeights(t *testing.T) {
	r := NewRegistry()
	o := mustNew(t, r, Herbivore, 5, 20)
	dests := []Destination{
		stubDest{habitable: false, abundance: 5},
		stubDest{habitable: true, abundance: 0},
		stubDest{habitable: true, abundance: 2},
	}

	got := o.MoveWeights(dests)
	want := []float64{0, 1, math.Exp(2)}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("weight[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestKillProbability(t *testing.T) {
	r := NewRegistry()
	carn := mustNew(t, r, Carnivore, 5, 20)
	phi := carn.Fitness()

	if p := carn.KillProbability(phi); p != 0 {
		t.Errorf("equal fitness: p = %v, want 0", p)
	}
	if p := carn.KillProbability(phi + 0.1); p != 0 {
		t.Errorf("fitter prey: p = %v, want 0", p)
	}

	if err := r.Update(Carnivore, map[string]float64{"DeltaPhiMax": 1}); err != nil {
		t.Fatal(err)
	}
	if p := carn.KillProbability(0); math.Abs(p-phi) > 1e-12 {
		t.Errorf("linear range: p = %v, want %v", p, phi)
	}

	if err := r.Update(Carnivore, map[string]float64{"DeltaPhiMax": phi / 2}); err != nil {
		t.Fatal(err)
	}
	if p := carn.KillProbability(0); p != 1 {
		t.Errorf("gap beyond DeltaPhiMax: p = %v, want 1", p)
	}

	herb := mustNew(t, r, Herbivore, 5, 20)
	if p := herb.KillProbability(0); p != 0 {
		t.Errorf("herbivore kill probability = %v, want 0", p)
	}
}

func TestKillsAlwaysWhenCertain(t *testing.T) {
	r := NewRegistry()
	rng := random.New(5)
	if err := r.Update(Carnivore, map[string]float64{"DeltaPhiMax": 1e-6}); err != nil {
		t.Fatal(err)
	}
	carn := mustNew(t, r, Carnivore, 5, 20)
	for i := 0; i < 100; i++ {
		if !carn.Kills(0, rng) {
			t.Fatal("certain kill failed")
		}
	}
}

func TestEat(t *testing.T) {
	r := NewRegistry()
	rng := random.New(6)

	o := mustNew(t, r, Herbivore, 5, 20)
	o.Eat(10, rng)
	if math.Abs(o.Weight()-29) > 1e-12 || o.Sick() {
		t.Errorf("healthy meal: weight %v sick %v, want 29 false", o.Weight(), o.Sick())
	}

	if err := r.Update(Herbivore, map[string]float64{"p_sick": 1}); err != nil {
		t.Fatal(err)
	}
	sick := mustNew(t, r, Herbivore, 5, 20)
	sick.Eat(10, rng)
	if math.Abs(sick.Weight()-27.2) > 1e-12 || !sick.Sick() {
		t.Errorf("sick meal: weight %v sick %v, want 27.2 true", sick.Weight(), sick.Sick())
	}
}

func TestLoseWeight(t *testing.T) {
	r := NewRegistry()
	o := mustNew(t, r, Herbivore, 5, 20)
	o.LoseWeight()
	if math.Abs(o.Weight()-19) > 1e-12 {
		t.Errorf("weight = %v, want 19", o.Weight())
	}

	if err := r.Update(Herbivore, map[string]float64{"eta": 1}); err != nil {
		t.Fatal(err)
	}
	o.LoseWeight()
	if o.Weight() != 0 || o.Fitness() != 0 {
		t.Errorf("eta = 1 should leave weight and fitness at 0, got %v %v", o.Weight(), o.Fitness())
	}
}

func TestGiveBirthPreconditions(t *testing.T) {
	r := NewRegistry()
	rng := random.New(7)

	alone := mustNew(t, r, Herbivore, 5, 60)
	if c := alone.GiveBirth(1, rng); c != nil {
		t.Error("birth with no partner")
	}

	light := mustNew(t, r, Herbivore, 5, 30) // below zeta*(w_birth+sigma_birth) = 33.25
	for i := 0; i < 50; i++ {
		if c := light.GiveBirth(10, rng); c != nil {
			t.Fatal("birth below weight threshold")
		}
	}
	if light.Weight() != 30 {
		t.Errorf("weight changed without birth: %v", light.Weight())
	}
}

func TestGiveBirthConservesWeight(t *testing.T) {
	r := NewRegistry()
	rng := random.New(8)
	if err := r.Update(Herbivore, map[string]float64{"gamma": 10, "sigma_birth": 0}); err != nil {
		t.Fatal(err)
	}

	parent := mustNew(t, r, Herbivore, 5, 60)
	before := parent.Weight()
	child := parent.GiveBirth(10, rng)
	if child == nil {
		t.Fatal("expected a birth")
	}
	if child.Species() != Herbivore || child.Age() != 0 || child.Weight() != 8 {
		t.Errorf("unexpected child: %v age %d weight %v", child.Species(), child.Age(), child.Weight())
	}
	want := before - 1.2*child.Weight()
	if math.Abs(parent.Weight()-want) > 1e-12 {
		t.Errorf("parent weight = %v, want %v", parent.Weight(), want)
	}
}

func TestGiveBirthAbortsWhenUnaffordable(t *testing.T) {
	r := NewRegistry()
	rng := random.New(9)
	if err := r.Update(Herbivore, map[string]float64{"gamma": 10, "sigma_birth": 0, "xi": 8}); err != nil {
		t.Fatal(err)
	}

	parent := mustNew(t, r, Herbivore, 5, 60) // 8 * 8 = 64 > 60
	for i := 0; i < 20; i++ {
		if c := parent.GiveBirth(10, rng); c != nil {
			t.Fatal("unaffordable birth went ahead")
		}
	}
	if parent.Weight() != 60 {
		t.Errorf("aborted birth changed parent weight to %v", parent.Weight())
	}
}

func TestSpawn(t *testing.T) {
	r := NewRegistry()
	rng := random.New(10)

	orgs, err := r.Spawn(Spec{Species: "Herbivore", Count: 3}, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(orgs) != 3 {
		t.Fatalf("got %d organisms, want 3", len(orgs))
	}
	for _, o := range orgs {
		if o.Age() != 0 || o.Weight() <= 0 {
			t.Errorf("default organism age %d weight %v", o.Age(), o.Weight())
		}
	}

	fixed, err := r.Spawn(Individual(Carnivore, 5, 20), rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(fixed) != 1 || fixed[0].Age() != 5 || fixed[0].Weight() != 20 || fixed[0].Species() != Carnivore {
		t.Errorf("unexpected individual: %+v", fixed[0])
	}

	age := -2
	var rangeErr *OutOfRangeError
	if _, err := r.Spawn(Spec{Species: "Herbivore", Age: &age}, rng); !errors.As(err, &rangeErr) {
		t.Errorf("negative age: got %v", err)
	}
	var speciesErr *InvalidSpeciesError
	if _, err := r.Spawn(Spec{Species: "Unicorn"}, rng); !errors.As(err, &speciesErr) {
		t.Errorf("bad species: got %v", err)
	}
}
