package fauna

import (
	"math"

	"github.com/pthm-cable/island/random"
)

// Spec describes individuals to create. Age defaults to 0 and weight to a
// birth-weight draw; a zero weight is treated as unspecified. Count
// repeats the spec and defaults to 1.
type Spec struct {
	Species string   `yaml:"species" json:"species"`
	Age     *int     `yaml:"age,omitempty" json:"age,omitempty"`
	Weight  *float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
	Count   int      `yaml:"count,omitempty" json:"count,omitempty"`
}

// Individual returns a spec for a single organism with a fixed age and weight.
func Individual(s Species, age int, weight float64) Spec {
	return Spec{Species: s.String(), Age: &age, Weight: &weight}
}

// Validate checks the spec without creating anything.
func (sp Spec) Validate() (Species, error) {
	s, err := ParseSpecies(sp.Species)
	if err != nil {
		return 0, err
	}
	if sp.Age != nil && *sp.Age < 0 {
		return 0, &OutOfRangeError{Owner: s.String(), Name: "age", Value: float64(*sp.Age), Reason: "must not be negative"}
	}
	if sp.Weight != nil && (*sp.Weight < 0 || math.IsNaN(*sp.Weight) || math.IsInf(*sp.Weight, 0)) {
		return 0, &OutOfRangeError{Owner: s.String(), Name: "weight", Value: *sp.Weight, Reason: "must be finite and not negative"}
	}
	if sp.Count < 0 {
		return 0, &OutOfRangeError{Owner: s.String(), Name: "count", Value: float64(sp.Count), Reason: "must not be negative"}
	}
	return s, nil
}

// Spawn creates the organisms a spec describes.
func (r *Registry) Spawn(sp Spec, rng *random.Source) ([]*Organism, error) {
	s, err := sp.Validate()
	if err != nil {
		return nil, err
	}
	n := sp.Count
	if n == 0 {
		n = 1
	}
	out := make([]*Organism, 0, n)
	for i := 0; i < n; i++ {
		age := 0
		if sp.Age != nil {
			age = *sp.Age
		}
		var weight float64
		if sp.Weight != nil && *sp.Weight > 0 {
			weight = *sp.Weight
		} else {
			weight = r.BirthWeight(s, rng)
		}
		o, err := r.New(s, age, weight)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
