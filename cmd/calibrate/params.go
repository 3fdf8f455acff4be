package main

import (
	"github.com/pthm-cable/island/config"
	"github.com/pthm-cable/island/fauna"
)

// ParamSpec defines a single calibratable species parameter.
type ParamSpec struct {
	Species fauna.Species
	Name    string  // parameter key, as in the species config section
	Min     float64 // Lower bound
	Max     float64 // Upper bound
}

// Label returns the name used in logs and CSV headers.
func (s ParamSpec) Label() string {
	return s.Species.String() + "." + s.Name
}

// ParamVector holds the set of all calibratable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of calibratable parameters: the
// birth, death and hunting rates that decide whether the species coexist.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Species: fauna.Herbivore, Name: "gamma", Min: 0.05, Max: 0.6},
			{Species: fauna.Herbivore, Name: "omega", Min: 0.1, Max: 0.9},
			{Species: fauna.Carnivore, Name: "gamma", Min: 0.2, Max: 1.0},
			{Species: fauna.Carnivore, Name: "omega", Min: 0.1, Max: 0.9},
			{Species: fauna.Carnivore, Name: "F", Min: 10, Max: 100},
			{Species: fauna.Carnivore, Name: "DeltaPhiMax", Min: 1, Max: 15},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes the clamped values into the species overrides.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	if cfg.Species == nil {
		cfg.Species = make(map[string]map[string]float64)
	}
	for i, spec := range pv.Specs {
		name := spec.Species.String()
		if cfg.Species[name] == nil {
			cfg.Species[name] = make(map[string]float64)
		}
		cfg.Species[name][spec.Name] = clamped[i]
	}
}

// ExtractFromConfig returns the current value of each parameter: the
// config override if there is one, otherwise the species default.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	values := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		if v, ok := cfg.Species[spec.Species.String()][spec.Name]; ok {
			values[i] = v
			continue
		}
		p := fauna.DefaultParams(spec.Species)
		values[i], _ = p.Get(spec.Name)
	}
	return values
}
