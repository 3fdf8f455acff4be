package fauna

import (
	"maps"
	"math"
	"slices"
)

// Params holds the constants shared by every individual of a species.
type Params struct {
	WBirth      float64 `yaml:"w_birth" json:"w_birth"`         // mean birth weight
	SigmaBirth  float64 `yaml:"sigma_birth" json:"sigma_birth"` // birth weight standard deviation
	Beta        float64 `yaml:"beta" json:"beta"`               // weight gained per unit of food
	Eta         float64 `yaml:"eta" json:"eta"`                 // fraction of weight lost per year
	AHalf       float64 `yaml:"a_half" json:"a_half"`
	PhiAge      float64 `yaml:"phi_age" json:"phi_age"`
	WHalf       float64 `yaml:"w_half" json:"w_half"`
	PhiWeight   float64 `yaml:"phi_weight" json:"phi_weight"`
	Mu          float64 `yaml:"mu" json:"mu"`         // movement probability scale
	Lambda      float64 `yaml:"lambda" json:"lambda"` // destination preference strength
	Gamma       float64 `yaml:"gamma" json:"gamma"`   // birth probability scale
	Zeta        float64 `yaml:"zeta" json:"zeta"`     // minimum weight multiple for birth
	Xi          float64 `yaml:"xi" json:"xi"`         // parent weight lost per unit of child weight
	Omega       float64 `yaml:"omega" json:"omega"`   // death probability scale
	F           float64 `yaml:"F" json:"F"`           // appetite
	DeltaPhiMax float64 `yaml:"DeltaPhiMax" json:"DeltaPhiMax"`
	PSick       float64 `yaml:"p_sick" json:"p_sick"`
	LossRate    float64 `yaml:"loss_rate" json:"loss_rate"` // food efficiency while sick
}

// ParamNames lists the recognised parameter keys in declaration order.
var ParamNames = []string{
	"w_birth", "sigma_birth", "beta", "eta", "a_half", "phi_age",
	"w_half", "phi_weight", "mu", "lambda", "gamma", "zeta", "xi",
	"omega", "F", "DeltaPhiMax", "p_sick", "loss_rate",
}

// field returns a pointer to the named parameter, or nil if unknown.
func (p *Params) field(name string) *float64 {
	switch name {
	case "w_birth":
		return &p.WBirth
	case "sigma_birth":
		return &p.SigmaBirth
	case "beta":
		return &p.Beta
	case "eta":
		return &p.Eta
	case "a_half":
		return &p.AHalf
	case "phi_age":
		return &p.PhiAge
	case "w_half":
		return &p.WHalf
	case "phi_weight":
		return &p.PhiWeight
	case "mu":
		return &p.Mu
	case "lambda":
		return &p.Lambda
	case "gamma":
		return &p.Gamma
	case "zeta":
		return &p.Zeta
	case "xi":
		return &p.Xi
	case "omega":
		return &p.Omega
	case "F":
		return &p.F
	case "DeltaPhiMax":
		return &p.DeltaPhiMax
	case "p_sick":
		return &p.PSick
	case "loss_rate":
		return &p.LossRate
	}
	return nil
}

// Get returns the value of the named parameter.
func (p *Params) Get(name string) (float64, bool) {
	f := p.field(name)
	if f == nil {
		return 0, false
	}
	return *f, true
}

// AsMap returns every parameter keyed by name.
func (p Params) AsMap() map[string]float64 {
	m := make(map[string]float64, len(ParamNames))
	for _, name := range ParamNames {
		m[name] = *p.field(name)
	}
	return m
}

// DefaultParams returns the documented defaults for a species.
func DefaultParams(s Species) Params {
	if s == Carnivore {
		return Params{
			WBirth: 6.0, SigmaBirth: 1.0, Beta: 0.75, Eta: 0.125,
			AHalf: 60.0, PhiAge: 0.4, WHalf: 4.0, PhiWeight: 0.4,
			Mu: 0.4, Lambda: 1.0, Gamma: 0.8, Zeta: 3.5, Xi: 1.1,
			Omega: 0.9, F: 50.0, DeltaPhiMax: 10.0, PSick: 0, LossRate: 0.8,
		}
	}
	return Params{
		WBirth: 8.0, SigmaBirth: 1.5, Beta: 0.9, Eta: 0.05,
		AHalf: 40.0, PhiAge: 0.2, WHalf: 10.0, PhiWeight: 0.1,
		Mu: 0.25, Lambda: 1.0, Gamma: 0.2, Zeta: 3.5, Xi: 1.2,
		Omega: 0.4, F: 10.0, DeltaPhiMax: 0, PSick: 0, LossRate: 0.8,
	}
}

// Registry holds the live parameter set of each species. Organisms created
// by a registry read their species' record directly, so an update is seen
// by every existing individual. A registry is not safe for concurrent use.
type Registry struct {
	params [NumSpecies]*Params
}

// Default is the process-wide registry used when a simulation is not given
// its own.
var Default = NewRegistry()

// NewRegistry creates a registry initialised with the default parameters.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, s := range AllSpecies {
		p := DefaultParams(s)
		r.params[s] = &p
	}
	return r
}

// Params returns a copy of the current parameters of a species.
func (r *Registry) Params(s Species) Params {
	return *r.params[s]
}

// Reset restores every species to its defaults.
func (r *Registry) Reset() {
	for _, s := range AllSpecies {
		*r.params[s] = DefaultParams(s)
	}
}

// Update validates every key in values and, only if all of them pass,
// applies them to the species record. A rejected update changes nothing.
func (r *Registry) Update(s Species, values map[string]float64) error {
	next := *r.params[s]
	for _, name := range slices.Sorted(maps.Keys(values)) {
		v := values[name]
		f := next.field(name)
		if f == nil {
			return &UnknownParameterError{
				Owner:      s.String(),
				Name:       name,
				Suggestion: Suggest(name, ParamNames),
			}
		}
		if err := validateParam(s, name, v); err != nil {
			return err
		}
		*f = v
	}
	*r.params[s] = next
	return nil
}

func validateParam(s Species, name string, v float64) error {
	bad := func(reason string) error {
		return &OutOfRangeError{Owner: s.String(), Name: name, Value: v, Reason: reason}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return bad("must be finite")
	}
	if name == "DeltaPhiMax" && s == Carnivore {
		if v <= 0 {
			return bad("must be strictly positive")
		}
		return nil
	}
	if v < 0 {
		return bad("must not be negative")
	}
	if (name == "eta" || name == "p_sick") && v > 1 {
		return bad("must be at most 1")
	}
	return nil
}
