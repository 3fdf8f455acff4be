// Package random provides the seeded random stream shared by every
// stochastic decision in a simulation.
//
// All draws (Bernoulli outcomes, birth weights, migration destinations) come
// from one PCG stream, so an identical seed and an identical call order give
// an identical trajectory.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source is a seedable uniform random stream.
// It is not safe for concurrent use.
type Source struct {
	seed int64
	src  *rand.PCG
	rng  *rand.Rand
}

// New creates a source seeded with seed.
func New(seed int64) *Source {
	src := rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15)
	return &Source{
		seed: seed,
		src:  src,
		rng:  rand.New(src),
	}
}

// NewSeed generates a seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// MarshalBinary captures the position of the stream so that a restored
// simulation continues with the same draws.
func (s *Source) MarshalBinary() ([]byte, error) {
	return s.src.MarshalBinary()
}

// UnmarshalBinary restores a position captured by MarshalBinary.
func (s *Source) UnmarshalBinary(data []byte) error {
	if err := s.src.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("restore random state: %w", err)
	}
	return nil
}

// Float64 returns a uniform draw in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Bernoulli returns true with probability p.
// p <= 0 never succeeds; p >= 1 always does.
func (s *Source) Bernoulli(p float64) bool {
	return s.rng.Float64() < p
}

// Normal draws from a Gaussian with the given mean and standard deviation.
func (s *Source) Normal(mean, stdev float64) float64 {
	d := distuv.Normal{Mu: mean, Sigma: stdev, Src: s.src}
	return d.Rand()
}

// WeightedIndex picks an index with probability proportional to its weight.
// Negative and NaN weights count as zero. It returns false without consuming a draw
// when no weight is positive.
func (s *Source) WeightedIndex(weights []float64) (int, bool) {
	w := make([]float64, len(weights))
	var total float64
	for i, v := range weights {
		if v > 0 { // false for NaN
			w[i] = v
			total += v
		}
	}
	if total == 0 {
		return 0, false
	}
	if math.IsInf(total, 1) {
		rescale(w)
	}
	c := distuv.NewCategorical(w, s.src)
	return int(c.Rand()), true
}

// rescale brings weights whose sum overflowed back into range. Infinite
// weights win outright and share the draw evenly.
func rescale(w []float64) {
	var largest float64
	for _, v := range w {
		largest = math.Max(largest, v)
	}
	for i, v := range w {
		switch {
		case math.IsInf(largest, 1) && math.IsInf(v, 1):
			w[i] = 1
		case math.IsInf(largest, 1):
			w[i] = 0
		default:
			w[i] = v / largest
		}
	}
}
