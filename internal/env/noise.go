package env

import "math/rand/v2"

// Noise is the bounded random source behind the generator. Tests substitute
// a zero or fixed implementation to make the output deterministic.
type Noise interface {
	// Uniform returns a value uniformly distributed in [lo, hi).
	Uniform(lo, hi float64) float64
	// Normal returns a normally distributed value.
	Normal(mean, stddev float64) float64
}

// randNoise draws from the shared math/rand/v2 generators.
type randNoise struct{}

// NewNoise returns the default Noise implementation.
func NewNoise() Noise {
	return randNoise{}
}

func (randNoise) Uniform(lo, hi float64) float64 {
	return lo + rand.Float64()*(hi-lo)
}

func (randNoise) Normal(mean, stddev float64) float64 {
	return mean + rand.NormFloat64()*stddev
}
