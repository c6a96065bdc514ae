package core

import (
	"math"
	"math/rand"
)

// Sampler provides uniform samples in [0,1)^n
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Point2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Point2 {
	return NewPoint2(r.random.Float64(), r.random.Float64())
}

// UniformSampleSphere maps a 2D sample to a direction on the unit sphere
func UniformSampleSphere(u Point2) Vec3 {
	z := 1 - 2*u.X
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * Pi * u.Y
	return Vec3{r * math.Cos(phi), r * math.Sin(phi), z}
}

// UniformSampleDisk maps a 2D sample to a point on the unit disk
func UniformSampleDisk(u Point2) Point2 {
	r := math.Sqrt(u.X)
	theta := 2 * Pi * u.Y
	return Point2{r * math.Cos(theta), r * math.Sin(theta)}
}
