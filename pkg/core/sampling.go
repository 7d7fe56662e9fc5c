package core

import (
	"math"
	"math/rand"
)

// Vec2 is a pair of canonical sample values
type Vec2 struct {
	X, Y float64
}

func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Sampler supplies canonical random numbers in [0, 1).
// Every stochastic decision in the renderer draws from a Sampler, so tests can script it.
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler draws from a math/rand generator. It is not safe for concurrent use;
// each tile owns its own.
type RandomSampler struct {
	random *rand.Rand
}

func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with a private generator, so equal seeds give equal streams
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// SampleSquare maps a canonical sample to an offset in [-0.5, 0.5)² around a pixel center
func SampleSquare(sample Vec2) Vec2 {
	return NewVec2(sample.X-0.5, sample.Y-0.5)
}

// SampleOnUnitSphere maps a canonical sample to a uniformly distributed unit vector.
// Height is uniform in [-1, 1] (Archimedes) and the azimuth is uniform in [0, 2π).
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// SamplePointInUnitDisk maps a canonical sample to a uniform point of the unit disk in z=0.
// The square root on the radius keeps the density uniform in area.
func SamplePointInUnitDisk(sample Vec2) Vec3 {
	r := math.Sqrt(sample.X)
	theta := 2.0 * math.Pi * sample.Y
	return NewVec3(r*math.Cos(theta), r*math.Sin(theta), 0)
}
