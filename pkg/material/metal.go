package material

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Metal reflects about the normal, optionally blurred by Fuzz
type Metal struct {
	Albedo core.Vec3
	Fuzz   float64 // Radius of the reflection jitter sphere, in [0, 1]
}

// NewMetal creates a metal. Fuzz outside [0, 1] is clamped.
func NewMetal(albedo core.Vec3, fuzz float64) *Metal {
	return &Metal{Albedo: albedo, Fuzz: math.Max(0, math.Min(fuzz, 1))}
}

// Scatter reflects the incoming ray. A fuzzed direction that ends up at or below
// the surface is absorbed.
func (m *Metal) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	direction := reflect(rayIn.Direction.Normalize(), hit.Normal)
	if m.Fuzz > 0 {
		direction = direction.Add(randomUnitVector(sampler).Multiply(m.Fuzz))
	}

	if direction.Dot(hit.Normal) <= 0 {
		return core.ScatterResult{}, false
	}
	return scatterFrom(hit, direction, m.Albedo), true
}
