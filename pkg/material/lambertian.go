package material

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Lambertian is an ideal diffuse reflector
type Lambertian struct {
	Albedo core.Vec3
}

func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter always scatters. Normal plus a uniform unit vector gives a
// cosine-weighted direction about the normal.
func (l *Lambertian) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	direction := hit.Normal.Add(randomUnitVector(sampler))

	// The sample almost cancelled the normal
	if direction.NearZero() {
		direction = hit.Normal
	}
	return scatterFrom(hit, direction, l.Albedo), true
}
