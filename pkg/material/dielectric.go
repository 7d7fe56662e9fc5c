package material

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Dielectric is clear glass-like material: every hit either reflects or refracts, nothing is absorbed
type Dielectric struct {
	// RefractiveIndex is relative to the surrounding medium. Values below 1 model
	// an air bubble inside glass.
	RefractiveIndex float64
}

func NewDielectric(refractiveIndex float64) *Dielectric {
	return &Dielectric{RefractiveIndex: refractiveIndex}
}

// Scatter chooses reflection with the Schlick probability, or always when Snell's law has no solution
func (d *Dielectric) Scatter(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	ratio := d.RefractiveIndex
	if hit.FrontFace {
		ratio = 1.0 / d.RefractiveIndex
	}

	unitDirection := rayIn.Direction.Normalize()
	direction := dielectricDirection(unitDirection, hit.Normal, ratio, sampler.Get1D())
	return scatterFrom(hit, direction, core.NewVec3(1, 1, 1)), true
}

// dielectricDirection picks the outgoing direction for a unit incident vector.
// u is a canonical sample compared against the reflectance.
func dielectricDirection(unitDirection, normal core.Vec3, ratio, u float64) core.Vec3 {
	cosTheta := math.Min(-unitDirection.Dot(normal), 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))

	if ratio*sinTheta > 1.0 || Reflectance(cosTheta, ratio) > u {
		return reflect(unitDirection, normal)
	}
	return refract(unitDirection, normal, ratio)
}

// Reflectance is Schlick's approximation of the Fresnel reflectance
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
