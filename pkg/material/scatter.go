package material

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// scatterFrom builds a result whose ray leaves the hit point along direction
func scatterFrom(hit core.HitRecord, direction, attenuation core.Vec3) core.ScatterResult {
	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}
}

// reflect mirrors v about the plane with unit normal n
func reflect(v, n core.Vec3) core.Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// refract bends unit vector uv through a surface with unit normal n using Snell's law
func refract(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	perp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	parallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - perp.LengthSquared())))
	return perp.Add(parallel)
}

func randomUnitVector(sampler core.Sampler) core.Vec3 {
	return core.SampleOnUnitSphere(sampler.Get2D())
}
