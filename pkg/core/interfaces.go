package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// Shape is anything a ray can be tested against: primitives, lists and BVH nodes
type Shape interface {
	// Hit reports the nearest intersection whose t lies strictly inside rayT
	Hit(ray Ray, rayT Interval) (*HitRecord, bool)
	BoundingBox() AABB
}

// Material decides how an incoming ray is attenuated and re-emitted at a hit point.
// Materials are immutable once constructed and may be shared by many shapes.
type Material interface {
	// Scatter returns false when the ray is absorbed
	Scatter(rayIn Ray, hit HitRecord, sampler Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   Ray  // The scattered ray
	Attenuation Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     Vec3     // Point of intersection
	Normal    Vec3     // Unit normal, always facing against the incoming ray
	Material  Material // Material of the hit object
	T         float64  // Parameter t along the ray
	U, V      float64  // Surface parametrisation coordinates
	FrontFace bool     // Whether the geometric outward normal faced the ray
}

// SetFaceNormal sets the normal vector and determines front/back face.
// outwardNormal must have unit length.
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
