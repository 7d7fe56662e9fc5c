package geometry

import (
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Cuboid represents an axis-aligned box
type Cuboid struct {
	Center   core.Vec3     // Center point of the box
	Size     core.Vec3     // Full extent along X, Y and Z
	Material core.Material // Material for all faces
	min, max core.Vec3
	bbox     core.AABB
}

// NewCuboid creates an axis-aligned box from its center and full extents
func NewCuboid(center, size core.Vec3, material core.Material) *Cuboid {
	half := core.NewVec3(math.Abs(size.X), math.Abs(size.Y), math.Abs(size.Z)).Multiply(0.5)
	min := center.Subtract(half)
	max := center.Add(half)
	return &Cuboid{
		Center:   center,
		Size:     half.Multiply(2),
		Material: material,
		min:      min,
		max:      max,
		bbox:     core.NewAABBFromPoints(min, max),
	}
}

// NewCuboidFromCorners creates the axis-aligned box spanned by two opposite corners
func NewCuboidFromCorners(a, b core.Vec3, material core.Material) *Cuboid {
	return NewCuboid(a.Add(b).Multiply(0.5), a.Subtract(b), material)
}

// Hit tests if a ray intersects the box. The entry point is preferred; a ray that
// starts inside the box reports its exit point instead.
func (c *Cuboid) Hit(ray core.Ray, rayT core.Interval) (*core.HitRecord, bool) {
	tNear := math.Inf(-1)
	tFar := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		lo := c.min.Axis(axis)
		hi := c.max.Axis(axis)
		origin := ray.Origin.Axis(axis)
		direction := ray.Direction.Axis(axis)

		if direction == 0 {
			if origin < lo || origin > hi {
				return nil, false
			}
			continue
		}

		invDirection := 1.0 / direction
		t0 := (lo - origin) * invDirection
		t1 := (hi - origin) * invDirection
		if invDirection < 0 {
			t0, t1 = t1, t0
		}

		tNear = math.Max(tNear, t0)
		tFar = math.Min(tFar, t1)
		if tNear > tFar {
			return nil, false
		}
	}

	t := tNear
	if !rayT.Surrounds(t) {
		t = tFar
		if !rayT.Surrounds(t) {
			return nil, false
		}
	}

	hitRecord := &core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: c.Material,
	}

	axis, outwardNormal := c.faceNormal(hitRecord.Point)
	hitRecord.SetFaceNormal(ray, outwardNormal)
	hitRecord.U, hitRecord.V = c.faceUV(hitRecord.Point, axis)

	return hitRecord, true
}

// faceNormal picks the face the point lies closest to. Exact ties on edges and
// corners go to the lower axis, so X beats Y beats Z.
func (c *Cuboid) faceNormal(p core.Vec3) (int, core.Vec3) {
	bestAxis := 0
	bestDistance := math.Inf(1)
	bestSign := 1.0

	for axis := 0; axis < 3; axis++ {
		value := p.Axis(axis)
		toMin := math.Abs(value - c.min.Axis(axis))
		toMax := math.Abs(value - c.max.Axis(axis))

		distance, sign := toMax, 1.0
		if toMin < toMax {
			distance, sign = toMin, -1.0
		}

		if distance < bestDistance {
			bestAxis, bestDistance, bestSign = axis, distance, sign
		}
	}

	var normal core.Vec3
	switch bestAxis {
	case 0:
		normal = core.NewVec3(bestSign, 0, 0)
	case 1:
		normal = core.NewVec3(0, bestSign, 0)
	default:
		normal = core.NewVec3(0, 0, bestSign)
	}
	return bestAxis, normal
}

// faceUV returns the point's coordinates across the face perpendicular to axis
func (c *Cuboid) faceUV(p core.Vec3, axis int) (float64, float64) {
	uAxis, vAxis := (axis+1)%3, (axis+2)%3
	return c.normalized(p, uAxis), c.normalized(p, vAxis)
}

func (c *Cuboid) normalized(p core.Vec3, axis int) float64 {
	extent := c.max.Axis(axis) - c.min.Axis(axis)
	if extent == 0 {
		return 0
	}
	return core.NewInterval(0, 1).Clamp((p.Axis(axis) - c.min.Axis(axis)) / extent)
}

// BoundingBox returns the padded bounding box of the cuboid
func (c *Cuboid) BoundingBox() core.AABB {
	return c.bbox
}
