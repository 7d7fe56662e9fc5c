package core

import "math"

// minBoxThickness is the smallest extent any non-empty AABB axis may have
const minBoxThickness = 0.0001

// AABB represents an axis-aligned bounding box as one interval per axis
type AABB struct {
	X, Y, Z Interval
}

// NewAABB creates a new AABB from per-axis intervals, padded to the minimum thickness
func NewAABB(x, y, z Interval) AABB {
	return AABB{X: x, Y: y, Z: z}.Pad()
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return EmptyAABB()
	}

	min := points[0]
	max := points[0]

	for _, point := range points[1:] {
		min.X = math.Min(min.X, point.X)
		min.Y = math.Min(min.Y, point.Y)
		min.Z = math.Min(min.Z, point.Z)

		max.X = math.Max(max.X, point.X)
		max.Y = math.Max(max.Y, point.Y)
		max.Z = math.Max(max.Z, point.Z)
	}

	return NewAABB(
		NewInterval(min.X, max.X),
		NewInterval(min.Y, max.Y),
		NewInterval(min.Z, max.Z),
	)
}

// EmptyAABB returns a box that contains nothing
func EmptyAABB() AABB {
	return AABB{X: EmptyInterval(), Y: EmptyInterval(), Z: EmptyInterval()}
}

// Union returns an AABB that bounds both this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		X: MergeIntervals(aabb.X, other.X),
		Y: MergeIntervals(aabb.Y, other.Y),
		Z: MergeIntervals(aabb.Z, other.Z),
	}
}

// Axis returns the interval for axis n (0=X, 1=Y, 2=Z)
func (aabb AABB) Axis(n int) Interval {
	switch n {
	case 1:
		return aabb.Y
	case 2:
		return aabb.Z
	default:
		return aabb.X
	}
}

// Pad widens every non-empty axis thinner than the minimum thickness.
// Flat boxes (e.g. around an axis-aligned quad) would otherwise produce
// degenerate slabs.
func (aabb AABB) Pad() AABB {
	pad := func(i Interval) Interval {
		if i.IsEmpty() || i.Size() >= minBoxThickness {
			return i
		}
		return i.Expand(minBoxThickness)
	}
	return AABB{X: pad(aabb.X), Y: pad(aabb.Y), Z: pad(aabb.Z)}
}

// IsEmpty reports whether any axis is empty
func (aabb AABB) IsEmpty() bool {
	return aabb.X.IsEmpty() || aabb.Y.IsEmpty() || aabb.Z.IsEmpty()
}

// Hit tests if a ray intersects with this AABB within rayT using the slab method.
// rayT is passed by value; the caller's interval is never narrowed.
func (aabb AABB) Hit(ray Ray, rayT Interval) bool {
	for axis := 0; axis < 3; axis++ {
		slab := aabb.Axis(axis)
		origin := ray.Origin.Axis(axis)
		direction := ray.Direction.Axis(axis)

		// Parallel to the slab: 0*Inf would yield NaN, so decide by the origin alone
		if direction == 0 {
			if !slab.Contains(origin) {
				return false
			}
			continue
		}

		invDirection := 1.0 / direction
		t0 := (slab.Min - origin) * invDirection
		t1 := (slab.Max - origin) * invDirection

		// A negative direction crosses the far plane first
		if invDirection < 0 {
			t0, t1 = t1, t0
		}

		if t0 > rayT.Min {
			rayT.Min = t0
		}
		if t1 < rayT.Max {
			rayT.Max = t1
		}

		if rayT.Max <= rayT.Min {
			return false
		}
	}

	return true
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return NewVec3(
		(aabb.X.Min+aabb.X.Max)*0.5,
		(aabb.Y.Min+aabb.Y.Max)*0.5,
		(aabb.Z.Min+aabb.Z.Max)*0.5,
	)
}

// Size returns the size (extent) of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return NewVec3(aabb.X.Size(), aabb.Y.Size(), aabb.Z.Size())
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}
