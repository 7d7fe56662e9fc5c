package geometry

import "github.com/df07/go-weekend-raytracer/pkg/core"

// HittableList is an ordered collection of shapes tested exhaustively
type HittableList struct {
	Shapes []core.Shape
	bbox   core.AABB
}

// NewHittableList creates a list holding the given shapes
func NewHittableList(shapes ...core.Shape) *HittableList {
	list := &HittableList{bbox: core.EmptyAABB()}
	for _, shape := range shapes {
		list.Add(shape)
	}
	return list
}

// Add appends a shape and grows the list's bounding box
func (l *HittableList) Add(shape core.Shape) {
	l.Shapes = append(l.Shapes, shape)
	l.bbox = l.bbox.Union(shape.BoundingBox())
}

// Len returns the number of shapes in the list
func (l *HittableList) Len() int {
	return len(l.Shapes)
}

// Hit returns the nearest hit among all shapes. The upper bound shrinks to the
// closest t found so far, so later shapes can only replace it with a nearer hit.
func (l *HittableList) Hit(ray core.Ray, rayT core.Interval) (*core.HitRecord, bool) {
	var closestHit *core.HitRecord
	closestSoFar := rayT.Max

	for _, shape := range l.Shapes {
		if hit, isHit := shape.Hit(ray, core.NewInterval(rayT.Min, closestSoFar)); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// BoundingBox returns the union of all member boxes
func (l *HittableList) BoundingBox() core.AABB {
	return l.bbox
}
