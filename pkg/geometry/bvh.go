package geometry

import (
	"sort"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// BVHNode is a node of the bounding volume hierarchy. A leaf wraps a single
// shape in both Left and Right; an internal node owns two distinct subtrees.
type BVHNode struct {
	Left  core.Shape
	Right core.Shape
	Box   core.AABB
	leaf  bool
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection
type BVH struct {
	Root *BVHNode // nil for an empty scene
}

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []core.Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{Root: nil}
	}

	// Sorting happens in place, so work on a copy of the caller's slice
	shapesCopy := make([]core.Shape, len(shapes))
	copy(shapesCopy, shapes)

	return &BVH{Root: buildBVH(shapesCopy)}
}

// NewBVHFromList builds a BVH over the members of a hittable list
func NewBVHFromList(list *HittableList) *BVH {
	return NewBVH(list.Shapes)
}

// buildBVH recursively builds the tree with a median split along the axis on
// which the shapes' box centers are most spread out
func buildBVH(shapes []core.Shape) *BVHNode {
	switch len(shapes) {
	case 1:
		return &BVHNode{
			Left:  shapes[0],
			Right: shapes[0],
			Box:   shapes[0].BoundingBox().Pad(),
			leaf:  true,
		}
	case 2:
		return newBVHNode(newLeaf(shapes[0]), newLeaf(shapes[1]))
	}

	axis := centroidBounds(shapes).LongestAxis()
	sortShapesByAxis(shapes, axis)

	mid := len(shapes) / 2
	return newBVHNode(buildBVH(shapes[:mid]), buildBVH(shapes[mid:]))
}

func newLeaf(shape core.Shape) *BVHNode {
	return buildBVH([]core.Shape{shape})
}

func newBVHNode(left, right *BVHNode) *BVHNode {
	return &BVHNode{
		Left:  left,
		Right: right,
		Box:   left.Box.Union(right.Box),
	}
}

// centroidBounds returns the box spanned by the centers of the shapes' boxes
func centroidBounds(shapes []core.Shape) core.AABB {
	bounds := core.EmptyAABB()
	for _, shape := range shapes {
		c := shape.BoundingBox().Center()
		bounds = bounds.Union(core.AABB{
			X: core.NewInterval(c.X, c.X),
			Y: core.NewInterval(c.Y, c.Y),
			Z: core.NewInterval(c.Z, c.Z),
		})
	}
	return bounds
}

// sortShapesByAxis sorts shapes by their bounding box center along the specified axis
func sortShapesByAxis(shapes []core.Shape, axis int) {
	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].BoundingBox().Center().Axis(axis) < shapes[j].BoundingBox().Center().Axis(axis)
	})
}

// Hit tests if a ray intersects any shape below this node
func (n *BVHNode) Hit(ray core.Ray, rayT core.Interval) (*core.HitRecord, bool) {
	if !n.Box.Hit(ray, rayT) {
		return nil, false
	}

	if n.leaf {
		return n.Left.Hit(ray, rayT)
	}

	leftHit, hitLeft := n.Left.Hit(ray, rayT)

	// The right subtree only needs to find something nearer than the left hit
	rightT := rayT
	if hitLeft {
		rightT.Max = leftHit.T
	}
	if rightHit, hitRight := n.Right.Hit(ray, rightT); hitRight {
		return rightHit, true
	}

	return leftHit, hitLeft
}

// BoundingBox returns the union of both children's boxes
func (n *BVHNode) BoundingBox() core.AABB {
	return n.Box
}

// Hit tests if a ray intersects any shape in the BVH
func (bvh *BVH) Hit(ray core.Ray, rayT core.Interval) (*core.HitRecord, bool) {
	if bvh.Root == nil {
		return nil, false
	}
	return bvh.Root.Hit(ray, rayT)
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.EmptyAABB()
	}
	return bvh.Root.Box
}

// getStats returns statistics about the BVH structure
func (bvh *BVH) getStats() bvhStats {
	if bvh.Root == nil {
		return bvhStats{}
	}

	stats := bvhStats{}
	bvh.collectStats(bvh.Root, 0, &stats)

	if stats.leafNodes > 0 {
		stats.avgDepth = stats.avgDepth / float64(stats.leafNodes)
	}

	return stats
}

// bvhStats contains statistics about the BVH structure
type bvhStats struct {
	totalNodes int
	leafNodes  int
	maxDepth   int
	avgDepth   float64
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *bvhStats) {
	stats.totalNodes++
	stats.maxDepth = max(stats.maxDepth, depth)

	if node.leaf {
		stats.leafNodes++
		stats.avgDepth += float64(depth)
		return
	}

	for _, child := range []core.Shape{node.Left, node.Right} {
		if childNode, ok := child.(*BVHNode); ok {
			bvh.collectStats(childNode, depth+1, stats)
		}
	}
}
