package scene

import (
	"fmt"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	CameraConfig renderer.CameraConfig
	Shapes       []core.Shape // Objects in the scene
	UseBVH       bool         // Wrap the shapes in a BVH instead of a flat list
	World        core.Shape   // Top-level surface, set by Preprocess
}

// NewGroundQuad creates a large horizontal quad centered at the given point with normal pointing up (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, material core.Material) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (0,0,size) × (size,0,0) = (0,size²,0)
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, material)
}

// Preprocess validates the camera and builds the top-level surface
func (s *Scene) Preprocess() error {
	if err := s.CameraConfig.Validate(); err != nil {
		return fmt.Errorf("scene %q: invalid camera: %w", s.Name, err)
	}

	if s.UseBVH {
		s.World = geometry.NewBVH(s.Shapes)
	} else {
		s.World = geometry.NewHittableList(s.Shapes...)
	}
	return nil
}

// NewCamera creates the camera described by the scene
func (s *Scene) NewCamera() *renderer.Camera {
	return renderer.NewCamera(s.CameraConfig)
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		count += countPrimitives(shape)
	}
	return count
}

// countPrimitives counts primitives in a single shape, descending into composites
func countPrimitives(shape core.Shape) int {
	switch obj := shape.(type) {
	case *geometry.HittableList:
		count := 0
		for _, child := range obj.Shapes {
			count += countPrimitives(child)
		}
		return count
	default:
		return 1
	}
}
