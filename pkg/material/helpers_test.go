package material

import "github.com/df07/go-weekend-raytracer/pkg/core"

// fixedSampler returns the same values on every call
type fixedSampler struct {
	value1D float64
	value2D core.Vec2
}

func (f fixedSampler) Get1D() float64 { return f.value1D }

func (f fixedSampler) Get2D() core.Vec2 { return f.value2D }

func (f fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(f.value2D.X, f.value2D.Y, f.value1D)
}
