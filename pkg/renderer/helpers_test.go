package renderer

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// fixedSampler always returns the same values, so every camera ray passes through a pixel center
type fixedSampler struct {
	value1D float64
	value2D core.Vec2
}

func (f fixedSampler) Get1D() float64   { return f.value1D }
func (f fixedSampler) Get2D() core.Vec2 { return f.value2D }
func (f fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(f.value2D.X, f.value2D.Y, f.value1D)
}

var centerSampler = fixedSampler{value1D: 0.5, value2D: core.NewVec2(0.5, 0.5)}

// recordingLogger captures log output for assertions
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// testCameraConfig returns a square pinhole camera at the origin looking down -Z
func testCameraConfig(width, spp, depth int) CameraConfig {
	return CameraConfig{
		AspectRatio:     1.0,
		ImageWidth:      width,
		SamplesPerPixel: spp,
		MaxDepth:        depth,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		VUp:             core.NewVec3(0, 1, 0),
		FocusDistance:   1,
	}
}

// mixedWorld builds a small BVH scene with every material and primitive kind
func mixedWorld() core.Shape {
	ground := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	glass := material.NewDielectric(1.5)
	metal := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	red := material.NewLambertian(core.NewVec3(0.7, 0.1, 0.1))

	return geometry.NewBVH([]core.Shape{
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
		geometry.NewSphere(core.NewVec3(0, 0, -1.2), 0.5, glass),
		geometry.NewSphere(core.NewVec3(0, 0, -1.2), 0.4, glass),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, metal),
		geometry.NewQuad(core.NewVec3(-2, -0.5, -2), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), red),
		geometry.NewCuboid(core.NewVec3(-1, 0, -1), core.NewVec3(0.5, 0.5, 0.5), metal),
		geometry.NewSphere(core.NewVec3(0, 1, -1), 0, red),                                         // zero radius
		geometry.NewQuad(core.NewVec3(0, 1, -1), core.NewVec3(1, 0, 0), core.NewVec3(2, 0, 0), red), // degenerate
	})
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Z-b.Z) <= tolerance
}
