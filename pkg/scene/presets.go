package scene

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Preset describes a built-in scene
type Preset struct {
	ID          string
	Description string
	Create      func() *Scene
}

// Presets lists the built-in scenes in display order
var Presets = []Preset{
	{"simple", "Single diffuse sphere on a ground sphere", NewSimpleScene},
	{"spheres", "Random field of small spheres around three large ones, under a BVH", NewSpheresScene},
	{"quads", "Five colored quads facing the camera", NewQuadsScene},
	{"cuboids", "Boxes of every material on a ground quad", NewCuboidsScene},
	{"empty", "No surfaces, only the sky gradient", NewEmptyScene},
}

// PresetNames returns the IDs of all built-in scenes
func PresetNames() []string {
	names := make([]string, len(Presets))
	for i, preset := range Presets {
		names[i] = preset.ID
	}
	return names
}

// NewPreset creates a built-in scene by ID
func NewPreset(id string) (*Scene, error) {
	for _, preset := range Presets {
		if preset.ID == id {
			return preset.Create(), nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q (available: %v)", id, PresetNames())
}

// NewSimpleScene creates a single white-ish sphere resting on a large ground sphere
func NewSimpleScene() *Scene {
	cameraConfig := renderer.DefaultCameraConfig()
	cameraConfig.SamplesPerPixel = 100
	cameraConfig.MaxDepth = 50

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))

	return &Scene{
		Name:         "simple",
		CameraConfig: cameraConfig,
		Shapes: []core.Shape{
			geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground),
			geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center),
		},
	}
}

// NewSpheresScene creates the classic field of random small spheres
func NewSpheresScene() *Scene {
	cameraConfig := renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      400,
		SamplesPerPixel: 50,
		MaxDepth:        20,
		VFov:            20,
		LookFrom:        core.NewVec3(13, 2, 3),
		LookAt:          core.NewVec3(0, 0, 0),
		VUp:             core.NewVec3(0, 1, 0),
		DefocusAngle:    0.6,
		FocusDistance:   10.0,
	}

	// Fixed seed so the layout is identical between runs
	random := rand.New(rand.NewSource(42))
	randomColor := func(lo, hi float64) core.Vec3 {
		return core.NewVec3(
			lo+(hi-lo)*random.Float64(),
			lo+(hi-lo)*random.Float64(),
			lo+(hi-lo)*random.Float64(),
		)
	}

	shapes := []core.Shape{
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
	}

	glass := material.NewDielectric(1.5)
	clearing := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			var sphereMaterial core.Material
			switch {
			case chooseMat < 0.8:
				sphereMaterial = material.NewLambertian(randomColor(0, 1).MultiplyVec(randomColor(0, 1)))
			case chooseMat < 0.95:
				sphereMaterial = material.NewMetal(randomColor(0.5, 1), 0.5*random.Float64())
			default:
				sphereMaterial = glass
			}
			shapes = append(shapes, geometry.NewSphere(center, 0.2, sphereMaterial))
		}
	}

	shapes = append(shapes,
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1.0, glass),
		geometry.NewSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))),
		geometry.NewSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)),
	)

	return &Scene{
		Name:         "spheres",
		CameraConfig: cameraConfig,
		Shapes:       shapes,
		UseBVH:       true,
	}
}

// NewQuadsScene creates five quads forming an open box around the view axis
func NewQuadsScene() *Scene {
	cameraConfig := renderer.CameraConfig{
		AspectRatio:     1.0,
		ImageWidth:      400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		VFov:            80,
		LookFrom:        core.NewVec3(0, 0, 9),
		LookAt:          core.NewVec3(0, 0, 0),
		VUp:             core.NewVec3(0, 1, 0),
		FocusDistance:   10.0,
	}

	leftRed := material.NewLambertian(core.NewVec3(1.0, 0.2, 0.2))
	backGreen := material.NewLambertian(core.NewVec3(0.2, 1.0, 0.2))
	rightBlue := material.NewLambertian(core.NewVec3(0.2, 0.2, 1.0))
	upperOrange := material.NewLambertian(core.NewVec3(1.0, 0.5, 0.0))
	lowerTeal := material.NewLambertian(core.NewVec3(0.2, 0.8, 0.8))

	return &Scene{
		Name:         "quads",
		CameraConfig: cameraConfig,
		Shapes: []core.Shape{
			geometry.NewQuad(core.NewVec3(-3, -2, 5), core.NewVec3(0, 0, -4), core.NewVec3(0, 4, 0), leftRed),
			geometry.NewQuad(core.NewVec3(-2, -2, 0), core.NewVec3(4, 0, 0), core.NewVec3(0, 4, 0), backGreen),
			geometry.NewQuad(core.NewVec3(3, -2, 1), core.NewVec3(0, 0, 4), core.NewVec3(0, 4, 0), rightBlue),
			geometry.NewQuad(core.NewVec3(-2, 3, 1), core.NewVec3(4, 0, 0), core.NewVec3(0, 0, 4), upperOrange),
			geometry.NewQuad(core.NewVec3(-2, -3, 5), core.NewVec3(4, 0, 0), core.NewVec3(0, 0, -4), lowerTeal),
		},
	}
}

// NewCuboidsScene creates three boxes of different materials on a ground quad
func NewCuboidsScene() *Scene {
	cameraConfig := renderer.CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		VFov:            40,
		LookFrom:        core.NewVec3(0, 2.5, 6),
		LookAt:          core.NewVec3(0, 0.5, 0),
		VUp:             core.NewVec3(0, 1, 0),
		DefocusAngle:    0.3,
		FocusDistance:   6.3,
	}

	ground := material.NewLambertian(core.NewVec3(0.48, 0.83, 0.53))
	clay := material.NewLambertian(core.NewVec3(0.65, 0.25, 0.2))
	brass := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.1)
	glass := material.NewDielectric(1.5)

	return &Scene{
		Name:         "cuboids",
		CameraConfig: cameraConfig,
		Shapes: []core.Shape{
			NewGroundQuad(core.NewVec3(0, 0, 0), 100, ground),
			geometry.NewCuboid(core.NewVec3(-1.6, 0.5, 0), core.NewVec3(1, 1, 1), clay),
			geometry.NewCuboid(core.NewVec3(0, 0.75, -0.5), core.NewVec3(1, 1.5, 1), brass),
			geometry.NewCuboidFromCorners(core.NewVec3(1.1, 0, 0.2), core.NewVec3(2.1, 1, 1.2), glass),
		},
		UseBVH: true,
	}
}

// NewEmptyScene creates a scene with no surfaces at all
func NewEmptyScene() *Scene {
	return &Scene{
		Name:         "empty",
		CameraConfig: renderer.DefaultCameraConfig(),
	}
}
