package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Vec3Cfg is a JSON triple [x, y, z]
type Vec3Cfg [3]float64

func (v Vec3Cfg) vec() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func (v Vec3Cfg) isZero() bool {
	return v == Vec3Cfg{}
}

type CameraCfg struct {
	AspectRatio     float64 `json:"aspectRatio,omitempty"`
	ImageWidth      int     `json:"imageWidth,omitempty"`
	SamplesPerPixel int     `json:"samplesPerPixel,omitempty"`
	MaxDepth        int     `json:"maxDepth,omitempty"`
	VFov            float64 `json:"vfov,omitempty"`
	LookFrom        Vec3Cfg `json:"lookFrom"`
	LookAt          Vec3Cfg `json:"lookAt"`
	VUp             Vec3Cfg `json:"vup,omitempty"`
	DefocusAngle    float64 `json:"defocusAngle,omitempty"`
	FocusDistance   float64 `json:"focusDistance,omitempty"`
}

type MaterialCfg struct {
	Type            string  `json:"type"` // "lambertian", "metal" or "dielectric"
	Albedo          Vec3Cfg `json:"albedo,omitempty"`
	Fuzz            float64 `json:"fuzz,omitempty"`
	RefractiveIndex float64 `json:"refractiveIndex,omitempty"`
}

type SphereCfg struct {
	Center   Vec3Cfg `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

type QuadCfg struct {
	Corner   Vec3Cfg `json:"corner"`
	U        Vec3Cfg `json:"u"`
	V        Vec3Cfg `json:"v"`
	Material string  `json:"material"`
}

// CuboidCfg takes either center and size, or two opposite corners
type CuboidCfg struct {
	Center   Vec3Cfg  `json:"center,omitempty"`
	Size     Vec3Cfg  `json:"size,omitempty"`
	Min      *Vec3Cfg `json:"min,omitempty"`
	Max      *Vec3Cfg `json:"max,omitempty"`
	Material string   `json:"material"`
}

// Config is the JSON scene description
type Config struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Group       string                 `json:"group,omitempty"`
	Camera      CameraCfg              `json:"camera"`
	Materials   map[string]MaterialCfg `json:"materials"`
	Spheres     []SphereCfg            `json:"spheres,omitempty"`
	Quads       []QuadCfg              `json:"quads,omitempty"`
	Cuboids     []CuboidCfg            `json:"cuboids,omitempty"`
	BVH         bool                   `json:"bvh,omitempty"`
}

// Build validates the camera block and fills unset fields from the defaults
func (c CameraCfg) Build() (renderer.CameraConfig, error) {
	cfg := renderer.DefaultCameraConfig()
	if c.AspectRatio != 0 {
		cfg.AspectRatio = c.AspectRatio
	}
	if c.ImageWidth != 0 {
		cfg.ImageWidth = c.ImageWidth
	}
	if c.SamplesPerPixel != 0 {
		cfg.SamplesPerPixel = c.SamplesPerPixel
	}
	if c.MaxDepth != 0 {
		cfg.MaxDepth = c.MaxDepth
	}
	if c.VFov != 0 {
		cfg.VFov = c.VFov
	}
	cfg.LookFrom = c.LookFrom.vec()
	if !c.LookAt.isZero() || !c.LookFrom.isZero() {
		cfg.LookAt = c.LookAt.vec()
	}
	if !c.VUp.isZero() {
		cfg.VUp = c.VUp.vec()
	}
	cfg.DefocusAngle = c.DefocusAngle
	if c.FocusDistance != 0 {
		cfg.FocusDistance = c.FocusDistance
	} else if c.DefocusAngle > 0 {
		// Focus on the look-at point when only an aperture is given
		cfg.FocusDistance = cfg.LookFrom.Subtract(cfg.LookAt).Length()
	}

	if err := cfg.Validate(); err != nil {
		return renderer.CameraConfig{}, err
	}
	return cfg, nil
}

// Build validates and constructs the runtime material
func (m MaterialCfg) Build() (core.Material, error) {
	switch strings.ToLower(m.Type) {
	case "lambertian", "diffuse":
		return material.NewLambertian(m.Albedo.vec()), nil
	case "metal":
		if m.Fuzz < 0 || m.Fuzz > 1 {
			return nil, fmt.Errorf("metal fuzz must be in [0, 1], got %v", m.Fuzz)
		}
		return material.NewMetal(m.Albedo.vec(), m.Fuzz), nil
	case "dielectric", "glass":
		if m.RefractiveIndex <= 0 {
			return nil, fmt.Errorf("dielectric refractive index must be > 0, got %v", m.RefractiveIndex)
		}
		return material.NewDielectric(m.RefractiveIndex), nil
	default:
		return nil, fmt.Errorf("unknown material type %q", m.Type)
	}
}

// Build validates the whole description and constructs the scene
func (c Config) Build() (*Scene, error) {
	cameraConfig, err := c.Camera.Build()
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}

	materials := make(map[string]core.Material, len(c.Materials))
	for name, mc := range c.Materials {
		m, err := mc.Build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}
	lookup := func(kind string, index int, name string) (core.Material, error) {
		m, ok := materials[name]
		if !ok {
			return nil, fmt.Errorf("%s[%d]: unknown material %q", kind, index, name)
		}
		return m, nil
	}

	var shapes []core.Shape
	for i, sc := range c.Spheres {
		if sc.Radius <= 0 {
			return nil, fmt.Errorf("spheres[%d]: radius must be > 0, got %v", i, sc.Radius)
		}
		m, err := lookup("spheres", i, sc.Material)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, geometry.NewSphere(sc.Center.vec(), sc.Radius, m))
	}
	for i, qc := range c.Quads {
		if qc.U.vec().Cross(qc.V.vec()).NearZero() {
			return nil, fmt.Errorf("quads[%d]: edge vectors must not be parallel", i)
		}
		m, err := lookup("quads", i, qc.Material)
		if err != nil {
			return nil, err
		}
		shapes = append(shapes, geometry.NewQuad(qc.Corner.vec(), qc.U.vec(), qc.V.vec(), m))
	}
	for i, cc := range c.Cuboids {
		m, err := lookup("cuboids", i, cc.Material)
		if err != nil {
			return nil, err
		}
		switch {
		case cc.Min != nil && cc.Max != nil:
			shapes = append(shapes, geometry.NewCuboidFromCorners(cc.Min.vec(), cc.Max.vec(), m))
		case cc.Min != nil || cc.Max != nil:
			return nil, fmt.Errorf("cuboids[%d]: min and max must be given together", i)
		case cc.Size.isZero():
			return nil, fmt.Errorf("cuboids[%d]: size or min/max corners required", i)
		default:
			shapes = append(shapes, geometry.NewCuboid(cc.Center.vec(), cc.Size.vec(), m))
		}
	}

	name := c.Name
	if name == "" {
		name = "custom"
	}
	return &Scene{
		Name:         name,
		CameraConfig: cameraConfig,
		Shapes:       shapes,
		UseBVH:       c.BVH,
	}, nil
}

// ParseConfig decodes a JSON scene description and builds the scene
func ParseConfig(data []byte) (*Scene, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scene JSON: %w", err)
	}
	return cfg.Build()
}

// LoadConfig reads a JSON scene file and builds the scene
func LoadConfig(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	s, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}
