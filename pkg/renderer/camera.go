package renderer

import (
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	AspectRatio     float64   // Ratio of image width over height
	ImageWidth      int       // Rendered image width in pixels
	SamplesPerPixel int       // Number of random samples for each pixel
	MaxDepth        int       // Maximum number of ray bounces into the scene
	VFov            float64   // Vertical view angle (field of view) in degrees
	LookFrom        core.Vec3 // Point the camera is looking from
	LookAt          core.Vec3 // Point the camera is looking at
	VUp             core.Vec3 // Camera-relative "up" direction
	DefocusAngle    float64   // Variation angle of rays through each pixel (0 = pinhole)
	FocusDistance   float64   // Distance from LookFrom to the plane of perfect focus
}

// DefaultCameraConfig returns a 16:9 camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      400,
		SamplesPerPixel: 10,
		MaxDepth:        10,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		VUp:             core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDistance:   10,
	}
}

// Validate reports the first configuration value that cannot produce an image
func (c CameraConfig) Validate() error {
	if c.AspectRatio <= 0 || math.IsNaN(c.AspectRatio) || math.IsInf(c.AspectRatio, 0) {
		return fmt.Errorf("aspect ratio must be positive, got %v", c.AspectRatio)
	}
	if c.ImageWidth <= 0 {
		return fmt.Errorf("image width must be positive, got %d", c.ImageWidth)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel must be positive, got %d", c.SamplesPerPixel)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	}
	if c.VFov <= 0 || c.VFov >= 180 {
		return fmt.Errorf("vertical field of view must be in (0, 180), got %v", c.VFov)
	}
	if c.DefocusAngle < 0 || c.DefocusAngle >= 180 {
		return fmt.Errorf("defocus angle must be in [0, 180), got %v", c.DefocusAngle)
	}
	if c.FocusDistance <= 0 {
		return fmt.Errorf("focus distance must be positive, got %v", c.FocusDistance)
	}
	if c.LookFrom.Subtract(c.LookAt).NearZero() {
		return fmt.Errorf("look-from and look-at must differ")
	}
	if c.VUp.Cross(c.LookFrom.Subtract(c.LookAt)).NearZero() {
		return fmt.Errorf("up vector must not be parallel to the view direction")
	}
	return nil
}

// Camera generates rays for rendering
type Camera struct {
	config CameraConfig

	imageHeight  int       // Rendered image height
	center       core.Vec3 // Camera center
	pixel00Loc   core.Vec3 // Location of pixel 0, 0
	pixelDeltaU  core.Vec3 // Offset to pixel to the right
	pixelDeltaV  core.Vec3 // Offset to pixel below
	u, v, w      core.Vec3 // Camera frame basis vectors
	defocusDiskU core.Vec3 // Defocus disk horizontal radius
	defocusDiskV core.Vec3 // Defocus disk vertical radius
}

// NewCamera creates a camera and computes its viewport geometry
func NewCamera(config CameraConfig) *Camera {
	camera := &Camera{config: config}
	camera.Initialize()
	return camera
}

// Initialize derives the viewport and basis from the configuration.
// All derived state is recomputed from the config, so repeated calls give identical results.
func (c *Camera) Initialize() {
	cfg := c.config

	c.imageHeight = max(1, int(float64(cfg.ImageWidth)/cfg.AspectRatio))
	c.center = cfg.LookFrom

	// Viewport dimensions
	theta := cfg.VFov * math.Pi / 180
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * cfg.FocusDistance
	viewportWidth := viewportHeight * (float64(cfg.ImageWidth) / float64(c.imageHeight))

	// Orthonormal camera basis
	c.w = cfg.LookFrom.Subtract(cfg.LookAt).Normalize()
	c.u = cfg.VUp.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := c.u.Multiply(viewportWidth)
	viewportV := c.v.Negate().Multiply(viewportHeight)

	c.pixelDeltaU = viewportU.Multiply(1 / float64(cfg.ImageWidth))
	c.pixelDeltaV = viewportV.Multiply(1 / float64(c.imageHeight))

	viewportUpperLeft := c.center.
		Subtract(c.w.Multiply(cfg.FocusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))
	c.pixel00Loc = viewportUpperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Multiply(0.5))

	defocusRadius := cfg.FocusDistance * math.Tan(cfg.DefocusAngle/2*math.Pi/180)
	c.defocusDiskU = c.u.Multiply(defocusRadius)
	c.defocusDiskV = c.v.Multiply(defocusRadius)
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}

// ImageWidth returns the rendered image width in pixels
func (c *Camera) ImageWidth() int {
	return c.config.ImageWidth
}

// ImageHeight returns the rendered image height in pixels (at least 1)
func (c *Camera) ImageHeight() int {
	return c.imageHeight
}

// GetRay constructs a ray through a random point in the footprint of pixel (i, j),
// originating from the defocus disk when depth of field is enabled.
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := core.SampleSquare(sampler.Get2D())
	pixelSample := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y))

	origin := c.center
	if c.config.DefocusAngle > 0 {
		origin = c.defocusDiskSample(sampler)
	}

	return core.NewRay(origin, pixelSample.Subtract(origin))
}

// GetCenterRay returns the ray through the exact center of pixel (i, j) from the lens center
func (c *Camera) GetCenterRay(i, j int) core.Ray {
	pixelCenter := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i))).
		Add(c.pixelDeltaV.Multiply(float64(j)))
	return core.NewRay(c.center, pixelCenter.Subtract(c.center))
}

// defocusDiskSample returns a random point on the camera defocus disk
func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Vec3 {
	p := core.SamplePointInUnitDisk(sampler.Get2D())
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}
