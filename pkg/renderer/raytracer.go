package renderer

import (
	"context"
	"math"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// shadowAcneEpsilon excludes hits right at the origin of a bounced ray
const shadowAcneEpsilon = 0.001

// Background gradient endpoints: white at the horizon below, sky blue above
var (
	backgroundBottom = core.NewVec3(1.0, 1.0, 1.0)
	backgroundTop    = core.NewVec3(0.5, 0.7, 1.0)
)

// Raytracer resolves ray colors against a world and renders scanline by scanline
type Raytracer struct {
	world  core.Shape
	camera *Camera
	logger core.Logger
}

// NewRaytracer creates a new raytracer. A nil world renders as an empty scene.
func NewRaytracer(world core.Shape, camera *Camera, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Raytracer{
		world:  world,
		camera: camera,
		logger: logger,
	}
}

// Camera returns the camera used for ray generation
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// BackgroundColor returns the sky gradient seen along a ray that hits nothing
func BackgroundColor(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	a := 0.5 * (unitDirection.Y + 1.0)
	return backgroundBottom.Lerp(backgroundTop, a)
}

// RayColor returns the radiance carried back along r with at most depth bounces
func (rt *Raytracer) RayColor(r core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	if rt.world == nil {
		return BackgroundColor(r)
	}

	hit, isHit := rt.world.Hit(r, core.NewInterval(shadowAcneEpsilon, math.Inf(1)))
	if !isHit {
		return BackgroundColor(r)
	}

	if hit.Material == nil {
		return core.Vec3{}
	}

	scatter, didScatter := hit.Material.Scatter(r, *hit, sampler)
	if !didScatter {
		return core.Vec3{} // Material absorbed the ray
	}

	return scatter.Attenuation.MultiplyVec(rt.RayColor(scatter.Scattered, depth-1, sampler))
}

// SamplePixel adds samples to a pixel until it holds targetSamples and returns how many were taken
func (rt *Raytracer) SamplePixel(i, j int, ps *PixelStats, sampler core.Sampler, targetSamples int) int {
	taken := 0
	maxDepth := rt.camera.Config().MaxDepth
	for ps.SampleCount < targetSamples {
		ray := rt.camera.GetRay(i, j, sampler)
		ps.AddSample(rt.RayColor(ray, maxDepth, sampler))
		taken++
	}
	return taken
}

// Render renders the whole image on the calling goroutine, top row first,
// reporting the number of scanlines left after each row.
func (rt *Raytracer) Render(ctx context.Context, sampler core.Sampler) (*Framebuffer, RenderStats, error) {
	startTime := time.Now()
	width, height := rt.camera.ImageWidth(), rt.camera.ImageHeight()
	spp := rt.camera.Config().SamplesPerPixel

	fb := NewFramebuffer(width, height)
	stats := newRenderStats(width*height, spp)

	for j := 0; j < height; j++ {
		if err := ctx.Err(); err != nil {
			return nil, RenderStats{}, err
		}
		rt.logger.Printf("\rScanlines remaining: %d ", height-j)

		for i := 0; i < width; i++ {
			var ps PixelStats
			stats.update(rt.SamplePixel(i, j, &ps, sampler, spp))
			fb.Set(i, j, ps.GetColor())
		}
	}
	rt.logger.Printf("\rDone.                 \n")

	stats.finalize(time.Since(startTime))
	return fb, stats, nil
}
