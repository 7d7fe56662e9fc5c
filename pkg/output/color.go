package output

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// linearToGamma applies gamma 2 encoding; negative and non-finite inputs map to 0
func linearToGamma(linear float64) float64 {
	switch {
	case math.IsInf(linear, 1):
		return 1
	case linear > 0:
		return math.Sqrt(linear)
	default:
		return 0
	}
}

// quantize maps a gamma-encoded component into a byte, clamping to [0, 0.999]
func quantize(c float64) uint8 {
	return uint8(256 * math.Max(0, math.Min(0.999, c)))
}

// ToRGB converts a linear color to gamma-encoded 8-bit components
func ToRGB(linear core.Vec3) (r, g, b uint8) {
	return quantize(linearToGamma(linear.X)),
		quantize(linearToGamma(linear.Y)),
		quantize(linearToGamma(linear.Z))
}

// ToImage converts a linear framebuffer into an 8-bit sRGB-ish image
func ToImage(fb *renderer.Framebuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			r, g, b := ToRGB(fb.At(x, y))
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}
