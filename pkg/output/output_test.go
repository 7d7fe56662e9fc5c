package output

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

func testFramebuffer() *renderer.Framebuffer {
	fb := renderer.NewFramebuffer(3, 2)
	fb.Set(0, 0, core.NewVec3(0, 0, 0))
	fb.Set(1, 0, core.NewVec3(0.25, 0.5, 1))
	fb.Set(2, 0, core.NewVec3(4, -1, math.NaN()))
	fb.Set(0, 1, core.NewVec3(0.5, 0.7, 1.0))
	fb.Set(1, 1, core.NewVec3(1, 1, 1))
	fb.Set(2, 1, core.NewVec3(math.Inf(1), 0.01, 0.0625))
	return fb
}

func TestToRGB(t *testing.T) {
	tests := []struct {
		name     string
		linear   core.Vec3
		expected [3]uint8
	}{
		{"Black", core.NewVec3(0, 0, 0), [3]uint8{0, 0, 0}},
		{"Gamma 2", core.NewVec3(0.25, 0.0625, 0.5), [3]uint8{128, 64, 181}},
		{"Clamped white", core.NewVec3(1, 4, 100), [3]uint8{255, 255, 255}},
		{"Negative and NaN", core.NewVec3(-1, math.NaN(), math.Inf(1)), [3]uint8{0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := ToRGB(tt.linear)
			if got := [3]uint8{r, g, b}; got != tt.expected {
				t.Errorf("ToRGB(%v) = %v, want %v", tt.linear, got, tt.expected)
			}
		})
	}
}

func TestWritePPM(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePPM(&buf, testFramebuffer()); err != nil {
		t.Fatalf("WritePPM() error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3+6 {
		t.Fatalf("Expected header plus 6 pixel lines, got %d lines", len(lines))
	}
	if lines[0] != "P3" || lines[1] != "3 2" || lines[2] != "255" {
		t.Errorf("Unexpected header %q", lines[:3])
	}
	expected := []string{"0 0 0", "128 181 255", "255 0 0", "181 214 255", "255 255 255", "255 25 64"}
	for i, want := range expected {
		if lines[3+i] != want {
			t.Errorf("Pixel %d: got %q, want %q", i, lines[3+i], want)
		}
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, testFramebuffer()); err != nil {
		t.Fatalf("WritePNG() error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("Unexpected bounds %v", img.Bounds())
	}
	r, g, b, a := img.At(1, 0).RGBA()
	if r>>8 != 128 || g>>8 != 181 || b>>8 != 255 || a>>8 != 255 {
		t.Errorf("Unexpected pixel (1,0): %d %d %d %d", r>>8, g>>8, b>>8, a>>8)
	}
}

func TestParseFormatAndCodec(t *testing.T) {
	if f, err := ParseFormat("PNG"); err != nil || f != FormatPNG {
		t.Errorf("ParseFormat(PNG) = %v, %v", f, err)
	}
	if _, err := ParseFormat("jpeg"); err == nil {
		t.Error("ParseFormat(jpeg) should fail")
	}
	if c, err := ParseCodec("zstd"); err != nil || c != CodecZstd {
		t.Errorf("ParseCodec(zstd) = %v, %v", c, err)
	}
	if c, err := ParseCodec(""); err != nil || c != CodecNone {
		t.Errorf("ParseCodec(\"\") = %v, %v", c, err)
	}
	if _, err := ParseCodec("gzip"); err == nil {
		t.Error("ParseCodec(gzip) should fail")
	}
}

func TestRawRoundTrip(t *testing.T) {
	fb := renderer.NewFramebuffer(5, 4)
	for i := range fb.Pixels {
		// Exactly representable in float32
		fb.Pixels[i] = core.NewVec3(float64(i)*0.25, float64(i)*0.5, 1.0/float64(i+1))
	}

	for _, codec := range []Codec{CodecNone, CodecZstd, CodecSnappy} {
		t.Run(string(codec), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteRaw(&buf, fb, codec); err != nil {
				t.Fatalf("WriteRaw() error: %v", err)
			}
			decoded, err := ReadRaw(&buf, codec)
			if err != nil {
				t.Fatalf("ReadRaw() error: %v", err)
			}
			if decoded.Width != fb.Width || decoded.Height != fb.Height {
				t.Fatalf("Dimensions %dx%d, want %dx%d", decoded.Width, decoded.Height, fb.Width, fb.Height)
			}
			for i, want := range fb.Pixels {
				got := decoded.Pixels[i]
				if math.Abs(got.X-want.X) > 1e-6 || math.Abs(got.Y-want.Y) > 1e-6 || math.Abs(got.Z-want.Z) > 1e-6 {
					t.Fatalf("Pixel %d: got %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestRawCompressionShrinksFlatImage(t *testing.T) {
	fb := renderer.NewFramebuffer(64, 64)
	for i := range fb.Pixels {
		fb.Pixels[i] = core.NewVec3(0.5, 0.7, 1.0)
	}

	var plain, compressed bytes.Buffer
	if err := WriteRaw(&plain, fb, CodecNone); err != nil {
		t.Fatal(err)
	}
	if err := WriteRaw(&compressed, fb, CodecZstd); err != nil {
		t.Fatal(err)
	}
	if plain.Len() != rawHeaderSize+64*64*12 {
		t.Errorf("Uncompressed dump should be %d bytes, got %d", rawHeaderSize+64*64*12, plain.Len())
	}
	if compressed.Len() >= plain.Len()/10 {
		t.Errorf("zstd should compress a flat image well: %d vs %d bytes", compressed.Len(), plain.Len())
	}
}

func TestReadRawRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"Wrong magic", []byte("PNG\x00\x01\x00\x00\x00\x01\x00\x00\x00")},
		{"Zero width", append([]byte("RGBF"), 0, 0, 0, 0, 1, 0, 0, 0)},
		{"Truncated pixels", append([]byte("RGBF"), 2, 0, 0, 0, 1, 0, 0, 0, 1, 2, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadRaw(bytes.NewReader(tt.data), CodecNone); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestSaveAndLoadFiles(t *testing.T) {
	dir := t.TempDir()
	fb := testFramebuffer()
	fb.Set(2, 0, core.NewVec3(4, 0, 0.5))
	fb.Set(2, 1, core.NewVec3(2, 0.01, 0.0625))

	imagePath := filepath.Join(dir, "nested", "render.ppm")
	if err := SaveImage(imagePath, fb, FormatPPM); err != nil {
		t.Fatalf("SaveImage() error: %v", err)
	}
	data, err := os.ReadFile(imagePath)
	if err != nil || !strings.HasPrefix(string(data), "P3\n3 2\n255\n") {
		t.Errorf("Unexpected PPM file: %q, %v", data, err)
	}

	for _, codec := range []Codec{CodecZstd, CodecSnappy} {
		path, err := SaveRaw(filepath.Join(dir, "render"), fb, codec)
		if err != nil {
			t.Fatalf("SaveRaw(%s) error: %v", codec, err)
		}
		if !strings.HasSuffix(path, codec.Extension()) || CodecFromPath(path) != codec {
			t.Errorf("Unexpected raw path %q for %s", path, codec)
		}
		loaded, err := LoadRaw(path)
		if err != nil {
			t.Fatalf("LoadRaw(%s) error: %v", path, err)
		}
		if loaded.At(1, 0) != fb.At(1, 0) {
			t.Errorf("Loaded pixel %v, want %v", loaded.At(1, 0), fb.At(1, 0))
		}
	}
}
