package output

import (
	"bufio"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Format selects the image file format
type Format string

const (
	FormatPPM Format = "ppm"
	FormatPNG Format = "png"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatPPM:
		return FormatPPM, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown image format %q (want ppm or png)", name)
	}
}

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// WritePPM writes the framebuffer as a plain-text P3 image, top row first
func WritePPM(w io.Writer, fb *renderer.Framebuffer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", fb.Width, fb.Height); err != nil {
		return err
	}
	for _, pixel := range fb.Pixels {
		r, g, b := ToRGB(pixel)
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", r, g, b); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WritePNG writes the framebuffer as a PNG image
func WritePNG(w io.Writer, fb *renderer.Framebuffer) error {
	return png.Encode(w, ToImage(fb))
}

// Write encodes the framebuffer in the given format
func Write(w io.Writer, fb *renderer.Framebuffer, format Format) error {
	switch format {
	case FormatPPM:
		return WritePPM(w, fb)
	case FormatPNG:
		return WritePNG(w, fb)
	default:
		return fmt.Errorf("unknown image format %q", format)
	}
}

// SaveImage writes the framebuffer to path, creating parent directories
func SaveImage(path string, fb *renderer.Framebuffer, format Format) error {
	return saveFile(path, func(w io.Writer) error {
		return Write(w, fb, format)
	})
}

func saveFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing %s: %w", path, cerr)
		}
	}()

	if err := write(file); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}
