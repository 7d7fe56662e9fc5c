package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/output"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		configPath  string
		expectError bool
	}{
		// Built-in scenes
		{"simple scene", "simple", "", false},
		{"spheres scene", "spheres", "", false},
		{"quads scene", "quads", "", false},
		{"cuboids scene", "cuboids", "", false},
		{"empty scene", "empty", "", false},

		// Scene files (by ID)
		{"three-spheres json", "json:three-spheres", "", false},
		{"box-room json", "json:box-room", "", false},

		// Scene files (by path)
		{"direct config path", "", "scenes/three-spheres.json", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", "", true},
		{"missing scene file", "json:nonexistent", "", true},
		{"escaping scene file", "json:../main", "", true},
		{"invalid config path", "", "scenes/nonexistent.json", true},
		{"empty scene name", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := &cliOptions{Scene: tt.sceneType, ScenesDir: "scenes", ConfigPath: tt.configPath}
			scene, err := createScene(opts)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if scene != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s', got %T", tt.sceneType, scene)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if scene == nil {
				t.Fatalf("Expected scene for valid scene type '%s', got nil", tt.sceneType)
			}
			if scene.CameraConfig.ImageWidth <= 0 {
				t.Errorf("Scene image width should be positive, got %d", scene.CameraConfig.ImageWidth)
			}
			if scene.CameraConfig.SamplesPerPixel <= 0 {
				t.Errorf("Scene samples per pixel should be positive, got %d", scene.CameraConfig.SamplesPerPixel)
			}
			if tt.sceneType != "empty" && scene.World == nil {
				t.Errorf("Preprocessed scene should have a world")
			}
		})
	}
}

func TestCreateSceneOverrides(t *testing.T) {
	opts := &cliOptions{Scene: "simple", Width: 64, Samples: 3, Depth: 7}
	s, err := createScene(opts)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if s.CameraConfig.ImageWidth != 64 {
		t.Errorf("Expected width 64, got %d", s.CameraConfig.ImageWidth)
	}
	if s.CameraConfig.SamplesPerPixel != 3 {
		t.Errorf("Expected 3 spp, got %d", s.CameraConfig.SamplesPerPixel)
	}
	if s.CameraConfig.MaxDepth != 7 {
		t.Errorf("Expected depth 7, got %d", s.CameraConfig.MaxDepth)
	}
}

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseFlags([]string{"-scene", "quads", "-format", "PPM", "-raw", "snappy", "-tile", "0"}, &stderr)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if opts.Scene != "quads" {
		t.Errorf("Expected scene quads, got %s", opts.Scene)
	}
	if opts.Format != output.FormatPPM {
		t.Errorf("Expected ppm format, got %s", opts.Format)
	}
	if opts.Raw != output.CodecSnappy {
		t.Errorf("Expected snappy codec, got %s", opts.Raw)
	}
	if opts.TileSize != 0 {
		t.Errorf("Expected tile size 0, got %d", opts.TileSize)
	}

	invalid := [][]string{
		{"-format", "jpeg"},
		{"-raw", "gzip"},
		{"-width", "-5"},
		{"-passes", "0"},
		{"-unknown"},
	}
	for _, args := range invalid {
		if _, err := parseFlags(args, &stderr); err == nil {
			t.Errorf("Expected error for args %v", args)
		}
	}
}

func TestCreateOutputPath(t *testing.T) {
	timestamp := time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

	tests := []struct {
		name      string
		opts      cliOptions
		sceneName string
		expected  string
	}{
		{"preset name", cliOptions{Format: output.FormatPNG}, "simple",
			filepath.Join("output", "simple", "render_20240309_140506.png")},
		{"display name", cliOptions{Format: output.FormatPPM}, "Three Spheres",
			filepath.Join("output", "three-spheres", "render_20240309_140506.ppm")},
		{"empty name", cliOptions{Format: output.FormatPNG}, "",
			filepath.Join("output", "custom", "render_20240309_140506.png")},
		{"explicit path", cliOptions{Format: output.FormatPNG, OutPath: "out/image.png"}, "simple",
			"out/image.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := createOutputPath(&tt.opts, tt.sceneName, timestamp)
			if result != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestRunWritesImageAndRawDump(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "render.ppm")

	for _, tile := range []string{"0", "8"} {
		t.Run("tile "+tile, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			args := []string{
				"-scene", "simple", "-width", "16", "-spp", "2", "-depth", "4",
				"-tile", tile, "-workers", "2", "-format", "ppm", "-raw", "zstd",
				"-out", imagePath,
			}
			if err := run(args, &stdout, &stderr); err != nil {
				t.Fatalf("run failed: %v (stderr: %s)", err, stderr.String())
			}

			data, err := os.ReadFile(imagePath)
			if err != nil {
				t.Fatalf("Image not written: %v", err)
			}
			if !strings.HasPrefix(string(data), "P3\n16 ") {
				t.Errorf("Unexpected PPM header: %q", string(data[:min(len(data), 12)]))
			}

			fb, err := output.LoadRaw(filepath.Join(dir, "render.rgbf.zst"))
			if err != nil {
				t.Fatalf("Raw dump not readable: %v", err)
			}
			if fb.Width != 16 || fb.Height <= 0 {
				t.Errorf("Unexpected raw dump size %dx%d", fb.Width, fb.Height)
			}
		})
	}
}

func TestRunHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"-help"}, &stdout, &stderr); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"simple", "cuboids", "json:three-spheres"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("Help output missing %q", want)
		}
	}
}
