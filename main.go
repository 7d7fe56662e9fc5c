package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// cliOptions holds the parsed command line
type cliOptions struct {
	Scene      string
	ScenesDir  string
	ConfigPath string
	Width      int
	Samples    int
	Depth      int
	Workers    int
	TileSize   int
	Passes     int
	Seed       int64
	Format     output.Format
	Raw        output.Codec
	OutPath    string
	Help       bool
}

func parseFlags(args []string, stderr io.Writer) (*cliOptions, error) {
	defaults := renderer.DefaultRenderConfig()
	opts := &cliOptions{}
	var format, raw string

	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.Scene, "scene", "simple", "Scene: "+strings.Join(scene.PresetNames(), ", ")+" or json:<name>")
	fs.StringVar(&opts.ScenesDir, "scenes", "scenes", "Directory searched for json:<name> scenes")
	fs.StringVar(&opts.ConfigPath, "config", "", "JSON scene description file (overrides -scene)")
	fs.IntVar(&opts.Width, "width", 0, "Image width in pixels (0 = scene default)")
	fs.IntVar(&opts.Samples, "spp", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.Depth, "depth", 0, "Maximum ray bounce depth (0 = scene default)")
	fs.IntVar(&opts.Workers, "workers", defaults.NumWorkers, "Number of parallel workers")
	fs.IntVar(&opts.TileSize, "tile", defaults.TileSize, "Tile size in pixels (0 = single-threaded scanline render)")
	fs.IntVar(&opts.Passes, "passes", defaults.MaxPasses, "Number of progressive passes")
	fs.Int64Var(&opts.Seed, "seed", defaults.Seed, "Random seed")
	fs.StringVar(&format, "format", string(output.FormatPNG), "Image format: ppm or png")
	fs.StringVar(&raw, "raw", string(output.CodecNone), "Also dump linear radiance: none, zstd or snappy")
	fs.StringVar(&opts.OutPath, "out", "", "Output file (default output/<scene>/render_<timestamp>.<format>)")
	fs.BoolVar(&opts.Help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var err error
	if opts.Format, err = output.ParseFormat(format); err != nil {
		return nil, err
	}
	if opts.Raw, err = output.ParseCodec(raw); err != nil {
		return nil, err
	}
	if opts.Width < 0 || opts.Samples < 0 || opts.Depth < 0 || opts.TileSize < 0 || opts.Passes < 1 {
		return nil, fmt.Errorf("width, spp, depth and tile must not be negative, passes must be at least 1")
	}
	return opts, nil
}

func printHelp(w io.Writer, scenesDir string) {
	fmt.Fprintln(w, "Weekend Raytracer")
	fmt.Fprintln(w, "Usage: raytracer [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Available scenes:")
	for _, preset := range scene.Presets {
		fmt.Fprintf(w, "  %-8s - %s\n", preset.ID, preset.Description)
	}
	fmt.Fprintln(w)
	if scenes, err := scene.ListJSONScenes(scenesDir); err == nil && len(scenes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Scene files:")
		for _, info := range scenes {
			fmt.Fprintf(w, "  %-20s - %s\n", info.ID, info.Description)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use -config <file.json> to render any scene description file.")
	fmt.Fprintln(w, "Output will be saved to output/<scene>/render_<timestamp>.<format>")
}

// createScene loads the requested scene and applies command line overrides
func createScene(opts *cliOptions) (*scene.Scene, error) {
	var s *scene.Scene
	var err error
	if opts.ConfigPath != "" {
		s, err = scene.LoadConfig(opts.ConfigPath)
	} else {
		s, err = scene.Load(opts.Scene, opts.ScenesDir)
	}
	if err != nil {
		return nil, err
	}

	if opts.Width > 0 {
		s.CameraConfig.ImageWidth = opts.Width
	}
	if opts.Samples > 0 {
		s.CameraConfig.SamplesPerPixel = opts.Samples
	}
	if opts.Depth > 0 {
		s.CameraConfig.MaxDepth = opts.Depth
	}

	if err := s.Preprocess(); err != nil {
		return nil, err
	}
	return s, nil
}

// createOutputPath returns the image path for a render started at timestamp
func createOutputPath(opts *cliOptions, sceneName string, timestamp time.Time) string {
	if opts.OutPath != "" {
		return opts.OutPath
	}
	name := strings.ToLower(strings.Join(strings.Fields(filepath.Base(sceneName)), "-"))
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "custom"
	}
	return filepath.Join("output", name,
		fmt.Sprintf("render_%s%s", timestamp.Format("20060102_150405"), opts.Format.Extension()))
}

// render draws the scene either tile-parallel or on a single goroutine
func render(ctx context.Context, s *scene.Scene, opts *cliOptions, logger core.Logger) (*renderer.Framebuffer, renderer.RenderStats, error) {
	camera := s.NewCamera()

	if opts.TileSize == 0 {
		rt := renderer.NewRaytracer(s.World, camera, logger)
		return rt.Render(ctx, core.NewSeededSampler(opts.Seed))
	}

	config := renderer.RenderConfig{
		TileSize:       opts.TileSize,
		InitialSamples: 1,
		MaxPasses:      opts.Passes,
		NumWorkers:     opts.Workers,
		Seed:           opts.Seed,
	}
	return renderer.NewProgressiveRaytracer(s.World, camera, config, logger).Render(ctx)
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.Help {
		printHelp(stdout, opts.ScenesDir)
		return nil
	}

	logger := renderer.NewDefaultLogger()
	logger.Printf("Starting Weekend Raytracer...\n")

	s, err := createScene(opts)
	if err != nil {
		return fmt.Errorf("error creating scene: %w", err)
	}
	camera := s.CameraConfig
	logger.Printf("Scene %q: %d primitives, %dx%d, %d spp, depth %d\n",
		s.Name, s.GetPrimitiveCount(), camera.ImageWidth, s.NewCamera().ImageHeight(),
		camera.SamplesPerPixel, camera.MaxDepth)

	startTime := time.Now()
	fb, stats, err := render(context.Background(), s, opts, logger)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	logger.Printf("Render completed in %v\n", time.Since(startTime))
	logger.Printf("Samples per pixel: %.1f (range %d - %d)\n",
		stats.AverageSamples, stats.MinSamples, stats.MaxSamplesUsed)

	path := createOutputPath(opts, s.Name, startTime)
	if err := output.SaveImage(path, fb, opts.Format); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", path)

	if opts.Raw != output.CodecNone {
		rawPath, err := output.SaveRaw(strings.TrimSuffix(path, filepath.Ext(path)), fb, opts.Raw)
		if err != nil {
			return err
		}
		logger.Printf("Linear radiance saved as %s\n", rawPath)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
