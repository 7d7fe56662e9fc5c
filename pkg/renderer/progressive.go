package renderer

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// RenderConfig contains configuration for tiled progressive rendering
type RenderConfig struct {
	TileSize       int   // Size of each square tile in pixels
	InitialSamples int   // Samples for the first pass when more than one pass is rendered
	MaxPasses      int   // Number of passes; the last one reaches the camera's samples per pixel
	NumWorkers     int   // Number of parallel workers (0 = use CPU count)
	Seed           int64 // Base seed; every tile derives its own sampler from it
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		TileSize:       32,
		InitialSamples: 1,
		MaxPasses:      1,
		NumWorkers:     runtime.NumCPU(),
		Seed:           42,
	}
}

// ProgressiveRaytracer renders tiles in parallel over one or more passes
type ProgressiveRaytracer struct {
	width, height int
	maxSamples    int
	config        RenderConfig
	tiles         []*Tile        // Tile management
	currentPass   int            // Progressive state
	pixelStats    [][]PixelStats // Shared pixel statistics array (global image coordinates)
	raytracer     *Raytracer     // Base raytracer for actual rendering
	workerPool    *WorkerPool    // Worker pool for parallel processing
	logger        core.Logger    // Logger for rendering output
}

// NewProgressiveRaytracer creates a new progressive raytracer for world seen through camera
func NewProgressiveRaytracer(world core.Shape, camera *Camera, config RenderConfig, logger core.Logger) *ProgressiveRaytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	width, height := camera.ImageWidth(), camera.ImageHeight()
	maxSamples := camera.Config().SamplesPerPixel

	// Every pass must add at least one sample
	config.MaxPasses = max(1, min(config.MaxPasses, maxSamples))
	config.InitialSamples = max(1, min(config.InitialSamples, maxSamples))

	raytracer := NewRaytracer(world, camera, logger)
	tiles := NewTileGrid(width, height, config.TileSize, config.Seed)

	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}

	return &ProgressiveRaytracer{
		width:      width,
		height:     height,
		maxSamples: maxSamples,
		config:     config,
		tiles:      tiles,
		pixelStats: pixelStats,
		raytracer:  raytracer,
		workerPool: NewWorkerPool(raytracer, len(tiles), config.NumWorkers),
		logger:     logger,
	}
}

// Tiles returns the tile grid
func (pr *ProgressiveRaytracer) Tiles() []*Tile {
	return pr.tiles
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 || passNumber >= pr.config.MaxPasses {
		return pr.maxSamples
	}

	// For multiple passes: first pass is quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.maxSamples - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := max(1, remainingSamples/remainingPasses)

	return min(pr.maxSamples, pr.config.InitialSamples+(passNumber-1)*samplesPerPass)
}

// RenderPass renders a single progressive pass using parallel processing.
// Tile callbacks run on the calling goroutine in completion order.
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int, tileCallback func(TileCompletionResult)) (*Framebuffer, RenderStats, error) {
	startTime := time.Now()
	pr.currentPass = passNumber
	targetSamples := pr.getSamplesForPass(passNumber)

	pr.logger.Printf("Pass %d: Target %d samples per pixel (using %d workers)...\n",
		passNumber, targetSamples, pr.workerPool.Size())

	pr.workerPool.Start()
	for index, tile := range pr.tiles {
		pr.workerPool.Submit(TileJob{
			Ctx:           ctx,
			Index:         index,
			Tile:          tile,
			TargetSamples: targetSamples,
			Accum:         pr.pixelStats,
		})
	}

	// Every submitted job is answered, so drain all of them even after a failure
	var firstErr error
	for completed := 1; completed <= len(pr.tiles); completed++ {
		done, ok := pr.workerPool.Next()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if done.Err != nil {
			if firstErr == nil {
				firstErr = done.Err
			}
			continue
		}

		tile := pr.tiles[done.Index]
		tile.PassesCompleted++
		pr.logger.Printf("\rTiles remaining: %d ", len(pr.tiles)-completed)

		if tileCallback != nil && firstErr == nil {
			tileSize := max(1, pr.config.TileSize)
			tileCallback(TileCompletionResult{
				TileX:      tile.Bounds.Min.X / tileSize,
				TileY:      tile.Bounds.Min.Y / tileSize,
				Bounds:     tile.Bounds,
				Pixels:     pr.extractTile(tile),
				PassNumber: passNumber,

				TileNumber:  completed,
				TotalTiles:  len(pr.tiles),
				TotalPasses: pr.config.MaxPasses,
			})
		}
	}
	pr.logger.Printf("\n")
	if firstErr != nil {
		return nil, RenderStats{}, firstErr
	}

	fb, stats := pr.assembleCurrentImage(targetSamples)
	stats.Duration = time.Since(startTime)
	return fb, stats, nil
}

// extractTile copies the current averaged colors of a tile into its own framebuffer
func (pr *ProgressiveRaytracer) extractTile(tile *Tile) *Framebuffer {
	bounds := tile.Bounds
	fb := NewFramebuffer(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			fb.Set(x-bounds.Min.X, y-bounds.Min.Y, pr.pixelStats[y][x].GetColor())
		}
	}
	return fb
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *Framebuffer
	Stats      RenderStats
	IsLast     bool
}

// TileCompletionResult contains information about a completed tile for callbacks
type TileCompletionResult struct {
	TileX      int // Tile coordinates (not pixel coordinates)
	TileY      int
	Bounds     image.Rectangle
	Pixels     *Framebuffer // Linear colors for just this tile
	PassNumber int          // Which pass this tile was rendered in

	// Progress information
	TileNumber  int // Current tile number in this pass (1-based)
	TotalTiles  int // Total number of tiles in the image
	TotalPasses int // Total number of passes planned
}

// RenderOptions configures progressive rendering behavior
type RenderOptions struct {
	TileUpdates bool // Whether to generate tile completion events
}

// RenderProgressive renders every pass on a background goroutine.
// The caller should read from the returned channels until the pass channel closes.
// If options.TileUpdates is false, the tile channel is closed immediately.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context, options RenderOptions) (<-chan PassResult, <-chan TileCompletionResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	tileChan := make(chan TileCompletionResult, 100)
	errChan := make(chan error, 1)

	if !options.TileUpdates {
		close(tileChan)
	}

	go func() {
		defer close(passChan)
		if options.TileUpdates {
			defer close(tileChan)
		}
		defer close(errChan)
		defer pr.workerPool.Stop()

		pr.logger.Printf("Starting rendering with %d passes...\n", pr.config.MaxPasses)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			select {
			case <-ctx.Done():
				pr.logger.Printf("Rendering cancelled before pass %d\n", pass)
				errChan <- ctx.Err()
				return
			default:
			}

			var tileCallback func(TileCompletionResult)
			if options.TileUpdates {
				tileCallback = func(result TileCompletionResult) {
					select {
					case tileChan <- result:
					case <-ctx.Done():
					default:
						// Channel full, drop the update
					}
				}
			}

			fb, stats, err := pr.RenderPass(ctx, pass, tileCallback)
			if err != nil {
				errChan <- err
				return
			}

			pr.logger.Printf("Pass %d completed in %v (%d samples/pixel)\n",
				pass, stats.Duration, stats.MaxSamplesUsed)

			isLast := pass == pr.config.MaxPasses || stats.MinSamples >= pr.maxSamples
			select {
			case passChan <- PassResult{PassNumber: pass, Image: fb, Stats: stats, IsLast: isLast}:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}

			if isLast {
				break
			}
		}
	}()

	return passChan, tileChan, errChan
}

// Render runs every pass and returns the final image
func (pr *ProgressiveRaytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	startTime := time.Now()
	passChan, _, errChan := pr.RenderProgressive(ctx, RenderOptions{})

	var last PassResult
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil {
		return nil, RenderStats{}, err
	}
	if last.Image == nil {
		return nil, RenderStats{}, fmt.Errorf("render produced no passes")
	}

	last.Stats.Duration = time.Since(startTime)
	return last.Image, last.Stats, nil
}

// assembleCurrentImage averages the shared pixel stats into a framebuffer
// and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*Framebuffer, RenderStats) {
	fb := NewFramebuffer(pr.width, pr.height)
	stats := newRenderStats(pr.width*pr.height, targetSamples)

	for y := 0; y < pr.height; y++ {
		for x := 0; x < pr.width; x++ {
			pixel := &pr.pixelStats[y][x]
			fb.Set(x, y, pixel.GetColor())
			stats.update(pixel.SampleCount)
		}
	}

	stats.finalize(0)
	return fb, stats
}
