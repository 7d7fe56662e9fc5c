package renderer

import (
	"context"
	"runtime"
	"sync"
)

// TileJob asks a worker to bring every pixel of a tile up to TargetSamples
type TileJob struct {
	Ctx           context.Context
	Index         int // Position of the tile in the grid
	Tile          *Tile
	TargetSamples int
	Accum         [][]PixelStats // Whole-image accumulator, tiles never overlap
}

// TileDone reports a finished (or skipped) tile job
type TileDone struct {
	Index int
	Stats RenderStats
	Err   error
}

// WorkerPool runs tile jobs on a fixed set of goroutines sharing one TileRenderer
type WorkerPool struct {
	renderer *TileRenderer
	jobs     chan TileJob
	done     chan TileDone
	size     int

	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewWorkerPool creates a pool able to queue a full pass of queueDepth tiles without blocking.
// A non-positive size uses one worker per CPU.
func NewWorkerPool(raytracer *Raytracer, queueDepth, size int) *WorkerPool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	queueDepth = max(1, queueDepth)

	return &WorkerPool{
		renderer: NewTileRenderer(raytracer),
		jobs:     make(chan TileJob, queueDepth),
		done:     make(chan TileDone, queueDepth),
		size:     size,
	}
}

// Start launches the workers. Later calls do nothing.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		wp.wg.Add(wp.size)
		for i := 0; i < wp.size; i++ {
			go wp.work()
		}
	})
}

// Stop waits for queued jobs to drain and closes the result channel
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.jobs)
		wp.wg.Wait()
		close(wp.done)
	})
}

// Submit queues a job
func (wp *WorkerPool) Submit(job TileJob) {
	wp.jobs <- job
}

// Next blocks for the next finished job. ok is false once the pool is stopped.
func (wp *WorkerPool) Next() (done TileDone, ok bool) {
	done, ok = <-wp.done
	return done, ok
}

// Size returns the number of workers
func (wp *WorkerPool) Size() int {
	return wp.size
}

func (wp *WorkerPool) work() {
	defer wp.wg.Done()

	for job := range wp.jobs {
		// Cancelled jobs are still answered so the collector's count stays exact
		if job.Ctx != nil {
			if err := job.Ctx.Err(); err != nil {
				wp.done <- TileDone{Index: job.Index, Err: err}
				continue
			}
		}

		stats := wp.renderer.RenderTileBounds(job.Tile.Bounds, job.Accum, job.Tile.Sampler, job.TargetSamples)
		wp.done <- TileDone{Index: job.Index, Stats: stats}
	}
}
