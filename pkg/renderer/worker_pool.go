package renderer

import (
	"context"
	"image"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df07/go-bvh-pathtracer/log"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// TileResult is a rendered tile handed back to the compositor
type TileResult struct {
	Tile   Tile
	Image  *image.RGBA
	Worker int
}

// WorkerPool renders a fixed list of tiles in parallel. Workers claim the
// next tile with an atomic counter and own their Stats until the pool is
// drained.
type WorkerPool struct {
	tiles       []Tile
	renderer    *TileRenderer
	numWorkers  int
	next        atomic.Int64
	resultQueue chan TileResult
	workers     []*Worker
	wg          sync.WaitGroup
	logger      log.Logger
}

// Worker renders tiles until none are left
type Worker struct {
	ID    int
	Stats WorkerStats
	pool  *WorkerPool
}

// NewWorkerPool creates a pool of numWorkers workers, or one per CPU when
// numWorkers is not positive
func NewWorkerPool(tiles []Tile, renderer *TileRenderer, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = max(1, min(numWorkers, len(tiles)))

	wp := &WorkerPool{
		tiles:       tiles,
		renderer:    renderer,
		numWorkers:  numWorkers,
		resultQueue: make(chan TileResult, len(tiles)),
		logger:      log.New("renderer"),
	}
	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{ID: i, Stats: WorkerStats{Worker: i}, pool: wp})
	}
	return wp
}

// Start launches the workers. Results arrive on Results, which is closed
// once every worker has stopped.
func (wp *WorkerPool) Start(ctx context.Context) {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(ctx, &wp.wg)
	}
	go func() {
		wp.wg.Wait()
		close(wp.resultQueue)
	}()
}

// Results returns the channel of rendered tiles
func (wp *WorkerPool) Results() <-chan TileResult {
	return wp.resultQueue
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// WorkerStats returns each worker's counters. Only valid after Results is
// closed.
func (wp *WorkerPool) WorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(wp.workers))
	for i, w := range wp.workers {
		stats[i] = w.Stats
	}
	return stats
}

// claim returns the index of the next unrendered tile
func (wp *WorkerPool) claim() (int, bool) {
	i := int(wp.next.Add(1) - 1)
	return i, i < len(wp.tiles)
}

func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	start := time.Now()

	for ctx.Err() == nil {
		i, ok := w.pool.claim()
		if !ok {
			break
		}
		tile := w.pool.tiles[i]

		var stats core.Stats
		img := w.pool.renderer.RenderTile(tile, &stats)
		w.Stats.Tiles++
		w.Stats.Pixels += tile.Bounds.Dx() * tile.Bounds.Dy()
		w.Stats.Stats.Merge(stats)

		w.pool.resultQueue <- TileResult{Tile: tile, Image: img, Worker: w.ID}
	}

	w.Stats.Elapsed = time.Since(start)
	w.pool.logger.Debugf("worker %d finished: %d tiles, %d rays in %v",
		w.ID, w.Stats.Tiles, w.Stats.RaysShot, w.Stats.Elapsed)
}
