package renderer

import (
	"time"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// WorkerStats contains the work done by one worker
type WorkerStats struct {
	Worker  int
	Tiles   int
	Pixels  int
	Elapsed time.Duration
	core.Stats
}

// RenderStats contains statistics about a finished render
type RenderStats struct {
	Workers []WorkerStats
	Total   core.Stats // all workers merged
	Tiles   int
	Pixels  int
	Elapsed time.Duration
}

// newRenderStats merges the per-worker counters
func newRenderStats(workers []WorkerStats, elapsed time.Duration) RenderStats {
	stats := RenderStats{Workers: workers, Elapsed: elapsed}
	for _, w := range workers {
		stats.Total.Merge(w.Stats)
		stats.Tiles += w.Tiles
		stats.Pixels += w.Pixels
	}
	return stats
}

// RaysPerSecond returns the overall ray throughput
func (s RenderStats) RaysPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Total.RaysShot) / s.Elapsed.Seconds()
}
