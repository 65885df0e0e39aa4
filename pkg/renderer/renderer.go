package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"golang.org/x/image/draw"

	"github.com/df07/go-bvh-pathtracer/log"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// DefaultTileSize is the tile edge used when none is configured
const DefaultTileSize = 32

// ErrInvalidSize is returned for a frame without pixels
var ErrInvalidSize = errors.New("renderer: width and height must be positive")

// Options controls how a frame is split and scheduled
type Options struct {
	Workers  int     // 0 means one per CPU
	TileSize int     // 0 means DefaultTileSize
	Seed     int64   // base seed; tile i uses Seed+i
	Gamma    float32 // 1 or 0 leaves values linear
}

// Renderer renders a scene into an 8-bit image
type Renderer struct {
	scene    *scene.Scene
	settings core.RenderSettings
	options  Options
	logger   log.Logger
}

// New creates a renderer for the scene
func New(sc *scene.Scene, settings core.RenderSettings, options Options) *Renderer {
	return &Renderer{
		scene:    sc,
		settings: settings,
		options:  options,
		logger:   log.New("renderer"),
	}
}

// Render renders the full frame. Tiles are rendered into their own buffers
// and drawn into the frame by the calling goroutine. A cancelled context
// stops workers from claiming new tiles and returns the context error.
func (r *Renderer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	width, height := r.settings.Width, r.settings.Height
	if width <= 0 || height <= 0 {
		return nil, RenderStats{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	start := time.Now()
	tiles := NewTileGrid(width, height, r.options.TileSize)
	pool := NewWorkerPool(tiles, NewTileRenderer(r.scene, r.settings, r.options.Seed, r.options.Gamma), r.options.Workers)

	r.logger.Infof("rendering %dx%d: %d tiles on %d workers, depth %d, aa %d, diffuse %d, specular %d",
		width, height, len(tiles), pool.NumWorkers(), r.settings.MaxRayDepth,
		r.settings.AASamples, r.settings.DiffuseSamples, r.settings.SpecularSamples)

	frame := image.NewRGBA(image.Rect(0, 0, width, height))
	pool.Start(ctx)
	for result := range pool.Results() {
		draw.Draw(frame, result.Tile.Bounds, result.Image, image.Point{}, draw.Src)
	}

	stats := newRenderStats(pool.WorkerStats(), time.Since(start))
	if err := ctx.Err(); err != nil {
		return frame, stats, err
	}

	r.logger.Infof("rendered %d tiles in %v: %d rays (%d shadow), %d triangle tests, %.0f rays/s",
		stats.Tiles, stats.Elapsed, stats.Total.RaysShot, stats.Total.ShadowRays,
		stats.Total.TriangleTests, stats.RaysPerSecond())
	return frame, stats, nil
}
