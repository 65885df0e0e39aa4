package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/integrator"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// Tile is a rectangular region of the frame rendered as one work item
type Tile struct {
	ID     int             // position in the grid, row major
	Bounds image.Rectangle // pixel bounds within the frame
}

// NewTileGrid splits a width x height frame into tiles of at most
// tileSize x tileSize pixels
func NewTileGrid(width, height, tileSize int) []Tile {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}

	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize
	tiles := make([]Tile, 0, tilesX*tilesY)

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			tiles = append(tiles, Tile{
				ID:     len(tiles),
				Bounds: image.Rect(x0, y0, min(x0+tileSize, width), min(y0+tileSize, height)),
			})
		}
	}
	return tiles
}

// TileRenderer renders tiles of one frame. It holds only read-only state and
// can be shared by all workers.
type TileRenderer struct {
	scene     *scene.Scene
	settings  core.RenderSettings
	aaOffsets [][2]float32
	seed      int64
	gamma     float32
}

// NewTileRenderer creates a tile renderer for the scene
func NewTileRenderer(sc *scene.Scene, settings core.RenderSettings, seed int64, gamma float32) *TileRenderer {
	return &TileRenderer{
		scene:     sc,
		settings:  settings,
		aaOffsets: core.AAGrid(settings.AASamples),
		seed:      seed,
		gamma:     gamma,
	}
}

// RenderTile renders the tile into its own image whose origin is the tile's
// top left corner. Each tile seeds its own sampler, so the result does not
// depend on which worker renders it.
func (tr *TileRenderer) RenderTile(tile Tile, stats *core.Stats) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, tile.Bounds.Dx(), tile.Bounds.Dy()))
	sampler := core.NewSeededSampler(tr.seed + int64(tile.ID))

	for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
		for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
			radiance := tr.RenderPixel(x, y, sampler, stats)
			img.SetRGBA(x-tile.Bounds.Min.X, y-tile.Bounds.Min.Y, ToneMap(radiance, tr.gamma))
		}
	}
	return img
}

// RenderPixel averages the radiance of the antialiasing samples of pixel (x, y)
func (tr *TileRenderer) RenderPixel(x, y int, sampler core.Sampler, stats *core.Stats) core.Vector {
	var sum core.Vector
	for _, offset := range tr.aaOffsets {
		origin, dir := tr.scene.Camera.PrimaryRay(x, y, offset[0], offset[1], tr.settings.Width, tr.settings.Height)
		sum = sum.Add(integrator.CastRay(origin, dir, tr.scene, 0, tr.settings, core.CameraRay, sampler, stats))
	}
	return sum.Divide(float32(len(tr.aaOffsets)))
}

// ToneMap clamps HDR radiance to [0,1], applies gamma and quantizes to 8
// bits. NaN channels map to black.
func ToneMap(radiance core.Vector, gamma float32) color.RGBA {
	c := radiance
	for i := 0; i < 3; i++ {
		if c[i] != c[i] {
			c[i] = 0
		}
	}
	c = c.Clamp(0, 1).GammaCorrect(gamma)
	return color.RGBA{
		R: uint8(c[0]*255 + 0.5),
		G: uint8(c[1]*255 + 0.5),
		B: uint8(c[2]*255 + 0.5),
		A: 255,
	}
}
