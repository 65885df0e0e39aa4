package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/output"
	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// ErrInvalid is wrapped by every validation error
var ErrInvalid = errors.New("config: invalid")

// Config is the JSON render configuration
type Config struct {
	Scene           string     `json:"scene"`
	MeshFile        string     `json:"mesh_file,omitempty"`
	Width           int        `json:"width"`
	Height          int        `json:"height"`
	MaxRayDepth     int        `json:"max_ray_depth"`
	DiffuseSamples  int        `json:"diffuse_samples"`
	SpecularSamples int        `json:"specular_samples"`
	AASamples       int        `json:"aa_samples"`
	Background      [3]float32 `json:"background"`
	Workers         int        `json:"workers"`   // 0 uses every CPU
	TileSize        int        `json:"tile_size"` // 0 uses the renderer default
	Seed            int64      `json:"seed"`
	BVHStrategy     string     `json:"bvh_strategy"`
	Gamma           float32    `json:"gamma"`
	Output          string     `json:"output"`
}

// Default returns a direct-lighting configuration for quick previews
func Default() Config {
	return Config{
		Scene:       "spheres",
		Width:       640,
		Height:      360,
		MaxRayDepth: 3,
		AASamples:   1,
		TileSize:    renderer.DefaultTileSize,
		Seed:        1,
		BVHStrategy: bvh.SAH.String(),
		Gamma:       1,
		Output:      "render.png",
	}
}

// Load reads a JSON configuration from path. Fields missing from the file
// keep their Default values.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Overrides holds command line values. Nil fields leave the configuration
// unchanged.
type Overrides struct {
	Scene           *string
	MeshFile        *string
	Width           *int
	Height          *int
	MaxRayDepth     *int
	DiffuseSamples  *int
	SpecularSamples *int
	AASamples       *int
	Workers         *int
	TileSize        *int
	Seed            *int64
	BVHStrategy     *string
	Gamma           *float32
	Output          *string
}

// Resolve returns c with every set override applied
func (c Config) Resolve(o Overrides) Config {
	set(&c.Scene, o.Scene)
	set(&c.MeshFile, o.MeshFile)
	set(&c.Width, o.Width)
	set(&c.Height, o.Height)
	set(&c.MaxRayDepth, o.MaxRayDepth)
	set(&c.DiffuseSamples, o.DiffuseSamples)
	set(&c.SpecularSamples, o.SpecularSamples)
	set(&c.AASamples, o.AASamples)
	set(&c.Workers, o.Workers)
	set(&c.TileSize, o.TileSize)
	set(&c.Seed, o.Seed)
	set(&c.BVHStrategy, o.BVHStrategy)
	set(&c.Gamma, o.Gamma)
	set(&c.Output, o.Output)
	return c
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate reports the first problem with the configuration
func (c Config) Validate() error {
	b, ok := scene.Lookup(c.Scene)
	if !ok {
		return fmt.Errorf("%w: unknown scene %q", ErrInvalid, c.Scene)
	}
	if b.ID == "ply" && c.MeshFile == "" {
		return fmt.Errorf("%w: scene %q needs mesh_file", ErrInvalid, c.Scene)
	}

	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.MaxRayDepth < 0:
		return fmt.Errorf("%w: max_ray_depth %d", ErrInvalid, c.MaxRayDepth)
	case c.DiffuseSamples < 0 || c.SpecularSamples < 0:
		return fmt.Errorf("%w: negative sample count", ErrInvalid)
	case c.AASamples < 1:
		return fmt.Errorf("%w: aa_samples %d, expected at least 1", ErrInvalid, c.AASamples)
	case c.Workers < 0 || c.TileSize < 0:
		return fmt.Errorf("%w: negative workers or tile_size", ErrInvalid)
	case c.Gamma < 0:
		return fmt.Errorf("%w: gamma %v", ErrInvalid, c.Gamma)
	}

	if _, err := bvh.ParseStrategy(c.BVHStrategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if _, err := output.FormatFromPath(c.Output); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Strategy returns the BVH build strategy
func (c Config) Strategy() bvh.Strategy {
	s, err := bvh.ParseStrategy(c.BVHStrategy)
	if err != nil {
		return bvh.SAH
	}
	return s
}

// RenderSettings returns the per-render settings value
func (c Config) RenderSettings() core.RenderSettings {
	return core.RenderSettings{
		Width:           c.Width,
		Height:          c.Height,
		MaxRayDepth:     c.MaxRayDepth,
		DiffuseSamples:  c.DiffuseSamples,
		SpecularSamples: c.SpecularSamples,
		AASamples:       c.AASamples,
		Background:      core.Vec3(c.Background[0], c.Background[1], c.Background[2]),
	}
}

// RendererOptions returns the scheduling options
func (c Config) RendererOptions() renderer.Options {
	return renderer.Options{
		Workers:  c.Workers,
		TileSize: c.TileSize,
		Seed:     c.Seed,
		Gamma:    c.Gamma,
	}
}

// SceneOptions returns the inputs for building the scene
func (c Config) SceneOptions() scene.Options {
	return scene.Options{Strategy: c.Strategy(), MeshFile: c.MeshFile}
}

// Save writes the configuration as indented JSON
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
