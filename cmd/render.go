package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-bvh-pathtracer/pkg/config"
	"github.com/df07/go-bvh-pathtracer/pkg/output"
	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// RenderFrame renders a single frame and writes it to disk.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	sc, err := scene.Load(cfg.Scene, cfg.SceneOptions())
	if err != nil {
		return err
	}

	renderCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, stats, err := renderer.New(sc, cfg.RenderSettings(), cfg.RendererOptions()).Render(renderCtx)
	if err != nil {
		return err
	}

	if err := output.Save(cfg.Output, img); err != nil {
		return err
	}
	logger.Noticef("wrote %s", cfg.Output)

	displayRenderStats(stats)
	return nil
}

// loadConfig layers the config file and the flags that were given
// explicitly over the defaults.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	var o config.Overrides
	if ctx.IsSet("scene") {
		o.Scene = ptr(ctx.String("scene"))
	}
	if ctx.IsSet("mesh") {
		o.MeshFile = ptr(ctx.String("mesh"))
	}
	if ctx.IsSet("width") {
		o.Width = ptr(ctx.Int("width"))
	}
	if ctx.IsSet("height") {
		o.Height = ptr(ctx.Int("height"))
	}
	if ctx.IsSet("depth") {
		o.MaxRayDepth = ptr(ctx.Int("depth"))
	}
	if ctx.IsSet("diffuse-samples") {
		o.DiffuseSamples = ptr(ctx.Int("diffuse-samples"))
	}
	if ctx.IsSet("specular-samples") {
		o.SpecularSamples = ptr(ctx.Int("specular-samples"))
	}
	if ctx.IsSet("aa") {
		o.AASamples = ptr(ctx.Int("aa"))
	}
	if ctx.IsSet("workers") {
		o.Workers = ptr(ctx.Int("workers"))
	}
	if ctx.IsSet("tile-size") {
		o.TileSize = ptr(ctx.Int("tile-size"))
	}
	if ctx.IsSet("seed") {
		o.Seed = ptr(ctx.Int64("seed"))
	}
	if ctx.IsSet("bvh") {
		o.BVHStrategy = ptr(ctx.String("bvh"))
	}
	if ctx.IsSet("gamma") {
		o.Gamma = ptr(float32(ctx.Float64("gamma")))
	}
	if ctx.IsSet("out") {
		o.Output = ptr(ctx.String("out"))
	}

	cfg = cfg.Resolve(o)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func ptr[T any](v T) *T {
	return &v
}

func displayRenderStats(stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Tiles", "Pixels", "Rays", "Shadow rays", "Triangle tests", "Render time"})
	for _, w := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", w.Worker),
			fmt.Sprintf("%d", w.Tiles),
			fmt.Sprintf("%d", w.Pixels),
			fmt.Sprintf("%d", w.RaysShot),
			fmt.Sprintf("%d", w.ShadowRays),
			fmt.Sprintf("%d", w.TriangleTests),
			w.Elapsed.String(),
		})
	}
	table.SetFooter([]string{
		"TOTAL",
		fmt.Sprintf("%d", stats.Tiles),
		fmt.Sprintf("%d", stats.Pixels),
		fmt.Sprintf("%d", stats.Total.RaysShot),
		fmt.Sprintf("%d", stats.Total.ShadowRays),
		fmt.Sprintf("%d", stats.Total.TriangleTests),
		stats.Elapsed.String(),
	})

	table.Render()
	logger.Noticef("render statistics (%.0f rays/s)\n%s", stats.RaysPerSecond(), buf.String())
}
