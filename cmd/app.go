package cmd

import (
	"github.com/df07/go-bvh-pathtracer/pkg/config"
	"github.com/urfave/cli"
)

// NewApp returns the command line application
func NewApp() *cli.App {
	defaults := config.Default()

	app := cli.NewApp()
	app.Name = "pathtracer"
	app.Usage = "render triangle mesh scenes with a BVH accelerated path tracer"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a builtin scene to an image",
			Description: `
Render a builtin scene. Settings come from the defaults, then the optional
--config JSON file, then any flags given on the command line.

The output format follows the file extension: png, webp or tga.`,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config, c",
					Usage: "JSON render configuration",
				},
				cli.StringFlag{
					Name:  "scene, s",
					Value: defaults.Scene,
					Usage: "builtin scene id",
				},
				cli.StringFlag{
					Name:  "mesh",
					Usage: "PLY file for the ply scene",
				},
				cli.IntFlag{
					Name:  "width",
					Value: defaults.Width,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: defaults.Height,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "depth",
					Value: defaults.MaxRayDepth,
					Usage: "maximum ray depth",
				},
				cli.IntFlag{
					Name:  "diffuse-samples",
					Value: defaults.DiffuseSamples,
					Usage: "indirect diffuse samples at the first hit",
				},
				cli.IntFlag{
					Name:  "specular-samples",
					Value: defaults.SpecularSamples,
					Usage: "indirect specular samples at the first hit",
				},
				cli.IntFlag{
					Name:  "aa",
					Value: defaults.AASamples,
					Usage: "antialiasing grid size, n x n samples per pixel",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: defaults.Workers,
					Usage: "render workers, 0 for one per CPU",
				},
				cli.IntFlag{
					Name:  "tile-size",
					Value: defaults.TileSize,
					Usage: "tile edge in pixels",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: defaults.Seed,
					Usage: "random seed",
				},
				cli.StringFlag{
					Name:  "bvh",
					Value: defaults.BVHStrategy,
					Usage: "BVH build strategy: sah or median",
				},
				cli.Float64Flag{
					Name:  "gamma",
					Value: float64(defaults.Gamma),
					Usage: "output gamma, 1 keeps values linear",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: defaults.Output,
					Usage: "image filename for the rendered frame",
				},
			},
			Action: RenderFrame,
		},
		{
			Name:   "scenes",
			Usage:  "list builtin scenes",
			Action: ListScenes,
		},
		{
			Name:  "bvh",
			Usage: "build the BVH of a scene and print its statistics",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "scene, s",
					Value: defaults.Scene,
					Usage: "builtin scene id",
				},
				cli.StringFlag{
					Name:  "mesh",
					Usage: "PLY file for the ply scene",
				},
				cli.StringSliceFlag{
					Name:  "strategy",
					Value: &cli.StringSlice{},
					Usage: "strategies to compare, default sah and median",
				},
			},
			Action: ShowBVHStats,
		},
		{
			Name:      "config",
			Usage:     "write the default render configuration",
			ArgsUsage: "file.json",
			Action:    WriteConfig,
		},
	}
	return app
}
