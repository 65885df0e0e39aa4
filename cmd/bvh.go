package cmd

import (
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-bvh-pathtracer/pkg/bvh"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// ShowBVHStats builds the scene once per strategy and compares the trees.
func ShowBVHStats(ctx *cli.Context) error {
	setupLogging(ctx)

	names := ctx.StringSlice("strategy")
	if len(names) == 0 {
		names = []string{bvh.SAH.String(), bvh.Median.String()}
	}

	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Strategy", "Nodes", "Leaves", "Objects", "Max depth", "Avg leaf depth", "Max leaf objects", "SAH cost", "Build time"})

	id := ctx.String("scene")
	for _, name := range names {
		strategy, err := bvh.ParseStrategy(name)
		if err != nil {
			return err
		}

		start := time.Now()
		sc, err := scene.Load(id, scene.Options{Strategy: strategy, MeshFile: ctx.String("mesh")})
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		if err := sc.BVH.Validate(len(sc.Objects)); err != nil {
			return fmt.Errorf("%s bvh: %w", strategy, err)
		}

		s := sc.BVHStats()
		table.Append([]string{
			strategy.String(),
			fmt.Sprintf("%d", s.Nodes),
			fmt.Sprintf("%d", s.Leaves),
			fmt.Sprintf("%d", s.Objects),
			fmt.Sprintf("%d", s.MaxDepth),
			fmt.Sprintf("%.2f", s.AvgLeafDepth),
			fmt.Sprintf("%d", s.MaxLeafObjects),
			fmt.Sprintf("%.2f", s.SAHCost),
			elapsed.String(),
		})
	}

	table.Render()
	return nil
}
