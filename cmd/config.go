package cmd

import (
	"errors"

	"github.com/urfave/cli"

	"github.com/df07/go-bvh-pathtracer/pkg/config"
)

// WriteConfig writes the default configuration to the file given as the
// first argument.
func WriteConfig(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing configuration file argument")
	}

	path := ctx.Args().First()
	if err := config.Default().Save(path); err != nil {
		return err
	}
	logger.Noticef("wrote %s", path)
	return nil
}
