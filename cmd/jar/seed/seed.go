// Package seedcmder provides the seed command for loading routines into the
// vector store.
package seedcmder

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretwork/jar/cmd/jar/wiring"
	"github.com/fretwork/jar/pkg/cliui"
	"github.com/fretwork/jar/pkg/config"
	"github.com/fretwork/jar/pkg/logger"
	"github.com/fretwork/jar/pkg/seed"
)

const seedLongDesc string = `Load routines from a JSON seed file into the vector store.

Each record holds the routine text, its category, optional tags, and an
optional initial state. Embeddings are generated in one batch. A store
that already holds routines is left untouched unless --force is set.

Examples:
  jar seed
  jar seed --file ./routines.json
  jar seed --force`

const seedShortDesc string = "Seed routines into the vector store"

// seedFlags maps flag registry keys to flag definitions for this command.
var seedFlags = config.FlagSet{
	config.FlagSeedFile: {
		Name:        "file",
		Shorthand:   "f",
		ViperKey:    "seed.file",
		Description: "Path to the seed file",
	},
}

// seedFlagKeys lists the registry keys bound for this command.
var seedFlagKeys = []string{
	config.FlagSeedFile,
}

type seedCommander struct {
	file   string
	force  bool
	debug  bool
	cfg    *config.Config
	logger *zap.Logger
}

func NewSeedCmd() *cobra.Command {
	cmder := &seedCommander{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: seedShortDesc,
		Long:  seedLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, seedFlags, seedFlagKeys)

			cmder.cfg = config.FromViper(v)
			cmder.file = cmder.cfg.Seed.File
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, seedFlags, config.FlagSeedFile, &cmder.file)
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Clear existing routines before seeding")

	return cmd
}

func (c *seedCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	routines, err := seed.LoadFile(c.file)
	if err != nil {
		return err
	}

	driver, embedder, cleanup, err := wiring.NewDrivers(c.cfg, c.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var result *seed.Result
	if err := cliui.Step(os.Stdout, fmt.Sprintf("Seeding %d routines", len(routines)), func() error {
		var seedErr error
		result, seedErr = seed.Build(ctx, driver, embedder, routines, c.force, c.logger)
		return seedErr
	}); err != nil {
		return err
	}

	if result.Skipped {
		fmt.Printf("\n  %s Store already populated, nothing seeded %s\n\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render("(use --force to reseed)"),
		)
		return nil
	}

	fmt.Printf("\n  %s Seeded %s routines %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(strconv.Itoa(result.Seeded)),
		cliui.DimStyle.Render(fmt.Sprintf("from %s", c.file)),
	)
	return nil
}
