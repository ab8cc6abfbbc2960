// Package completecmder provides the complete command for toggling a
// routine's completion state.
package completecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretwork/jar/cmd/jar/wiring"
	"github.com/fretwork/jar/pkg/cliui"
	"github.com/fretwork/jar/pkg/logger"
	"github.com/fretwork/jar/pkg/routine"
)

type completeCommander struct {
	id   string
	undo bool

	debug  bool
	logger *zap.Logger
}

const completeLongDesc string = `Mark a routine as completed.

Completed routines drop out of the default list and pick filters until a
new practice cycle resets them. Use --undo to mark a routine as not
completed again.

Examples:
  jar complete 3f6a1c2e-...
  jar complete 3f6a1c2e-... --undo`

const completeShortDesc string = "Mark a routine completed"

func NewCompleteCmd() *cobra.Command {
	cmder := &completeCommander{}

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: completeShortDesc,
		Long:  completeLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.id = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	cmd.Flags().BoolVarP(&cmder.undo, "undo", "u", false, "Mark the routine as not completed")

	return cmd
}

func (c *completeCommander) run(ctx context.Context, configDir string) error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	cfg, err := wiring.LoadConfig(configDir)
	if err != nil {
		return err
	}

	svc, cleanup, err := wiring.NewService(cfg, c.logger)
	if err != nil {
		return err
	}
	defer cleanup()

	state := routine.StateCompleted
	if c.undo {
		state = routine.StateNotCompleted
		err = svc.MarkRoutineNotCompleted(ctx, c.id)
	} else {
		err = svc.MarkRoutineCompleted(ctx, c.id)
	}
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s Marked %s as %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(c.id),
		cliui.ValueStyle.Render(string(state)),
	)
	return nil
}
