// Package pickcmder provides the pick command for selecting a random routine.
package pickcmder

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretwork/jar/cmd/jar/wiring"
	"github.com/fretwork/jar/pkg/logger"
	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/store"
)

var (
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type pickCommander struct {
	category string
	state    string

	debug  bool
	logger *zap.Logger
}

const pickLongDesc string = `Pick a random routine from a category.

Only not_completed routines are considered unless --state says otherwise
("all" disables the state filter).

Examples:
  jar pick daily
  jar pick one_day --state all`

const pickShortDesc string = "Pick a random routine"

func NewPickCmd() *cobra.Command {
	cmder := &pickCommander{}

	cmd := &cobra.Command{
		Use:   "pick <category>",
		Short: pickShortDesc,
		Long:  pickLongDesc,
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return categoryNames(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.category = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	cmd.Flags().StringVarP(&cmder.state, "state", "s", "", "Filter by state (not_completed, completed, all)")

	return cmd
}

func categoryNames() []string {
	cats := routine.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return names
}

func (c *pickCommander) run(ctx context.Context, configDir string) error {
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

	picked, err := svc.GetRandomRoutineByCategory(ctx, c.category, c.state)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println(dimStyle.Render("No routines to pick from."))
			return nil
		}
		return err
	}

	fmt.Printf("\n  %s %s\n",
		categoryStyle.Render("["+string(picked.Category)+"]"),
		textStyle.Render(picked.Text),
	)

	if len(picked.Tags) > 0 {
		fmt.Printf("    %s\n", tagStyle.Render(routine.JoinTags(picked.Tags)))
	}
	fmt.Printf("    %s\n\n", dimStyle.Render(picked.ID))

	return nil
}
