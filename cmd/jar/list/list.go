// Package listcmder provides the list command for displaying routines.
package listcmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretwork/jar/cmd/jar/wiring"
	"github.com/fretwork/jar/pkg/logger"
	"github.com/fretwork/jar/pkg/routine"
)

var (
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type listCommander struct {
	category     string
	state        string
	notCompleted bool

	debug  bool
	logger *zap.Logger
}

const listLongDesc string = `List routines from the vector store.

Without flags every routine is listed. With --category only routines in
that category are shown, filtered to not_completed unless --state says
otherwise ("all" disables the state filter). --not-completed lists every
unfinished routine across categories.

Examples:
  jar list
  jar list --category daily
  jar list --category one_day --state all
  jar list --not-completed`

const listShortDesc string = "List routines"

func NewListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")
			return cmder.run(cmd.Context(), configDir)
		},
	}

	cmd.Flags().StringVarP(&cmder.category, "category", "c", "", fmt.Sprintf("Filter by category (%s)", strings.Join(categoryNames(), ", ")))
	cmd.Flags().StringVarP(&cmder.state, "state", "s", "", "Filter by state (not_completed, completed, all)")
	cmd.Flags().BoolVar(&cmder.notCompleted, "not-completed", false, "List all not-completed routines across categories")

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

func (c *listCommander) run(ctx context.Context, configDir string) error {
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

	var routines []routine.Routine

	switch {
	case c.category != "":
		routines, err = svc.GetRoutinesByCategory(ctx, c.category, c.state)
	case c.notCompleted:
		routines, err = svc.GetNotCompletedRoutines(ctx)
	default:
		routines, err = svc.GetAllRoutines(ctx)
	}
	if err != nil {
		return err
	}

	if len(routines) == 0 {
		fmt.Println(dimStyle.Render("No routines found."))
		return nil
	}

	fmt.Printf("\n%s\n\n", headerStyle.Render(fmt.Sprintf("%d routines", len(routines))))
	for _, r := range routines {
		printRoutine(r)
	}

	return nil
}

func printRoutine(r routine.Routine) {
	text := textStyle.Render(r.Text)
	if r.State == routine.StateCompleted {
		text = doneStyle.Render(r.Text)
	}

	fmt.Printf("  %s %s\n", categoryStyle.Render("["+string(r.Category)+"]"), text)

	meta := idStyle.Render(r.ID)
	if len(r.Tags) > 0 {
		meta = fmt.Sprintf("%s  %s", tagStyle.Render(routine.JoinTags(r.Tags)), meta)
	}
	fmt.Printf("    %s\n", meta)
}
