// Package searchcmder provides the search command for semantic search over
// routines.
package searchcmder

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fretwork/jar/cmd/jar/wiring"
	"github.com/fretwork/jar/pkg/logger"
	"github.com/fretwork/jar/pkg/routine"
)

var (
	rankStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	idStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type searchCommander struct {
	query    string
	topN     int
	minScore float32
	quiet    bool

	debug  bool
	logger *zap.Logger
}

const searchLongDesc string = `Search routines by meaning.

The query is embedded and matched against stored routines, returning the
closest ones first. Scores are distances, so lower means more similar.
Use --min-score to drop results whose distance exceeds the threshold.

Use --quiet to output only routine ids, one per line. This is useful for
piping into other commands like jar complete.

Example:
  jar search "something with scales"
  jar search "slow blues licks" --top 10
  jar search "chord voicings" --min-score 0.8
  jar complete $(jar search "arpeggios" --quiet --top 1)`

const searchShortDesc string = "Search routines"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			configDir, _ := cmd.Flags().GetString("config-dir")

			var minScore *float32
			if cmd.Flags().Changed("min-score") {
				minScore = &cmder.minScore
			}

			return cmder.run(cmd.Context(), configDir, minScore)
		},
	}

	cmd.Flags().IntVarP(&cmder.topN, "top", "n", 5, "Number of results to return")
	cmd.Flags().Float32Var(&cmder.minScore, "min-score", 0, "Maximum distance a result may have")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only routine ids, one per line (for piping)")

	return cmd
}

func (c *searchCommander) run(ctx context.Context, configDir string, minScore *float32) error {
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

	results, err := svc.SearchRoutines(ctx, c.query, c.topN, minScore)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		if !c.quiet {
			fmt.Println(dimStyle.Render("No results found."))
		}
		return nil
	}

	if c.quiet {
		for _, result := range results {
			fmt.Println(result.ID)
		}
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		headerStyle.Render("Search results for:"),
		idStyle.Render(fmt.Sprintf("%q", c.query)),
	)

	for i, result := range results {
		printResult(i+1, result)
	}

	return nil
}

func printResult(rank int, result routine.SearchResult) {
	fmt.Printf("  %s  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", rank)),
		scoreStyle.Render(fmt.Sprintf("score: %.4f", result.Score)),
		idStyle.Render(result.ID),
	)

	fmt.Printf("  %s %s\n",
		categoryStyle.Render("["+string(result.Category)+"]"),
		textStyle.Render(result.Text),
	)

	if len(result.Tags) > 0 {
		fmt.Printf("  %s\n", tagStyle.Render(routine.JoinTags(result.Tags)))
	}

	fmt.Println()
}
