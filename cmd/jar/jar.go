// Package jarcmder
package jarcmder

import (
	"github.com/spf13/cobra"

	completecmder "github.com/fretwork/jar/cmd/jar/complete"
	configcmder "github.com/fretwork/jar/cmd/jar/config"
	listcmder "github.com/fretwork/jar/cmd/jar/list"
	pickcmder "github.com/fretwork/jar/cmd/jar/pick"
	searchcmder "github.com/fretwork/jar/cmd/jar/search"
	seedcmder "github.com/fretwork/jar/cmd/jar/seed"
	servecmder "github.com/fretwork/jar/cmd/jar/serve"
	versioncmder "github.com/fretwork/jar/cmd/version"
)

const jarLongDesc string = `Jar keeps your practice routines in a vector store so you can list them,
pick one at random, or search them by meaning.

Common commands:
  jar serve            Run the HTTP API server
  jar seed             Load routines from a seed file into the store
  jar list             List routines, optionally filtered
  jar pick <category>  Pick a random routine from a category
  jar search <query>   Search routines semantically`

const jarShortDesc string = "Jar - Practice Routine Picker"

func NewJarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jar",
		Short: jarShortDesc,
		Long:  jarLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .jar/ config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(listcmder.NewListCmd())
	cmd.AddCommand(pickcmder.NewPickCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(completecmder.NewCompleteCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
