// Package configcmder provides the config command for managing persistent
// jar configuration stored in the .jar/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent jar configuration.

Configuration is stored as config.toml in the .jar/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  seed.file

Use subcommands to get, set, or list configuration values:
  jar config set <key> <value>    Set a configuration value
  jar config get <key>            Get a configuration value
  jar config list                 List all configuration values

Examples:
  jar config set vector_store.provider qdrant
  jar config set embedding.model text-embedding-3-small
  jar config get api.listen
  jar config list`

const configShortDesc string = "Manage persistent jar configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
