// Package configcmder provides the config command for managing persistent
// gazetap configuration stored in the .gazetap/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent gazetap configuration.

Configuration is stored as config.toml in the .gazetap/ directory and provides
default values for command flags. CLI flags and GAZETAP_* environment
variables always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  imotions.host, imotions.port,
  filter.device_name, filter.sample_name,
  display.width, display.height,
  storage.sqlite_path, storage.postgres_dsn,
  eventstream.kafka_brokers, eventstream.kafka_topic,
  api.listen, recorder.workers, recorder.queue_size

Use subcommands to get, set, or list configuration values:
  gazetap config set <key> <value>    Set a configuration value
  gazetap config get <key>            Get a configuration value
  gazetap config list                 List all configuration values

Examples:
  gazetap config set imotions.host 192.168.1.20
  gazetap config set display.width 2560
  gazetap config get imotions.port
  gazetap config list`

const configShortDesc string = "Manage persistent gazetap configuration"

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
