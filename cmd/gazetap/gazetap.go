// Package gazetapcmder
package gazetapcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/papercomputeco/gazetap/cmd/gazetap/config"
	streamcmder "github.com/papercomputeco/gazetap/cmd/gazetap/stream"
	versioncmder "github.com/papercomputeco/gazetap/cmd/version"
)

const gazetapLongDesc string = `gazetap streams eye-tracking samples from the iMotions API.

It connects to the iMotions TCP forwarding port, keeps every EyeData sample,
normalizes the gaze coordinates to the screen and prints one line per sample
on standard output. Logs go to standard error.

Run the adapter using:
  gazetap stream                 Stream from localhost:8088
  gazetap stream --api-listen :8090
                                 Also serve stats, recent samples and metrics`

const gazetapShortDesc string = "gazetap - iMotions gaze stream adapter"

func NewGazetapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gazetap",
		Short:        gazetapShortDesc,
		Long:         gazetapLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	cmd.PersistentFlags().String("config-dir", "", "Directory holding config.toml (default: ./.gazetap or ~/.gazetap)")

	// Add subcommands
	cmd.AddCommand(streamcmder.NewStreamCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
