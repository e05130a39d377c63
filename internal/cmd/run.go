package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"overview-sync/internal/daemon"
)

// newRunCmd creates the run command.
func newRunCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the synchronizer until interrupted",
		Long: `Run the synchronizer daemon.

The daemon follows the settings file, recomputes the interaction flags
whenever the swipe-up setting or the back button visibility changes,
and sends them to the proxy given by --proxy-url. Without a proxy URL
changes are tracked but nothing is sent.

Examples:
  ovs run --proxy-url ws://127.0.0.1:7420/proxy
  OVS_LOG_LEVEL=debug ovs run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return daemon.Run(ctx, app.Config, app.Logger)
		},
	}
}
