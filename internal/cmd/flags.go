package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"overview-sync/internal/interaction"
)

// newFlagsCmd creates the flags command.
func newFlagsCmd(provider *AppProvider) *cobra.Command {
	var swipeUp, backButton bool

	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Compute the interaction flags for a pair of inputs",
		Long: `Print the interaction bitmask the daemon would send for the given
swipe-up setting and back button visibility.

Examples:
  ovs flags
  ovs flags --swipe-up=false
  ovs flags --back-button=false --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			flags := interaction.ComputeFlags(swipeUp, backButton)

			if app.JSON {
				return app.writeJSON(map[string]any{
					"swipe_up_enabled":    swipeUp,
					"back_button_visible": backButton,
					"flags":               int32(flags),
					"names":               flags.String(),
				})
			}

			fmt.Fprintf(app.Out, "0x%x %s\n", int32(flags), flags)
			return nil
		},
	}

	cmd.Flags().BoolVar(&swipeUp, "swipe-up", true, "Whether the swipe-up gesture is enabled")
	cmd.Flags().BoolVar(&backButton, "back-button", true, "Whether the launcher shows the back button")

	return cmd
}
