package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"overview-sync/internal/interaction"
)

// newPolicyCmd creates the policy command.
func newPolicyCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Show whether this device follows the swipe-up setting",
		Long: `Report the device's first API level and whether the swipe-up
setting is ignored because of it.

Devices that shipped at API level 28 or later always have swipe-up
enabled and never consult the setting.

Examples:
  ovs policy
  OVS_PROP_RO_PRODUCT_FIRST_API_LEVEL=28 ovs policy --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			level := app.Props.Get(interaction.FirstAPILevelProperty, "")
			ignored := interaction.ShouldIgnoreSwipeUpSetting(app.Props)

			if app.JSON {
				return app.writeJSON(map[string]any{
					"first_api_level": level,
					"ignore_setting":  ignored,
				})
			}

			if level == "" {
				level = "(not set)"
			}
			fmt.Fprintf(app.Out, "%s = %s\n", interaction.FirstAPILevelProperty, level)
			if ignored {
				fmt.Fprintln(app.Out, app.WarnColor("swipe-up setting ignored; gesture always enabled"))
			} else {
				fmt.Fprintln(app.Out, "swipe-up setting observed")
			}
			return nil
		},
	}
}
