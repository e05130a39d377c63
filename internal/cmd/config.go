package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"overview-sync/internal/config"
)

// newConfigCmd creates the config command with subcommands.
func newConfigCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage observed settings",
		Long: `Manage the settings file watched by the daemon.

Settings are stored as flat key-value pairs. The daemon follows
swipe_up_to_switch_apps_enabled and overview.back_button_visible;
custom keys are accepted and ignored.

Subcommands:
  get       Get a setting value
  set       Set a setting value
  list      List all setting values
  unset     Remove a setting value
  validate  Validate settings`,
	}

	cmd.AddCommand(newConfigGetCmd(provider))
	cmd.AddCommand(newConfigSetCmd(provider))
	cmd.AddCommand(newConfigListCmd(provider))
	cmd.AddCommand(newConfigUnsetCmd(provider))
	cmd.AddCommand(newConfigValidateCmd(provider))

	return cmd
}

// newConfigGetCmd creates the "config get" subcommand.
func newConfigGetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a setting value",
		Long: `Get the value of a setting.

Prints the bare value if the key is set, or "key (not set)" if missing.

Examples:
  ovs config get swipe_up_to_switch_apps_enabled
  ovs config get overview.back_button_visible`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			value, ok := app.ConfigStore.Get(key)

			if app.JSON {
				return app.writeJSON(map[string]any{
					"key":   key,
					"value": value,
					"set":   ok,
				})
			}

			if ok {
				fmt.Fprintln(app.Out, value)
			} else {
				fmt.Fprintf(app.Out, "%s (not set)\n", key)
			}
			return nil
		},
	}
}

// newConfigSetCmd creates the "config set" subcommand.
func newConfigSetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting value",
		Long: `Set a setting to a value.

A running daemon picks the change up from the file.

Examples:
  ovs config set swipe_up_to_switch_apps_enabled 1
  ovs config set overview.back_button_visible false`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			if err := app.ConfigStore.Set(key, value); err != nil {
				return fmt.Errorf("setting config: %w", err)
			}

			if app.JSON {
				return app.writeJSON(map[string]string{
					"key":   key,
					"value": value,
				})
			}

			fmt.Fprintf(app.Out, "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// newConfigListCmd creates the "config list" subcommand.
func newConfigListCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all setting values",
		Long: `List all setting key-value pairs, with defaults filled in for
core keys that are not set.

Entries are sorted alphabetically by key.

Examples:
  ovs config list
  ovs config list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			all := app.ConfigStore.All()
			for k, v := range config.DefaultValues() {
				if _, exists := all[k]; !exists {
					all[k] = v
				}
			}

			if app.JSON {
				return app.writeJSON(all)
			}

			fmt.Fprintln(app.Out, "Configuration:")
			for _, k := range sortedKeys(all) {
				fmt.Fprintf(app.Out, "  %s = %s\n", k, all[k])
			}
			return nil
		},
	}
}

// newConfigUnsetCmd creates the "config unset" subcommand.
func newConfigUnsetCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a setting value",
		Long: `Remove a setting.

The key is removed from the file regardless of whether it was set.

Examples:
  ovs config unset swipe_up_to_switch_apps_enabled`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			key := args[0]
			if err := app.ConfigStore.Unset(key); err != nil {
				return fmt.Errorf("unsetting config: %w", err)
			}

			if app.JSON {
				return app.writeJSON(map[string]string{"key": key})
			}

			fmt.Fprintf(app.Out, "Unset %s\n", key)
			return nil
		},
	}
}

// newConfigValidateCmd creates the "config validate" subcommand.
func newConfigValidateCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate settings",
		Long: `Validate the current settings.

Checks that known keys have valid values. Unknown (custom) keys
are always accepted.

Examples:
  ovs config validate
  ovs config validate --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			issues := config.Issues(app.ConfigStore)

			if app.JSON {
				if issues == nil {
					issues = []string{}
				}
				if err := app.writeJSON(map[string]any{
					"valid":  len(issues) == 0,
					"issues": issues,
				}); err != nil {
					return err
				}
			} else if len(issues) == 0 {
				fmt.Fprintln(app.Out, app.SuccessColor("Configuration is valid."))
				return nil
			} else {
				fmt.Fprintln(app.Out, "Configuration errors:")
				for _, issue := range issues {
					fmt.Fprintf(app.Out, "  %s\n", issue)
				}
			}

			if len(issues) > 0 {
				return fmt.Errorf("configuration has %d error(s)", len(issues))
			}
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
