package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is the ovs release. Builds override it with
// -ldflags "-X overview-sync/internal/cmd.Version=1.2.3"; otherwise the
// module version recorded in the binary is used when there is one.
var Version = "0.1.0"

// buildVersion returns Version, or the main module version for binaries
// installed with go install.
func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return Version
	}
	return info.Main.Version
}

func newVersionCmd(provider *AppProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version := buildVersion()
			out := cmd.OutOrStdout()
			if provider.Out != nil {
				out = provider.Out
			}
			if provider.JSONOutput {
				app := &App{Out: out}
				return app.writeJSON(map[string]string{
					"version": version,
					"go":      runtime.Version(),
				})
			}
			fmt.Fprintf(out, "ovs %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
