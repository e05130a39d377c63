// ovs keeps the system UI's overview interaction flags in sync with the
// swipe-up setting and the launcher's back button.
package main

import (
	"fmt"
	"os"

	"overview-sync/internal/cmd"
)

var (
	run    = func() error { return cmd.Execute() }
	osExit = os.Exit
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}
