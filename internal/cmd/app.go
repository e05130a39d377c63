// Package cmd implements the ovs command-line interface.
package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"overview-sync/internal/config"
	"overview-sync/internal/sysprop"
)

// App holds application state shared across commands.
type App struct {
	Config      config.Config
	ConfigStore config.Observable
	Props       sysprop.Source
	Logger      zerolog.Logger
	Out         io.Writer
	Err         io.Writer
	JSON        bool // output in JSON format
}

// SuccessColor returns the string wrapped in green ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) SuccessColor(s string) string {
	if a.isTerminal() {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

// WarnColor returns the string wrapped in orange ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) WarnColor(s string) string {
	if a.isTerminal() {
		return "\033[38;5;208m" + s + "\033[0m"
	}
	return s
}

func (a *App) isTerminal() bool {
	f, ok := a.Out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *App) writeJSON(v any) error {
	enc := json.NewEncoder(a.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
