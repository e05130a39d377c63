package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"overview-sync/internal/config"
	"overview-sync/internal/config/yamlstore"
	"overview-sync/internal/logging"
	"overview-sync/internal/sysprop"
)

// AppProvider lazily initializes the App on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Captured from flags before Execute()
	ConfigPath string
	JSONOutput bool
	Flags      *pflag.FlagSet
	Out        io.Writer
	Err        io.Writer
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
// Used for testing commands with a mock/test App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{
		app: app,
		Out: app.Out,
		Err: app.Err,
	}
}

func (p *AppProvider) init() (*App, error) {
	cfg, err := config.Load(p.ConfigPath, p.Flags)
	if err != nil {
		return nil, err
	}

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	store, err := yamlstore.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}
	props, err := sysprop.Open(cfg.Props)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:      cfg,
		ConfigStore: store,
		Props:       props,
		Logger:      logging.New(errOut, cfg.Log.Level, cfg.Log.Format),
		Out:         out,
		Err:         errOut,
		JSON:        p.JSONOutput,
	}, nil
}

// Execute runs the CLI.
func Execute() error {
	provider := &AppProvider{
		Out: os.Stdout,
		Err: os.Stderr,
	}

	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ovs",
		Short: "Keep overview interaction flags in sync with the system UI",
		Long: `ovs watches the swipe-up gesture setting and the launcher's back button
state, combines them into the overview interaction bitmask and sends it to
the system UI proxy whenever an input changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags - these populate the provider config
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&provider.JSONOutput, "json", false, "Output in JSON format")
	flags.StringVar(&provider.ConfigPath, "config", "", "Path to the daemon config file (default: $HOME/.config/ovs/config.yaml)")
	config.RegisterFlags(flags)
	provider.Flags = flags

	rootCmd.AddCommand(newRunCmd(provider))
	rootCmd.AddCommand(newConfigCmd(provider))
	rootCmd.AddCommand(newFlagsCmd(provider))
	rootCmd.AddCommand(newPolicyCmd(provider))
	rootCmd.AddCommand(newProxyCmd(provider))
	rootCmd.AddCommand(newVersionCmd(provider))

	return rootCmd
}
