package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"overview-sync/internal/interaction"
	"overview-sync/internal/proxy"
)

// newProxyCmd creates the proxy command with subcommands.
func newProxyCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Stand-in system UI proxy",
		Long: `Commands for the remote end of the interaction proxy.

Subcommands:
  serve     Accept interaction flags and log them`,
	}

	cmd.AddCommand(newProxyServeCmd(provider))

	return cmd
}

// newProxyServeCmd creates the "proxy serve" subcommand.
func newProxyServeCmd(provider *AppProvider) *cobra.Command {
	var listen, path string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept interaction flags and log them",
		Long: `Listen for synchronizer connections and log every interaction
state received. Useful for watching a daemon without a real system UI.

Examples:
  ovs proxy serve --listen 127.0.0.1:7420
  ovs run --proxy-url ws://127.0.0.1:7420/proxy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", listen, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mux := http.NewServeMux()
			mux.Handle(path, proxy.NewServer(logReceiver(app.Logger), app.Logger))
			srv := &http.Server{
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			app.Logger.Info().Str("url", fmt.Sprintf("ws://%s%s", ln.Addr(), path)).Msg("proxy listening")
			return serve(ctx, srv, ln)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:7420", "Address to listen on")
	cmd.Flags().StringVar(&path, "path", "/proxy", "HTTP path of the websocket endpoint")

	return cmd
}

// logReceiver accepts every interaction state. The server already logs
// each frame, so the receiver only records the decoded flag bits.
func logReceiver(log zerolog.Logger) interaction.SystemUIProxy {
	return interaction.ProxyFunc(func(_ context.Context, flags interaction.Flags) error {
		log.Debug().
			Bool("swipe_up_disabled", flags.Has(interaction.DisableSwipeUp)).
			Bool("back_button_hidden", flags.Has(interaction.HideBackButton)).
			Msg("applied")
		return nil
	})
}

// serve runs srv on ln until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
