// Package daemon wires the synchronizer to its settings file, system
// properties and remote proxy, and runs it until cancelled.
package daemon

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"overview-sync/internal/config"
	"overview-sync/internal/config/yamlstore"
	"overview-sync/internal/interaction"
	"overview-sync/internal/logging"
	"overview-sync/internal/looper"
	"overview-sync/internal/proxy"
	"overview-sync/internal/sysprop"
)

// Daemon holds the running components.
type Daemon struct {
	Front  *looper.Looper
	Back   *looper.Looper
	Store  *yamlstore.YAMLStore
	Holder *interaction.Holder
	Sync   *interaction.Synchronizer
	Client *proxy.Client

	failures atomic.Int64
	log      zerolog.Logger
}

// Start builds and starts every component. The loopers and the settings
// watcher stop when ctx is done; call Wait to block until then.
func Start(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Daemon, error) {
	d := &Daemon{
		Front: looper.New("front", log),
		Back:  looper.New("back", log),
		log:   logging.Component(log, "daemon"),
	}

	store, err := yamlstore.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening settings: %w", err)
	}
	config.ApplyEnvOverrides(store)
	d.Store = store

	props, err := sysprop.Open(cfg.Props)
	if err != nil {
		return nil, err
	}

	if err := store.Watch(ctx, log); err != nil {
		return nil, fmt.Errorf("watching settings: %w", err)
	}

	d.Front.Start(ctx)
	d.Back.Start(ctx)

	d.Holder = interaction.NewHolder(interaction.Env{
		Front:    d.Front,
		Back:     d.Back,
		Settings: store,
		Props:    props,
		Logger:   log,
	})
	d.Sync = d.Holder.Get(ctx)
	d.Sync.SetOnSwipeUpSettingChangedListener(func() {
		d.log.Info().Bool("enabled", d.Sync.SwipeUpGestureEnabled()).Msg("swipe-up setting changed")
	})
	d.log.Info().
		Bool("observing", d.Sync.ObservesSetting()).
		Bool("swipe_up", d.Sync.SwipeUpGestureEnabled()).
		Str("settings", store.Path()).
		Msg("synchronizer ready")

	newLauncherBridge(store, d.Front, d.Holder).start()

	if cfg.Proxy.URL != "" {
		d.Client = proxy.NewClient(cfg.Proxy.URL, proxy.Options{
			DialTimeout: cfg.Proxy.DialTimeout,
			CallTimeout: cfg.Proxy.CallTimeout,
		}, log)
		d.Sync.SetSystemUIProxy(d.Client)
		go d.dialProxy(ctx)
	} else {
		d.log.Warn().Msg("no proxy url configured; flags are computed but not sent")
	}

	go d.countFailures(ctx)
	return d, nil
}

// Wait blocks until both loopers have stopped and closes the proxy client.
func (d *Daemon) Wait() {
	<-d.Front.Done()
	<-d.Back.Done()
	if d.Client != nil {
		d.Client.Close()
	}
	d.log.Info().Int64("proxy_failures", d.Failures()).Msg("stopped")
}

// Run starts the daemon and blocks until ctx is done.
func Run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	d, err := Start(ctx, cfg, log)
	if err != nil {
		return err
	}
	d.Wait()
	return nil
}

// dialProxy connects ahead of the first update so an unreachable proxy
// shows up at startup. The client dials again on every call regardless.
func (d *Daemon) dialProxy(ctx context.Context) {
	if err := d.Client.Connect(ctx); err != nil {
		d.log.Warn().Err(err).Msg("proxy not reachable yet")
		return
	}
	d.log.Info().Msg("proxy connected")
}

// Failures returns the number of failed proxy calls seen so far.
func (d *Daemon) Failures() int64 {
	return d.failures.Load()
}

func (d *Daemon) countFailures(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-d.Sync.Errors():
			n := d.failures.Add(1)
			d.log.Debug().Err(err).Int64("total", n).Msg("proxy call failed")
		}
	}
}

func parseBool(raw string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return b
}
