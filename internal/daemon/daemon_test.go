package daemon

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"overview-sync/internal/config"
	"overview-sync/internal/config/yamlstore"
	"overview-sync/internal/interaction"
	"overview-sync/internal/proxy"
)

type remoteUI struct {
	mu    sync.Mutex
	flags []interaction.Flags
}

func (r *remoteUI) SetInteractionState(_ context.Context, flags interaction.Flags) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags = append(r.flags, flags)
	return nil
}

func (r *remoteUI) last() (interaction.Flags, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.flags) == 0 {
		return 0, false
	}
	return r.flags[len(r.flags)-1], true
}

func (r *remoteUI) all() []interaction.Flags {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interaction.Flags(nil), r.flags...)
}

func (r *remoteUI) waitFor(t *testing.T, want interaction.Flags) {
	t.Helper()
	require.Eventually(t, func() bool {
		got, ok := r.last()
		return ok && got == want
	}, 5*time.Second, 10*time.Millisecond, "remote never received %s", want)
}

func testConfig(t *testing.T, proxyURL, apiLevel string) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Store = filepath.Join(dir, "settings.yaml")
	cfg.Props = filepath.Join(dir, "build.prop")
	cfg.Proxy.URL = proxyURL
	require.NoError(t, os.WriteFile(cfg.Props, []byte("ro.product.first_api_level="+apiLevel+"\n"), 0644))
	return cfg
}

func startDaemon(t *testing.T, cfg config.Config) *Daemon {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	d, err := Start(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		cancel()
		d.Wait()
	})
	return d
}

func TestDaemonForwardsSettingChanges(t *testing.T) {
	remote := &remoteUI{}
	srv := httptest.NewServer(proxy.NewServer(remote, zerolog.Nop()))
	defer srv.Close()

	cfg := testConfig(t, "ws"+strings.TrimPrefix(srv.URL, "http"), "27")
	seed, err := yamlstore.New(cfg.Store)
	require.NoError(t, err)
	require.NoError(t, seed.Set(config.SwipeUpSettingName, "0"))

	d := startDaemon(t, cfg)
	assert.True(t, d.Sync.ObservesSetting())
	remote.waitFor(t, interaction.DisableSwipeUp|interaction.DisableQuickScrub|interaction.ShowOverviewButton)

	// Another process (the CLI) enables swipe-up and hides the back button.
	writer, err := yamlstore.New(cfg.Store)
	require.NoError(t, err)
	require.NoError(t, writer.Set(config.SwipeUpSettingName, "1"))
	remote.waitFor(t, 0)

	require.NoError(t, writer.Set(config.BackButtonVisibleKey, "false"))
	remote.waitFor(t, interaction.HideBackButton)
	assert.True(t, d.Sync.SwipeUpGestureEnabled())
}

func TestDaemonKeepsEnvOverrideAcrossFileChanges(t *testing.T) {
	t.Setenv(config.EnvSwipeUp, "0")

	remote := &remoteUI{}
	srv := httptest.NewServer(proxy.NewServer(remote, zerolog.Nop()))
	defer srv.Close()

	cfg := testConfig(t, "ws"+strings.TrimPrefix(srv.URL, "http"), "27")
	seed, err := yamlstore.New(cfg.Store)
	require.NoError(t, err)
	require.NoError(t, seed.Set(config.SwipeUpSettingName, "1"))

	d := startDaemon(t, cfg)
	disabled := interaction.DisableSwipeUp | interaction.DisableQuickScrub | interaction.ShowOverviewButton
	remote.waitFor(t, disabled)
	before := len(remote.all())

	// Another process writes an unrelated key; the daemon reloads the file.
	writer, err := yamlstore.New(cfg.Store)
	require.NoError(t, err)
	require.NoError(t, writer.Set(config.BackButtonVisibleKey, "false"))

	require.Eventually(t, func() bool {
		v, _ := d.Store.Get(config.BackButtonVisibleKey)
		return v == "false" && len(remote.all()) > before
	}, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, d.Sync.Flush(ctx))

	assert.False(t, d.Sync.SwipeUpGestureEnabled())
	for _, got := range remote.all() {
		assert.Equal(t, disabled, got)
	}
	v, _ := d.Store.Get(config.SwipeUpSettingName)
	assert.Equal(t, "0", v)
}

func TestDaemonIgnoresSettingOnNewDevices(t *testing.T) {
	remote := &remoteUI{}
	srv := httptest.NewServer(proxy.NewServer(remote, zerolog.Nop()))
	defer srv.Close()

	cfg := testConfig(t, "ws"+strings.TrimPrefix(srv.URL, "http"), "29")
	seed, err := yamlstore.New(cfg.Store)
	require.NoError(t, err)
	require.NoError(t, seed.Set(config.SwipeUpSettingName, "0"))

	d := startDaemon(t, cfg)
	assert.False(t, d.Sync.ObservesSetting())
	assert.True(t, d.Sync.SwipeUpGestureEnabled())
	remote.waitFor(t, 0)
}

func TestDaemonCountsProxyFailures(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	cfg := testConfig(t, url, "27")
	cfg.Proxy.DialTimeout = 200 * time.Millisecond
	d := startDaemon(t, cfg)

	require.Eventually(t, func() bool { return d.Failures() > 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestParseBool(t *testing.T) {
	assert.True(t, parseBool("true", false))
	assert.False(t, parseBool(" false ", true))
	assert.True(t, parseBool("garbage", true))
	assert.False(t, parseBool("", false))
}
