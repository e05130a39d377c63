package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"overview-sync/internal/config"
	"overview-sync/internal/config/yamlstore"
	"overview-sync/internal/sysprop"
)

// setupTestApp creates an App with a fresh YAMLStore and no properties.
func setupTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	store, err := yamlstore.New(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	var out bytes.Buffer
	app := &App{
		Config:      config.Default(),
		ConfigStore: store,
		Props:       sysprop.Map{},
		Logger:      zerolog.Nop(),
		Out:         &out,
		Err:         &out,
	}
	return app, &out
}

// seedConfigStore writes the given key-value pairs to the app's store.
func seedConfigStore(t *testing.T, app *App, pairs map[string]string) {
	t.Helper()
	for k, v := range pairs {
		if err := app.ConfigStore.Set(k, v); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}
}

func TestConfigGet_CoreKey(t *testing.T) {
	app, out := setupTestApp(t)
	seedConfigStore(t, app, map[string]string{
		config.SwipeUpSettingName: "1",
	})

	cmd := newConfigGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{config.SwipeUpSettingName})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config get failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "1" {
		t.Errorf("config get %s = %q, want %q", config.SwipeUpSettingName, got, "1")
	}
}

func TestConfigGet_NotSet(t *testing.T) {
	app, out := setupTestApp(t)

	cmd := newConfigGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"custom.key"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config get failed: %v", err)
	}

	want := "custom.key (not set)"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("config get = %q, want %q", got, want)
	}
}

func TestConfigGet_JSON(t *testing.T) {
	app, out := setupTestApp(t)
	app.JSON = true
	seedConfigStore(t, app, map[string]string{
		config.BackButtonVisibleKey: "false",
	})

	cmd := newConfigGetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{config.BackButtonVisibleKey})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config get failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if result["value"] != "false" || result["set"] != true {
		t.Errorf("config get --json = %v, want value false and set true", result)
	}
}

func TestConfigSet(t *testing.T) {
	app, out := setupTestApp(t)

	cmd := newConfigSetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{config.SwipeUpSettingName, "1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config set failed: %v", err)
	}

	want := "Set " + config.SwipeUpSettingName + " = 1"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("config set output = %q, want %q", got, want)
	}

	// The value must reach the file, not only memory.
	reloaded, err := yamlstore.New(app.ConfigStore.(*yamlstore.YAMLStore).Path())
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := reloaded.Get(config.SwipeUpSettingName); !ok || v != "1" {
		t.Errorf("persisted %s = %q, %v; want %q, true", config.SwipeUpSettingName, v, ok, "1")
	}
}

func TestConfigUnset(t *testing.T) {
	app, out := setupTestApp(t)
	seedConfigStore(t, app, map[string]string{
		config.SwipeUpSettingName: "1",
	})

	cmd := newConfigUnsetCmd(NewTestProvider(app))
	cmd.SetArgs([]string{config.SwipeUpSettingName})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config unset failed: %v", err)
	}

	if _, ok := app.ConfigStore.Get(config.SwipeUpSettingName); ok {
		t.Error("key still set after unset")
	}
	if got := strings.TrimSpace(out.String()); got != "Unset "+config.SwipeUpSettingName {
		t.Errorf("config unset output = %q", got)
	}
}

func TestConfigList_FillsDefaults(t *testing.T) {
	app, out := setupTestApp(t)
	seedConfigStore(t, app, map[string]string{
		config.SwipeUpSettingName: "1",
		"custom.key":              "x",
	})

	cmd := newConfigListCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config list failed: %v", err)
	}

	want := "Configuration:\n" +
		"  custom.key = x\n" +
		"  overview.back_button_visible = true\n" +
		"  swipe_up_to_switch_apps_enabled = 1\n"
	if got := out.String(); got != want {
		t.Errorf("config list output:\n%s\nwant:\n%s", got, want)
	}
}

func TestConfigList_JSON(t *testing.T) {
	app, out := setupTestApp(t)
	app.JSON = true

	cmd := newConfigListCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config list failed: %v", err)
	}

	var result map[string]string
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if result[config.SwipeUpSettingName] != "0" {
		t.Errorf("default %s = %q, want %q", config.SwipeUpSettingName, result[config.SwipeUpSettingName], "0")
	}
}

func TestConfigValidate_Valid(t *testing.T) {
	app, out := setupTestApp(t)
	seedConfigStore(t, app, map[string]string{
		config.SwipeUpSettingName:   "0",
		config.BackButtonVisibleKey: "true",
	})

	cmd := newConfigValidateCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Configuration is valid." {
		t.Errorf("config validate output = %q", got)
	}
}

func TestConfigValidate_Invalid(t *testing.T) {
	app, out := setupTestApp(t)
	app.JSON = true
	seedConfigStore(t, app, map[string]string{
		config.SwipeUpSettingName:   "yes",
		config.BackButtonVisibleKey: "maybe",
	})

	cmd := newConfigValidateCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("config validate should fail for invalid values")
	}
	if !strings.Contains(err.Error(), "2 error(s)") {
		t.Errorf("error = %q, want it to count 2 errors", err)
	}

	var result struct {
		Valid  bool     `json:"valid"`
		Issues []string `json:"issues"`
	}
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if result.Valid || len(result.Issues) != 2 {
		t.Errorf("validate --json = %+v, want 2 issues", result)
	}
}
