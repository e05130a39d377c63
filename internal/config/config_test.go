package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestDefaultValues(t *testing.T) {
	defaults := DefaultValues()

	expected := map[string]string{
		SwipeUpSettingName:   "0",
		BackButtonVisibleKey: "true",
	}

	if len(defaults) != len(expected) {
		t.Fatalf("DefaultValues() has %d entries, want %d", len(defaults), len(expected))
	}

	for k, want := range expected {
		got, ok := defaults[k]
		if !ok {
			t.Errorf("DefaultValues() missing key %q", k)
			continue
		}
		if got != want {
			t.Errorf("DefaultValues()[%q] = %q, want %q", k, got, want)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	s := &memStore{data: map[string]string{
		SwipeUpSettingName: "1",
	}}

	if err := ApplyDefaults(s); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}

	// Pre-existing key should not be overwritten
	if v, _ := s.Get(SwipeUpSettingName); v != "1" {
		t.Errorf("%s = %q, want %q (should not be overwritten)", SwipeUpSettingName, v, "1")
	}

	// Missing keys should be filled from defaults
	if v, ok := s.Get(BackButtonVisibleKey); !ok || v != "true" {
		t.Errorf("%s = %q, %v; want %q, true", BackButtonVisibleKey, v, ok, "true")
	}
}

func TestValidate(t *testing.T) {
	s := &memStore{data: map[string]string{
		SwipeUpSettingName:   "1",
		BackButtonVisibleKey: "false",
		"custom.key":         "anything",
	}}
	if err := Validate(s); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	s.data[SwipeUpSettingName] = "yes"
	err := Validate(s)
	if err == nil {
		t.Fatal("Validate() = nil, want error for invalid swipe-up value")
	}
}

func TestIssuesSortedByKey(t *testing.T) {
	s := &memStore{data: map[string]string{
		SwipeUpSettingName:   "2",
		BackButtonVisibleKey: "no",
	}}
	issues := Issues(s)
	if len(issues) != 2 {
		t.Fatalf("Issues() = %v, want 2 entries", issues)
	}
	if !strings.HasPrefix(issues[0], BackButtonVisibleKey) || !strings.HasPrefix(issues[1], SwipeUpSettingName) {
		t.Errorf("Issues() = %v, want back button entry first", issues)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvSwipeUp, "1")
	t.Setenv(EnvBackVisible, "")

	s := &memStore{data: map[string]string{
		SwipeUpSettingName:   "0",
		BackButtonVisibleKey: "true",
	}}
	ApplyEnvOverrides(s)

	if v, _ := s.Get(SwipeUpSettingName); v != "1" {
		t.Errorf("%s = %q, want %q", SwipeUpSettingName, v, "1")
	}
	if v, _ := s.Get(BackButtonVisibleKey); v != "true" {
		t.Errorf("%s = %q, want %q (should not change)", BackButtonVisibleKey, v, "true")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfig, "")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "proxy:\n  url: ws://file/proxy\n  call_timeout: 7s\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OVS_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	if err := fs.Parse([]string{"--proxy-url", "ws://flag/proxy"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Proxy.URL != "ws://flag/proxy" {
		t.Errorf("Proxy.URL = %q, want flag value", cfg.Proxy.URL)
	}
	if cfg.Proxy.CallTimeout != 7*time.Second {
		t.Errorf("Proxy.CallTimeout = %v, want 7s from file", cfg.Proxy.CallTimeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want env value %q", cfg.Log.Level, "warn")
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil); err != nil {
		t.Errorf("Load(missing) = %v, want nil", err)
	}
}

// memStore is a simple in-memory Store for testing.
type memStore struct {
	data map[string]string
}

func (m *memStore) Get(key string) (string, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *memStore) Set(key, value string) error {
	m.data[key] = value
	return nil
}

func (m *memStore) SetInMemory(key, value string) {
	m.data[key] = value
}

func (m *memStore) Unset(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memStore) All() map[string]string {
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}
