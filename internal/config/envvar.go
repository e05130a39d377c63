package config

import "os"

// Environment variable names for ovs configuration.
const (
	EnvPrefix      = "OVS"
	EnvConfig      = "OVS_CONFIG"       // Path to the daemon config file
	EnvStore       = "OVS_STORE"        // Path to the observed settings file
	EnvSwipeUp     = "OVS_SWIPE_UP"     // Override swipe-up setting ("0" or "1")
	EnvBackVisible = "OVS_BACK_VISIBLE" // Override back button visibility
)

// ApplyEnvOverrides checks OVS_SWIPE_UP and OVS_BACK_VISIBLE env vars
// and overrides the corresponding values in memory.
// These overrides are not persisted to the settings file.
func ApplyEnvOverrides(s Store) {
	if v := os.Getenv(EnvSwipeUp); v != "" {
		s.SetInMemory(SwipeUpSettingName, v)
	}
	if v := os.Getenv(EnvBackVisible); v != "" {
		s.SetInMemory(BackButtonVisibleKey, v)
	}
}
