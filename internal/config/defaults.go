package config

// Keys understood by the synchronizer.
const (
	// SwipeUpSettingName holds the user's swipe-up gesture preference.
	// "1" enables the gesture.
	SwipeUpSettingName = "swipe_up_to_switch_apps_enabled"

	// BackButtonVisibleKey mirrors the launcher's back button visibility.
	BackButtonVisibleKey = "overview.back_button_visible"
)

// DefaultValues returns the default config map for the core keys.
func DefaultValues() map[string]string {
	return map[string]string{
		SwipeUpSettingName:   "0",
		BackButtonVisibleKey: "true",
	}
}

// ApplyDefaults fills any missing core keys in s with their default values.
func ApplyDefaults(s Store) error {
	defaults := DefaultValues()
	all := s.All()
	for k, v := range defaults {
		if _, exists := all[k]; !exists {
			if err := s.Set(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}
