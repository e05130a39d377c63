package config

import (
	"fmt"
	"sort"
	"strings"
)

// validValues maps known keys to their allowed values.
var validValues = map[string][]string{
	SwipeUpSettingName:   {"0", "1"},
	BackButtonVisibleKey: {"true", "false"},
}

// Validate checks all values in s for known keys. It returns an error
// describing every invalid value found, or nil if all values are valid.
func Validate(s Store) error {
	issues := Issues(s)
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(issues, "\n  "))
}

// Issues returns one message per known key in s holding an invalid value,
// sorted by key.
func Issues(s Store) []string {
	all := s.All()
	var issues []string

	keys := make([]string, 0, len(validValues))
	for k := range validValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val, ok := all[key]
		if !ok {
			continue
		}
		allowed := validValues[key]
		if !contains(allowed, val) {
			issues = append(issues, fmt.Sprintf(
				"%s: invalid value %q (allowed: %s)",
				key, val, strings.Join(allowed, ", ")))
		}
	}
	return issues
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
