package interaction

import (
	"strconv"
	"strings"

	"overview-sync/internal/sysprop"
)

const (
	// FirstAPILevelProperty names the API level the device shipped with.
	FirstAPILevelProperty = "ro.product.first_api_level"

	// VersionCodeP is the first API level on which swipe-up is always on.
	VersionCodeP = 28
)

// ShouldIgnoreSwipeUpSetting reports whether the device shipped with an
// API level at which the swipe-up setting no longer applies. An absent
// or unparsable property counts as below the threshold.
func ShouldIgnoreSwipeUpSetting(props sysprop.Source) bool {
	if props == nil {
		return false
	}
	level, err := strconv.Atoi(strings.TrimSpace(props.Get(FirstAPILevelProperty, "0")))
	if err != nil {
		return false
	}
	return level >= VersionCodeP
}
