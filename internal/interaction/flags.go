package interaction

import (
	"strconv"
	"strings"
)

// Flags is the interaction bitmask sent to the system UI proxy. Bit
// values are fixed by the navigation bar protocol.
type Flags int32

const (
	// DisableSwipeUp stops the swipe-up gesture from opening overview.
	DisableSwipeUp Flags = 0x1
	// DisableQuickScrub disables quick scrub on the home button.
	DisableQuickScrub Flags = 0x2
	// ShowOverviewButton shows the overview button.
	ShowOverviewButton Flags = 0x4
	// HideBackButton hides the back button.
	HideBackButton Flags = 0x8
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{DisableSwipeUp, "DISABLE_SWIPE_UP"},
	{DisableQuickScrub, "DISABLE_QUICK_SCRUB"},
	{ShowOverviewButton, "SHOW_OVERVIEW_BUTTON"},
	{HideBackButton, "HIDE_BACK_BUTTON"},
}

// ComputeFlags derives the bitmask from the two interaction inputs. The
// branches are exclusive: with swipe-up disabled the back button state
// is not consulted.
func ComputeFlags(swipeUpEnabled, backButtonVisible bool) Flags {
	if !swipeUpEnabled {
		return DisableSwipeUp | DisableQuickScrub | ShowOverviewButton
	}
	if backButtonVisible {
		return 0
	}
	return HideBackButton
}

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// String renders f as NAME|NAME, "0" for no flags, with any unknown bits
// appended in hex.
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	rest := f
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, "0x"+strconv.FormatInt(int64(rest), 16))
	}
	return strings.Join(parts, "|")
}
