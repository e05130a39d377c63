package interaction

import (
	"strings"

	"overview-sync/internal/config"
	"overview-sync/internal/looper"
)

// swipeUpSettingObserver follows the swipe-up setting and forwards each
// change to the front handler, keeping only the newest undelivered value.
//
// The setting is written as the integer 1 when enabled. Because the file
// is also edited by hand, the word "true" in any case is accepted as
// enabled too; every other value, including a missing key, is disabled.
type swipeUpSettingObserver struct {
	store  config.Observable
	target *looper.Handler
}

func newSwipeUpSettingObserver(store config.Observable, target *looper.Handler) *swipeUpSettingObserver {
	return &swipeUpSettingObserver{store: store, target: target}
}

// register subscribes to the setting and returns its current value.
// Subscribing first means a change racing with the read is still
// delivered as a message.
func (o *swipeUpSettingObserver) register() bool {
	o.store.Subscribe(config.SwipeUpSettingName, o.onChange)
	return o.value()
}

func (o *swipeUpSettingObserver) onChange() {
	o.target.Replace(looper.Message{
		What: msgSetSwipeUpEnabled,
		Arg1: looper.BoolArg(o.value()),
	})
}

func (o *swipeUpSettingObserver) value() bool {
	raw, ok := o.store.Get(config.SwipeUpSettingName)
	if !ok {
		return false
	}
	return decodeSetting(raw)
}

// decodeSetting treats "1" and "true" as enabled and anything else,
// including malformed values such as "01" or "yes", as disabled.
func decodeSetting(raw string) bool {
	v := strings.TrimSpace(raw)
	return v == "1" || strings.EqualFold(v, "true")
}
