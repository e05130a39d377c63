package daemon

import (
	"context"

	"overview-sync/internal/config"
	"overview-sync/internal/interaction"
	"overview-sync/internal/looper"
)

// launcherBridge stands in for the launcher UI: it reads the back button
// visibility from the settings store and applies it from the front
// looper, which is where SetBackButtonVisible expects its callers.
type launcherBridge struct {
	store  config.Observable
	front  *looper.Handler
	holder *interaction.Holder
}

func newLauncherBridge(store config.Observable, front *looper.Looper, holder *interaction.Holder) *launcherBridge {
	b := &launcherBridge{store: store, holder: holder}
	b.front = looper.NewHandler(front, nil)
	return b
}

func (b *launcherBridge) start() {
	b.store.Subscribe(config.BackButtonVisibleKey, b.post)
	b.post()
}

func (b *launcherBridge) post() {
	raw, _ := b.store.Get(config.BackButtonVisibleKey)
	visible := parseBool(raw, true)
	b.front.Post(func(ctx context.Context) {
		b.holder.Get(ctx).SetBackButtonVisible(visible)
	})
}
