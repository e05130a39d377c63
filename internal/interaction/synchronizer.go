// Package interaction keeps the system UI's overview interaction flags in
// step with the swipe-up setting and the launcher's back button.
//
// Inputs arrive on two execution contexts. The front looper is where UI
// callers live; it only relays. The back looper owns the interaction
// state, recomputes the flag bitmask after every change and calls the
// remote proxy. Every mutation travels as a message, so the state needs
// no lock and the proxy sees updates in a single total order. Repeated
// updates of one kind that have not been delivered yet are replaced, so
// only the latest value is acted on.
package interaction

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"overview-sync/internal/config"
	"overview-sync/internal/logging"
	"overview-sync/internal/looper"
	"overview-sync/internal/sysprop"
)

const (
	msgSetProxy             = 200
	msgSetBackButtonVisible = 201
	msgSetSwipeUpEnabled    = 202
)

// errorBuffer bounds the diagnostic error channel.
const errorBuffer = 16

// SystemUIProxy is the remote side that applies interaction flags.
type SystemUIProxy interface {
	SetInteractionState(ctx context.Context, flags Flags) error
}

// ProxyFunc adapts a function to SystemUIProxy.
type ProxyFunc func(ctx context.Context, flags Flags) error

// SetInteractionState calls f.
func (f ProxyFunc) SetInteractionState(ctx context.Context, flags Flags) error {
	return f(ctx, flags)
}

// ProxyError reports a failed remote call. The state that produced
// Flags is kept; the call is not retried.
type ProxyError struct {
	Flags Flags
	Err   error
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("set interaction state %s: %v", e.Flags, e.Err)
}

func (e *ProxyError) Unwrap() error { return e.Err }

// Env carries the collaborators a Synchronizer is built from.
type Env struct {
	Front    *looper.Looper
	Back     *looper.Looper
	Settings config.Observable
	Props    sysprop.Source
	Logger   zerolog.Logger
}

// state is read and written only by the back handler.
type state struct {
	proxy             SystemUIProxy
	backButtonVisible bool
	swipeUpEnabled    bool
}

// Synchronizer forwards interaction flags to the system UI proxy.
// Obtain one through Holder.Get.
type Synchronizer struct {
	log      zerolog.Logger
	front    *looper.Handler
	back     *looper.Handler
	observer *swipeUpSettingObserver

	state state

	swipeUpEnabled atomic.Bool
	listener       atomic.Pointer[func()]
	errs           chan error
}

// newSynchronizer must run on env.Front so that a settings change
// cannot be relayed to the back looper before the initial value is set.
func newSynchronizer(env Env) *Synchronizer {
	s := &Synchronizer{
		log: logging.Component(env.Logger, "interaction"),
		state: state{
			backButtonVisible: true,
			swipeUpEnabled:    true,
		},
		errs: make(chan error, errorBuffer),
	}
	s.front = looper.NewHandler(env.Front, s.handleFrontMessage)
	s.back = looper.NewHandler(env.Back, s.handleBackMessage)

	switch {
	case ShouldIgnoreSwipeUpSetting(env.Props):
		s.log.Debug().Msg("swipe-up setting ignored on this device; gesture always enabled")
	case env.Settings == nil:
		s.log.Debug().Msg("no settings store; swipe-up gesture always enabled")
	default:
		s.observer = newSwipeUpSettingObserver(env.Settings, s.front)
		s.state.swipeUpEnabled = s.observer.register()
	}
	s.swipeUpEnabled.Store(s.state.swipeUpEnabled)
	return s
}

// SwipeUpGestureEnabled reports the swipe-up value most recently applied
// on the back looper.
func (s *Synchronizer) SwipeUpGestureEnabled() bool {
	return s.swipeUpEnabled.Load()
}

// ObservesSetting reports whether the swipe-up setting is being followed.
func (s *Synchronizer) ObservesSetting() bool {
	return s.observer != nil
}

// SetBackButtonVisible records the launcher's back button visibility.
// Callers are expected to be on the front looper; the call never waits
// for the back looper.
func (s *Synchronizer) SetBackButtonVisible(visible bool) {
	s.front.Replace(looper.Message{
		What: msgSetBackButtonVisible,
		Arg1: looper.BoolArg(visible),
	})
}

// SetSystemUIProxy installs the remote proxy. A nil proxy stops remote
// calls until another one is set.
func (s *Synchronizer) SetSystemUIProxy(proxy SystemUIProxy) {
	s.back.Send(looper.Message{What: msgSetProxy, Obj: proxy})
}

// SetOnSwipeUpSettingChangedListener registers fn to run on the back
// looper whenever a swipe-up setting change is applied. It replaces any
// earlier listener; nil clears it.
func (s *Synchronizer) SetOnSwipeUpSettingChangedListener(fn func()) {
	if fn == nil {
		s.listener.Store(nil)
		return
	}
	s.listener.Store(&fn)
}

// Errors delivers failed proxy calls for diagnostics. Errors are dropped
// when nobody drains the channel.
func (s *Synchronizer) Errors() <-chan error {
	return s.errs
}

// Flush waits until every message queued before the call has passed
// through both loopers.
func (s *Synchronizer) Flush(ctx context.Context) error {
	if err := s.front.Looper().Sync(ctx); err != nil {
		return err
	}
	return s.back.Looper().Sync(ctx)
}

// handleFrontMessage relays to the back looper so that all three kinds
// of update share one ordered queue.
func (s *Synchronizer) handleFrontMessage(_ context.Context, msg looper.Message) {
	s.back.Replace(looper.Message{What: msg.What, Arg1: msg.Arg1})
}

func (s *Synchronizer) handleBackMessage(ctx context.Context, msg looper.Message) {
	switch msg.What {
	case msgSetProxy:
		proxy, _ := msg.Obj.(SystemUIProxy)
		s.state.proxy = proxy
	case msgSetBackButtonVisible:
		s.state.backButtonVisible = msg.Arg1 != 0
	case msgSetSwipeUpEnabled:
		s.state.swipeUpEnabled = msg.Arg1 != 0
		s.swipeUpEnabled.Store(s.state.swipeUpEnabled)
		if fn := s.listener.Load(); fn != nil {
			(*fn)()
		}
	default:
		s.log.Warn().Int("what", msg.What).Msg("unknown message")
		return
	}
	s.applyFlags(ctx)
}

func (s *Synchronizer) applyFlags(ctx context.Context) {
	if s.state.proxy == nil {
		return
	}

	flags := ComputeFlags(s.state.swipeUpEnabled, s.state.backButtonVisible)
	if err := s.state.proxy.SetInteractionState(ctx, flags); err != nil {
		s.log.Warn().Err(err).Stringer("flags", flags).Msg("unable to update overview interaction flags")
		select {
		case s.errs <- &ProxyError{Flags: flags, Err: err}:
		default:
		}
		return
	}
	s.log.Debug().Stringer("flags", flags).Msg("interaction flags applied")
}
