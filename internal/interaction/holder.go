package interaction

import (
	"context"
	"errors"
	"fmt"
)

// ErrConstruct is wrapped into the panic raised when the synchronizer
// cannot be built on the front looper.
var ErrConstruct = errors.New("interaction: cannot construct synchronizer on the front looper")

// Holder owns the process's single Synchronizer and builds it lazily on
// the front looper. The instance field is touched only from the front
// looper, so it needs no lock.
type Holder struct {
	env      Env
	instance *Synchronizer
}

// NewHolder returns a Holder that builds its Synchronizer from env.
func NewHolder(env Env) *Holder {
	return &Holder{env: env}
}

// Get returns the Synchronizer, constructing it on first use. Called from
// outside the front looper it blocks until the front looper has run the
// construction. Failure to get there (the looper stopped, ctx ended, or
// construction panicked) means the caller broke the threading contract,
// and Get panics with an error wrapping ErrConstruct.
//
// Callers already on the front looper must pass the ctx they were
// dispatched with; see looper.Looper.Submit.
func (h *Holder) Get(ctx context.Context) *Synchronizer {
	if h.env.Front.IsCurrent(ctx) {
		if h.instance == nil {
			h.instance = newSynchronizer(h.env)
		}
		return h.instance
	}

	var s *Synchronizer
	err := h.env.Front.Submit(ctx, func(ctx context.Context) {
		s = h.Get(ctx)
	})
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrConstruct, err))
	}
	return s
}
