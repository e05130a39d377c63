// Package looper provides serialized execution contexts.
//
// A Looper owns an ordered message queue drained by a single goroutine.
// Handlers attached to a Looper receive their messages on that goroutine,
// one at a time, in the order they were enqueued. Producers on any
// goroutine may enqueue without waiting for the consumer.
package looper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrQuitting is returned when work is offered to a Looper that has stopped.
var ErrQuitting = errors.New("looper: quitting")

// ErrExecution wraps a panic raised by a function run through Submit.
var ErrExecution = errors.New("looper: execution failed")

type ctxKey struct{}

// Current returns the Looper whose goroutine is running ctx, or nil when
// ctx was not handed out by a Looper.
func Current(ctx context.Context) *Looper {
	if ctx == nil {
		return nil
	}
	l, _ := ctx.Value(ctxKey{}).(*Looper)
	return l
}

// Looper is a single-consumer message queue.
type Looper struct {
	log zerolog.Logger

	mu       sync.Mutex
	queue    []*Message
	quitting bool
	wake     chan struct{}

	startOnce sync.Once
	done      chan struct{}
}

// New creates a Looper. Messages may be enqueued immediately; they are
// dispatched once Run or Start is called.
func New(name string, log zerolog.Logger) *Looper {
	return &Looper{
		log:  log.With().Str("looper", name).Logger(),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start runs the loop on a new goroutine.
func (l *Looper) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Run drains the queue until ctx is done. Pending messages are dropped
// on exit. Run may only be called once; later calls return immediately.
func (l *Looper) Run(ctx context.Context) {
	started := false
	l.startOnce.Do(func() { started = true })
	if !started {
		return
	}
	defer close(l.done)

	loopCtx := context.WithValue(ctx, ctxKey{}, l)
	l.log.Debug().Msg("looper started")

	for {
		msg, ok := l.next()
		if !ok {
			select {
			case <-ctx.Done():
				l.quit()
				l.log.Debug().Msg("looper stopped")
				return
			case <-l.wake:
			}
			continue
		}

		select {
		case <-ctx.Done():
			l.quit()
			l.log.Debug().Msg("looper stopped")
			return
		default:
		}
		l.dispatch(loopCtx, msg)
	}
}

// Done is closed after Run returns.
func (l *Looper) Done() <-chan struct{} { return l.done }

// IsCurrent reports whether ctx belongs to this Looper's goroutine.
func (l *Looper) IsCurrent(ctx context.Context) bool {
	return Current(ctx) == l
}

// Submit runs fn on the Looper and waits for it to finish. When ctx is
// already this Looper's context fn runs inline. A panic in fn is
// recovered and returned wrapped in ErrExecution.
//
// Whether the caller is on the Looper is read from ctx, not from the
// goroutine. Code running on the Looper must pass the ctx it was
// dispatched with (or one derived from it); any other ctx queues fn
// behind the caller itself and blocks until ctx ends.
func (l *Looper) Submit(ctx context.Context, fn func(ctx context.Context)) error {
	if l.IsCurrent(ctx) {
		return runRecovered(ctx, fn)
	}

	result := make(chan error, 1)
	msg := &Message{callback: func(loopCtx context.Context) {
		result <- runRecovered(loopCtx, fn)
	}}
	if !l.enqueue(msg) {
		return ErrQuitting
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		// The loop may have finished the callback just before exiting.
		select {
		case err := <-result:
			return err
		default:
			return ErrQuitting
		}
	}
}

// Sync blocks until every message enqueued before the call has been
// dispatched.
func (l *Looper) Sync(ctx context.Context) error {
	return l.Submit(ctx, func(context.Context) {})
}

// Len returns the number of undelivered messages.
func (l *Looper) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func runRecovered(ctx context.Context, fn func(ctx context.Context)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrExecution, r)
		}
	}()
	fn(ctx)
	return nil
}

func (l *Looper) dispatch(ctx context.Context, msg *Message) {
	if msg.callback != nil {
		msg.callback(ctx)
		return
	}
	msg.target.fn(ctx, *msg)
}

func (l *Looper) next() (*Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	msg := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return msg, true
}

func (l *Looper) enqueue(msg *Message) bool {
	l.mu.Lock()
	if l.quitting {
		l.mu.Unlock()
		l.log.Warn().Int("what", msg.What).Msg("dropping message sent to a stopped looper")
		return false
	}
	l.queue = append(l.queue, msg)
	l.mu.Unlock()
	l.signal()
	return true
}

// replace removes every pending message for target with the same What
// and appends msg, under one lock.
func (l *Looper) replace(msg *Message) bool {
	l.mu.Lock()
	if l.quitting {
		l.mu.Unlock()
		l.log.Warn().Int("what", msg.What).Msg("dropping message sent to a stopped looper")
		return false
	}
	l.removeLocked(msg.target, msg.What)
	l.queue = append(l.queue, msg)
	l.mu.Unlock()
	l.signal()
	return true
}

func (l *Looper) remove(target *Handler, what int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(target, what)
}

func (l *Looper) removeLocked(target *Handler, what int) {
	kept := l.queue[:0]
	for _, m := range l.queue {
		if m.target == target && m.callback == nil && m.What == what {
			continue
		}
		kept = append(kept, m)
	}
	for i := len(kept); i < len(l.queue); i++ {
		l.queue[i] = nil
	}
	l.queue = kept
}

func (l *Looper) has(target *Handler, what int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.queue {
		if m.target == target && m.callback == nil && m.What == what {
			return true
		}
	}
	return false
}

func (l *Looper) quit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quitting = true
	l.queue = nil
}

func (l *Looper) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
