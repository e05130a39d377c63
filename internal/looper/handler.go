package looper

import "context"

// Message is a tagged unit of work carried through a Looper's queue.
type Message struct {
	What int
	Arg1 int
	Obj  any

	target   *Handler
	callback func(ctx context.Context)
}

// HandlerFunc processes one message on the Looper's goroutine.
type HandlerFunc func(ctx context.Context, msg Message)

// Handler routes messages to a HandlerFunc on a specific Looper. Several
// handlers may share one Looper; coalescing by What is scoped to the
// handler.
type Handler struct {
	looper *Looper
	fn     HandlerFunc
}

// NewHandler attaches fn to l.
func NewHandler(l *Looper, fn HandlerFunc) *Handler {
	return &Handler{looper: l, fn: fn}
}

// Looper returns the Looper this handler dispatches on.
func (h *Handler) Looper() *Looper { return h.looper }

// Send enqueues msg for this handler. It never waits for the consumer and
// reports false only if the Looper has stopped.
func (h *Handler) Send(msg Message) bool {
	m := msg
	m.target = h
	m.callback = nil
	return h.looper.enqueue(&m)
}

// Replace drops any undelivered message with the same What and enqueues
// msg in its place at the tail of the queue.
func (h *Handler) Replace(msg Message) bool {
	m := msg
	m.target = h
	m.callback = nil
	return h.looper.replace(&m)
}

// removeMessages drops undelivered messages with the given What.
func (h *Handler) removeMessages(what int) {
	h.looper.remove(h, what)
}

// hasMessages reports whether a message with the given What is pending.
func (h *Handler) hasMessages(what int) bool {
	return h.looper.has(h, what)
}

// Post enqueues fn to run on the Looper.
func (h *Handler) Post(fn func(ctx context.Context)) bool {
	return h.looper.enqueue(&Message{target: h, callback: fn})
}

// BoolArg encodes b as a message argument.
func BoolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}
