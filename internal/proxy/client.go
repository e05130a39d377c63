// Package proxy carries interaction flags to a remote system UI over a
// websocket. Each call is one CBOR request frame answered by one ack
// frame.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"overview-sync/internal/interaction"
	"overview-sync/internal/logging"
)

var (
	// ErrClosed is returned by calls on a closed Client.
	ErrClosed = errors.New("proxy: client closed")

	// ErrRemote wraps an error reported by the remote side.
	ErrRemote = errors.New("proxy: remote rejected call")
)

// Options tunes a Client.
type Options struct {
	DialTimeout time.Duration
	CallTimeout time.Duration
	Header      http.Header
}

func (o Options) withDefaults() Options {
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = 2 * time.Second
	}
	return o
}

// Client is an interaction.SystemUIProxy reached over a websocket. It
// connects lazily and drops the connection after any transport error;
// the next call dials again. A failed call is never retried.
type Client struct {
	url    string
	opts   Options
	log    zerolog.Logger
	dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	seq    uint64
	closed bool
}

// NewClient returns a Client for the websocket URL. No connection is made
// until Connect or the first call.
func NewClient(url string, opts Options, log zerolog.Logger) *Client {
	opts = opts.withDefaults()
	return &Client{
		url:  url,
		opts: opts,
		log:  logging.Component(log, "proxy-client").With().Str("url", url).Logger(),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.DialTimeout,
		},
	}
}

// Connect dials the remote side if there is no live connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	return c.ensureConnLocked(ctx)
}

// SetInteractionState sends flags and waits for the acknowledgement.
func (c *Client) SetInteractionState(ctx context.Context, flags interaction.Flags) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if err := c.ensureConnLocked(ctx); err != nil {
		return err
	}

	c.seq++
	req := Frame{Seq: c.seq, Method: MethodSetInteractionState, Flags: int32(flags)}
	data, err := encodeFrame(req)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}

	deadline := time.Now().Add(c.opts.CallTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	_ = c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.dropLocked()
		return fmt.Errorf("sending frame: %w", err)
	}

	_ = c.conn.SetReadDeadline(deadline)
	for {
		mt, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.dropLocked()
			return fmt.Errorf("awaiting ack: %w", err)
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		ack, err := decodeFrame(raw)
		if err != nil {
			c.dropLocked()
			return fmt.Errorf("decoding ack: %w", err)
		}
		if ack.Method != MethodAck || ack.Seq != req.Seq {
			c.log.Debug().Uint64("seq", ack.Seq).Str("method", ack.Method).Msg("skipping stale frame")
			continue
		}
		if ack.Error != "" {
			return fmt.Errorf("%w: %s", ErrRemote, ack.Error)
		}
		return nil
	}
}

// Close shuts the connection. Later calls return ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) ensureConnLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
	defer cancel()

	conn, resp, err := c.dialer.DialContext(dialCtx, c.url, c.opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.url, err)
	}
	c.conn = conn
	c.log.Debug().Msg("connected")
	return nil
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
		c.log.Debug().Msg("connection dropped")
	}
}

var _ interaction.SystemUIProxy = (*Client)(nil)
