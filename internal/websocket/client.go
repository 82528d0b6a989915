package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait    = 10 * time.Second
	readLimit    = 512 * 1024
	pingInterval = 30 * time.Second
	// A session shorter than this counts as a failed attempt when backing off.
	stableSession = 30 * time.Second
)

type Options struct {
	URL          string
	Header       http.Header
	PingInterval time.Duration
	Backoff      Backoff
	Dialer       *websocket.Dialer
	Logger       zerolog.Logger
}

// Client keeps one websocket to the backend and routes inbound frames to the
// listeners registered for their action. Frames are handled one at a time on
// the read goroutine.
type Client struct {
	opts   Options
	logger zerolog.Logger

	mu    sync.Mutex
	conn  *websocket.Conn
	state State

	lmu       sync.RWMutex
	listeners map[string][]Listener
}

func NewClient(opts Options) *Client {
	if opts.PingInterval <= 0 {
		opts.PingInterval = pingInterval
	}
	if opts.Backoff == (Backoff{}) {
		opts.Backoff = DefaultBackoff()
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{
			HandshakeTimeout: 15 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		}
	}
	return &Client{
		opts:      opts,
		logger:    opts.Logger,
		listeners: make(map[string][]Listener),
	}
}

// On registers l for frames whose action equals action. Listeners for the
// same action run in registration order.
func (c *Client) On(action string, l Listener) {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.listeners[action] = append(c.listeners[action], l)
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send writes v as JSON. It returns ErrNotOpen without touching the socket
// unless the connection is open.
func (c *Client) Send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen || c.conn == nil {
		return ErrNotOpen
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateConnecting
	c.mu.Unlock()

	conn, resp, err := c.opts.Dialer.DialContext(ctx, c.opts.URL, c.opts.Header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		c.mu.Lock()
		c.state = StateClosed
		c.mu.Unlock()
		return err
	}
	conn.SetReadLimit(readLimit)

	c.mu.Lock()
	c.conn = conn
	c.state = StateOpen
	c.mu.Unlock()
	setConnected(true)

	c.logger.Info().Str("url", c.opts.URL).Msg("websocket connected")
	return nil
}

// Run connects and serves frames until ctx is done, reconnecting with
// backoff whenever the connection drops. Sessions dropped before
// stableSession keep growing the delay.
func (c *Client) Run(ctx context.Context) error {
	attempt := 0
	for {
		if err := c.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			delay := c.opts.Backoff.Delay(attempt)
			attempt++
			c.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("websocket connect failed")
			if !sleep(ctx, delay) {
				return ctx.Err()
			}
			continue
		}

		started := time.Now()
		err := c.serve(ctx)
		if ctx.Err() != nil {
			c.Close()
			return ctx.Err()
		}

		incReconnects()
		if time.Since(started) >= stableSession {
			attempt = 0
		}
		delay := c.opts.Backoff.Delay(attempt)
		attempt++
		c.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("websocket disconnected")
		if !sleep(ctx, delay) {
			return ctx.Err()
		}
	}
}

func (c *Client) serve(ctx context.Context) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotOpen
	}

	done := make(chan struct{})
	defer close(done)

	go c.keepAlive(done)
	go func() {
		select {
		case <-ctx.Done():
			c.dropConn(conn)
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.dropConn(conn)
			return err
		}
		c.HandleFrame(data)
	}
}

func (c *Client) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.Send(pingMessage{Type: "ping"}); err != nil {
				if !errors.Is(err, ErrNotOpen) {
					c.logger.Warn().Err(err).Msg("ping failed")
				}
				return
			}
		}
	}
}

// dropConn closes conn if it is still the current connection.
func (c *Client) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	conn.Close()
	c.conn = nil
	c.state = StateClosed
	setConnected(false)
}

// Close performs a normal closure of the current connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		c.state = StateClosed
		return
	}
	c.state = StateClosing
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
	c.conn.Close()
	c.conn = nil
	c.state = StateClosed
	setConnected(false)
}

// HandleFrame decodes one raw frame and runs the listeners for its action.
// Malformed frames are dropped.
func (c *Client) HandleFrame(data []byte) {
	incReceived()

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		incDropped(dropInvalidJSON)
		c.logger.Debug().Err(err).Msg("dropping malformed frame")
		return
	}
	if frame.Action == "" {
		incDropped(dropMissingAction)
		return
	}

	content, reason := decodeContent(frame.Content)
	if reason != "" {
		incDropped(reason)
		c.logger.Debug().Str("action", frame.Action).Str("reason", reason).Msg("dropping frame")
		return
	}

	c.lmu.RLock()
	listeners := c.listeners[frame.Action]
	c.lmu.RUnlock()

	if len(listeners) == 0 {
		incDropped(dropUnhandled)
		return
	}

	incDispatched(frame.Action)
	for _, l := range listeners {
		c.invoke(frame.Action, l, content)
	}
}

func (c *Client) invoke(action string, l Listener, content json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			incListenerPanics()
			c.logger.Error().Interface("panic", r).Str("action", action).Msg("recovered from panic in listener")
		}
	}()
	l(content)
}

// decodeContent unwraps the string-encoded content document. An object sent
// directly is accepted as is.
func decodeContent(raw json.RawMessage) (json.RawMessage, string) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, dropEmptyContent
	}
	if raw[0] != '"' {
		if !json.Valid(raw) {
			return nil, dropInvalidContent
		}
		return raw, ""
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, dropInvalidContent
	}
	if encoded == "" {
		return nil, dropEmptyContent
	}
	content := json.RawMessage(encoded)
	if !json.Valid(content) {
		return nil, dropInvalidContent
	}
	return content, ""
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
