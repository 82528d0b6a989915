package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	received chan []byte
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	t.Helper()
	b := &backend{
		conns:    make(chan *websocket.Conn, 4),
		received: make(chan []byte, 256),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.conns <- conn
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			b.received <- data
		}
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func frame(t *testing.T, action string, content any) []byte {
	t.Helper()
	inner, err := json.Marshal(content)
	require.NoError(t, err)
	data, err := json.Marshal(map[string]string{"action": action, "content": string(inner)})
	require.NoError(t, err)
	return data
}

func TestHandleFrameRunsListenersInOrder(t *testing.T) {
	c := NewClient(Options{Logger: zerolog.Nop()})

	var order []string
	c.On("rooms.close", func(content json.RawMessage) {
		var payload struct{ UUID string }
		require.NoError(t, json.Unmarshal(content, &payload))
		order = append(order, "first:"+payload.UUID)
	})
	c.On("rooms.close", func(json.RawMessage) { order = append(order, "second") })
	c.On("rooms.create", func(json.RawMessage) { order = append(order, "other") })

	c.HandleFrame([]byte(`{"action":"rooms.close","content":"{\"uuid\":\"room1\"}"}`))

	assert.Equal(t, []string{"first:room1", "second"}, order)
}

func TestHandleFrameDropsMalformedFrames(t *testing.T) {
	c := NewClient(Options{Logger: zerolog.Nop()})
	calls := 0
	c.On("msg.create", func(json.RawMessage) { calls++ })

	frames := []string{
		`not json`,
		`{"content":"{}"}`,
		`{"action":"msg.create"}`,
		`{"action":"msg.create","content":""}`,
		`{"action":"msg.create","content":null}`,
		`{"action":"msg.create","content":"{broken"}`,
	}
	for _, f := range frames {
		assert.NotPanics(t, func() { c.HandleFrame([]byte(f)) }, f)
	}
	assert.Zero(t, calls)
}

func TestHandleFrameAcceptsObjectContent(t *testing.T) {
	c := NewClient(Options{Logger: zerolog.Nop()})
	var got string
	c.On("status.update", func(content json.RawMessage) { got = string(content) })

	c.HandleFrame([]byte(`{"action":"status.update","content":{"status":"ONLINE"}}`))
	assert.JSONEq(t, `{"status":"ONLINE"}`, got)
}

func TestListenerPanicDoesNotStopOthers(t *testing.T) {
	c := NewClient(Options{Logger: zerolog.Nop()})
	reached := false
	c.On("rooms.update", func(json.RawMessage) { panic("boom") })
	c.On("rooms.update", func(json.RawMessage) { reached = true })

	assert.NotPanics(t, func() { c.HandleFrame([]byte(`{"action":"rooms.update","content":"{}"}`)) })
	assert.True(t, reached)
}

func TestSendRequiresOpenConnection(t *testing.T) {
	c := NewClient(Options{Logger: zerolog.Nop()})
	assert.Equal(t, StateClosed, c.State())
	assert.ErrorIs(t, c.Send(map[string]string{"type": "ping"}), ErrNotOpen)
}

func TestRunDispatchesAndSends(t *testing.T) {
	b, srv := newBackend(t)
	c := NewClient(Options{URL: wsURL(srv), Logger: zerolog.Nop(), PingInterval: 20 * time.Millisecond})

	got := make(chan string, 1)
	c.On("rooms.close", func(content json.RawMessage) {
		var payload struct {
			UUID string `json:"uuid"`
		}
		_ = json.Unmarshal(content, &payload)
		got <- payload.UUID
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	var server *websocket.Conn
	select {
	case server = <-b.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not connect")
	}

	require.NoError(t, server.WriteMessage(websocket.TextMessage, frame(t, "rooms.close", map[string]string{"uuid": "room1"})))
	select {
	case uuid := <-got:
		assert.Equal(t, "room1", uuid)
	case <-time.After(2 * time.Second):
		t.Fatal("frame was not dispatched")
	}

	select {
	case data := <-b.received:
		assert.JSONEq(t, `{"type":"ping","message":{}}`, string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("no keep-alive ping received")
	}

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, StateClosed, c.State())
}

func TestRunReconnectsAfterDrop(t *testing.T) {
	b, srv := newBackend(t)
	c := NewClient(Options{
		URL:     wsURL(srv),
		Logger:  zerolog.Nop(),
		Backoff: Backoff{Base: 10 * time.Millisecond, Max: 50 * time.Millisecond, Multiplier: 2},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	var first *websocket.Conn
	select {
	case first = <-b.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not connect")
	}
	first.Close()

	select {
	case <-b.conns:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not reconnect")
	}
}

func TestRunBacksOffWhenSessionsDropImmediately(t *testing.T) {
	connected := make(chan time.Time, 8)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		connected <- time.Now()
		conn.Close()
	}))
	t.Cleanup(srv.Close)

	base := 20 * time.Millisecond
	c := NewClient(Options{
		URL:     wsURL(srv),
		Logger:  zerolog.Nop(),
		Backoff: Backoff{Base: base, Max: time.Second, Multiplier: 2},
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Run(ctx) }()

	var at []time.Time
	for len(at) < 4 {
		select {
		case ts := <-connected:
			at = append(at, ts)
		case <-time.After(3 * time.Second):
			t.Fatalf("only %d connections", len(at))
		}
	}
	// delays run 20ms, 40ms, 80ms
	assert.GreaterOrEqual(t, at[2].Sub(at[1]), 2*base)
	assert.GreaterOrEqual(t, at[3].Sub(at[2]), 4*base)
}

func TestBackoffDelayIsBounded(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 8 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, b.Delay(0))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 8*time.Second, b.Delay(10))

	b.Jitter = true
	for i := 0; i < 20; i++ {
		d := b.Delay(1)
		assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
		assert.LessOrEqual(t, d, 2500*time.Millisecond)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closed", StateClosed.String())
}
