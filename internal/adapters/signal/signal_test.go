package signal

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/watchparty/internal/app"
	"github.com/dkeye/watchparty/internal/app/orch"
	"github.com/dkeye/watchparty/internal/config"
	"github.com/dkeye/watchparty/internal/core"
)

type fakeWS struct {
	mu     sync.Mutex
	closed bool
}

func (f *fakeWS) ReadMessage() (int, []byte, error)         { return 0, nil, errors.New("eof") }
func (f *fakeWS) WriteMessage(int, []byte) error            { return nil }
func (f *fakeWS) WriteControl(int, []byte, time.Time) error { return nil }
func (f *fakeWS) SetReadLimit(int64)                        {}
func (f *fakeWS) SetReadDeadline(time.Time) error           { return nil }
func (f *fakeWS) SetWriteDeadline(time.Time) error          { return nil }
func (f *fakeWS) SetPongHandler(func(string) error)         {}
func (f *fakeWS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestWsSignalConn_TrySend(t *testing.T) {
	ws := &fakeWS{}
	c := NewWsSignalConn(ws, 2)

	require.NoError(t, c.TrySend([]byte("1")))
	require.NoError(t, c.TrySend([]byte("2")))
	assert.ErrorIs(t, c.TrySend([]byte("3")), ErrBackpressure)

	c.Close()
	c.Close()
	assert.True(t, ws.closed)
	assert.ErrorIs(t, c.TrySend([]byte("4")), core.ErrConnClosed)
}

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		ReadLimit:  4096,
		PingPeriod: time.Second,
		PongWait:   2 * time.Second,
		WriteWait:  time.Second,
		SendBuffer: 16,
	}
}

func newServer(t *testing.T, rl config.RateLimitConfig) (*httptest.Server, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := app.NewRegistry()
	store := app.NewRoomStore(reg)
	router := app.NewRouter(store, reg, app.KickPolicy{})
	o := orch.New(reg, store, router, app.NewRelay(router), nil)
	ctl := NewSignalWSController(o, testWSConfig(), rl)

	ctx, cancel := context.WithCancel(context.Background())
	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { ctl.HandleSignal(ctx, c) })
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return srv, o
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
	sid  string
}

func dial(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	c := &client{t: t, conn: conn}
	hello := c.read()
	require.Equal(t, "connected", hello["type"])
	c.sid = hello["sid"].(string)
	return c
}

func (c *client) send(raw string) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, []byte(raw)))
}

func (c *client) read() map[string]any {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	var v map[string]any
	require.NoError(c.t, json.Unmarshal(data, &v))
	return v
}

func TestHandleSignal_RoomLifecycle(t *testing.T) {
	srv, o := newServer(t, config.RateLimitConfig{Messages: 100, Interval: time.Second})
	a := dial(t, srv)
	b := dial(t, srv)
	assert.NotEqual(t, a.sid, b.sid)

	a.send(`{"type":"join_room","room_code":"ABCD","username":"ann"}`)
	assert.Equal(t, "room_joined", a.read()["type"])

	b.send(`{"type":"join_room","room_code":"ABCD","username":"bob"}`)
	assert.Equal(t, "room_joined", b.read()["type"])
	joined := a.read()
	assert.Equal(t, "user_joined", joined["type"])
	assert.Equal(t, b.sid, joined["sid"])

	a.send(`{"type":"webrtc_offer","target_sid":"` + b.sid + `","offer":{"sdp":"v=0"}}`)
	offer := b.read()
	assert.Equal(t, "webrtc_offer", offer["type"])
	assert.Equal(t, a.sid, offer["sender_sid"])

	require.NoError(t, b.conn.Close())
	left := a.read()
	assert.Equal(t, "user_left", left["type"])
	assert.Equal(t, b.sid, left["sid"])
	assert.Equal(t, float64(1), left["user_count"])

	assert.Eventually(t, func() bool { return o.Registry.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleSignal_Errors(t *testing.T) {
	srv, _ := newServer(t, config.RateLimitConfig{Messages: 3, Interval: time.Hour})
	a := dial(t, srv)

	a.send(`not json`)
	msg := a.read()
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "BAD_REQUEST", msg["code"])

	a.send(`{"type":"leave_room","room_code":""}`)
	assert.Equal(t, "INVALID_ROOM_CODE", a.read()["code"])

	a.send(`{"type":"ping"}`)
	assert.Equal(t, "pong", a.read()["type"])

	a.send(`{"type":"ping"}`)
	msg = a.read()
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "RATE_LIMITED", msg["code"])
}
