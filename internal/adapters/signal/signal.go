package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/app/orch"
	"github.com/dkeye/watchparty/internal/config"
	"github.com/dkeye/watchparty/internal/core"
	"github.com/dkeye/watchparty/internal/domain"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = core.ErrConnClosed
)

// wsConn is the part of *websocket.Conn the pumps use.
type wsConn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(mt int, data []byte) error
	WriteControl(mt int, data []byte, deadline time.Time) error
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// WsSignalConn is the outbound side of one socket: a bounded queue drained by
// the write pump.
type WsSignalConn struct {
	conn wsConn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func NewWsSignalConn(conn wsConn, buffer int) *WsSignalConn {
	return &WsSignalConn{
		conn: conn,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close is idempotent. Closing the socket unblocks the read pump, which then
// reports the disconnect.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

type SignalWSController struct {
	Orch    *orch.Orchestrator
	ws      config.WebSocketConfig
	limiter *RateLimiter

	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, ws config.WebSocketConfig, rl config.RateLimitConfig) *SignalWSController {
	return &SignalWSController{
		Orch:    o,
		ws:      ws,
		limiter: NewRateLimiter(rl.Messages, rl.Interval),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleSignal upgrades the request and runs the socket until either side
// closes it or ctx is cancelled. Every socket gets a fresh connection id; the
// browser's client token is only logged.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := domain.ConnID(uuid.NewString())
	token := c.GetString("client_token")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("client_token", token).Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("client_token", token).Msg("new WS connection")

	conn := NewWsSignalConn(ws, ctl.ws.SendBuffer)
	ws.SetReadLimit(ctl.ws.ReadLimit)

	ctl.Orch.OnConnect(sid, conn)

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, sid, conn)
	go ctl.readPump(cancel, sid, conn)
}
