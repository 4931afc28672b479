package signal

import (
	"time"

	"github.com/gorilla/websocket"
)

// Transport-level keepalive. The read deadline is pushed forward on every
// pong; a peer that stops answering pings is dropped after PongWait.

func (ctl *SignalWSController) installPongHandler(c *WsSignalConn) {
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.ws.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.ws.PongWait))
	})
}

func (ctl *SignalWSController) writePing(c *WsSignalConn) error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.ws.WriteWait))
}

func (ctl *SignalWSController) writeClose(c *WsSignalConn, code int) {
	msg := websocket.FormatCloseMessage(code, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(ctl.ws.WriteWait))
}
