package signal

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/domain"
	"github.com/dkeye/watchparty/internal/protocol"
)

func (ctl *SignalWSController) writePump(ctx context.Context, sid domain.ConnID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.ws.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			ctl.writeClose(c, websocket.CloseGoingAway)
			log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.ws.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := ctl.writePing(c); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("writePump ping failed")
				return
			}
		}
	}
}

// readPump owns the disconnect: whatever ends the read loop, the
// orchestrator hears about it exactly once from here.
func (ctl *SignalWSController) readPump(cancel context.CancelFunc, sid domain.ConnID, c *WsSignalConn) {
	defer func() {
		cancel()
		ctl.Orch.OnDisconnect(sid)
		ctl.limiter.Forget(sid)
		c.Close()
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
	}()

	ctl.installPongHandler(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		ctl.handleFrame(sid, data)
	}
}

func (ctl *SignalWSController) handleFrame(sid domain.ConnID, data []byte) {
	if !ctl.limiter.Allow(sid) {
		ctl.Orch.Reject(sid, fmt.Errorf("%w: limit is %d per %s", protocol.ErrRateLimited, ctl.limiter.limit, ctl.limiter.interval))
		return
	}
	msg, err := protocol.Decode(data)
	if err != nil {
		ctl.Orch.Reject(sid, err)
		return
	}
	ctl.Orch.Dispatch(sid, msg)
}
