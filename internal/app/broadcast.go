package app

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/core"
	"github.com/dkeye/watchparty/internal/domain"
	"github.com/dkeye/watchparty/internal/protocol"
)

// Router is the fan-out primitive. Delivery is fire-and-forget: a message
// handed to a connection's queue is never acknowledged or retried.
type Router struct {
	store  *RoomStore
	reg    *Registry
	policy Policy
}

func NewRouter(store *RoomStore, reg *Registry, policy Policy) *Router {
	if policy == nil {
		policy = KickPolicy{}
	}
	return &Router{store: store, reg: reg, policy: policy}
}

// SendTo reports whether the message was queued for sid.
func (b *Router) SendTo(sid domain.ConnID, v any) bool {
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("sid", string(sid)).Msg("encode failed")
		return false
	}
	res := b.deliver([]domain.ConnID{sid}, frame, "")
	return res.SentTo == 1
}

// BroadcastToRoom sends to the room's members as they are at call time.
// An empty exclude means the sender receives the message too. Members that
// disconnected concurrently are skipped.
func (b *Router) BroadcastToRoom(code domain.RoomCode, v any, exclude domain.ConnID) core.PublishResult {
	members := b.store.Members(code)
	if len(members) == 0 {
		return core.PublishResult{}
	}
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Str("room", string(code)).Msg("encode failed")
		return core.PublishResult{}
	}
	res := b.deliver(members, frame, exclude)
	log.Debug().Str("module", "app.broadcast").Str("room", string(code)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (b *Router) deliver(targets []domain.ConnID, frame core.Frame, exclude domain.ConnID) core.PublishResult {
	res := core.PublishResult{}
	for _, sid := range targets {
		if exclude != "" && sid == exclude {
			continue
		}
		conn, ok := b.reg.Lookup(sid)
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			if errors.Is(err, core.ErrConnClosed) {
				// Already on its way out; the disconnect path cleans up.
				log.Debug().Str("module", "app.broadcast").Str("sid", string(sid)).Msg("skip closed connection")
				continue
			}
			res.Dropped = append(res.Dropped, sid)
			b.onDropped(sid, conn, err)
			continue
		}
		res.SentTo++
	}
	return res
}

func (b *Router) onDropped(sid domain.ConnID, conn core.SignalConnection, cause error) {
	switch b.policy.OnBackPressure(sid) {
	case KickMember:
		log.Warn().Err(cause).Str("module", "app.broadcast").Str("sid", string(sid)).Msg("slow consumer kicked")
		conn.Close()
	case DropFrame:
		log.Debug().Err(cause).Str("module", "app.broadcast").Str("sid", string(sid)).Msg("frame dropped")
	}
}
