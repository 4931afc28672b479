package orch

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/app"
	"github.com/dkeye/watchparty/internal/core"
	"github.com/dkeye/watchparty/internal/domain"
	"github.com/dkeye/watchparty/internal/protocol"
)

const connectedMessage = "Connected successfully!"

// Orchestrator applies client events to the room store and fans the results
// out. Every unit of work holds mu, so handlers observe one event at a time.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomStore
	Router   *app.Router
	Relay    *app.Relay
	Events   app.EventSink

	mu  sync.Mutex
	now func() time.Time
}

func New(reg *app.Registry, rooms *app.RoomStore, router *app.Router, relay *app.Relay, events app.EventSink) *Orchestrator {
	if events == nil {
		events = app.NopSink{}
	}
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Router:   router,
		Relay:    relay,
		Events:   events,
		now:      time.Now,
	}
}

func (o *Orchestrator) OnConnect(sid domain.ConnID, conn core.SignalConnection) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.Registry.Register(sid, conn)
	o.Router.SendTo(sid, &protocol.Connected{
		Type:    protocol.TypeConnected,
		SID:     sid,
		Message: connectedMessage,
	})
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("client connected")
}

// OnDisconnect removes sid from every room before returning and tells the
// remaining members. Calling it twice is harmless.
func (o *Orchestrator) OnDisconnect(sid domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	username := o.Registry.Username(sid)
	departures := o.Rooms.DisconnectAll(sid)
	for _, d := range departures {
		o.announceLeave(d.Code, sid, username, d.UserCount)
	}
	log.Info().
		Str("module", "orch").
		Str("sid", string(sid)).
		Int("rooms", len(departures)).
		Msg("client disconnected")
}

// Dispatch handles one decoded event from sid.
func (o *Orchestrator) Dispatch(sid domain.ConnID, msg protocol.Inbound) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("module", "orch").
				Str("sid", string(sid)).
				Str("event", fmt.Sprintf("%T", msg)).
				Str("panic", fmt.Sprint(r)).
				Msg("handler panic recovered")
			o.Router.SendTo(sid, protocol.NewErrorMessage(protocol.ErrCodeInternalError, "internal error"))
		}
	}()

	switch m := msg.(type) {
	case *protocol.JoinRoom:
		o.join(sid, m)
	case *protocol.LeaveRoom:
		o.leave(sid, m)
	case *protocol.ChatMessage:
		o.chat(sid, m)
	case *protocol.VideoPlay:
		o.play(sid, m)
	case *protocol.VideoPause:
		o.pause(sid, m)
	case *protocol.VideoSeek:
		o.seek(sid, m)
	case *protocol.VideoLoad:
		o.load(sid, m)
	case protocol.SignalPayload:
		o.Relay.Forward(m.Type(), sid, m.Target(), m.Payload())
	case *protocol.Ping:
		o.Router.SendTo(sid, &protocol.Pong{Type: protocol.TypePong})
	default:
		o.Reject(sid, fmt.Errorf("%w: %s", protocol.ErrUnknownType, msg.Type()))
	}
}

// Reject reports err to sid alone. It is also used by the transport for
// frames that never decode into an event.
func (o *Orchestrator) Reject(sid domain.ConnID, err error) {
	em := protocol.ErrorFor(err)
	o.Router.SendTo(sid, em)
	log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("code", em.Code).Msg("event rejected")
}

func (o *Orchestrator) publish(ev app.RoomEvent) {
	ev.At = o.now()
	o.Events.Publish(ev)
}
