package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/app"
	"github.com/dkeye/watchparty/internal/domain"
	"github.com/dkeye/watchparty/internal/protocol"
)

func (o *Orchestrator) join(sid domain.ConnID, m *protocol.JoinRoom) {
	username, err := domain.NormalizeUsername(*m.Username)
	if err != nil {
		o.Reject(sid, err)
		return
	}
	snap, err := o.Rooms.Join(m.RoomCode, sid)
	if err != nil {
		o.Reject(sid, err)
		return
	}
	o.Registry.SetUsername(sid, username)

	o.Router.SendTo(sid, &protocol.RoomJoined{
		Type:       protocol.TypeRoomJoined,
		RoomCode:   snap.Code,
		UserCount:  snap.UserCount,
		VideoState: snap.Playback,
	})
	o.Router.BroadcastToRoom(snap.Code, &protocol.UserJoined{
		Type:      protocol.TypeUserJoined,
		Username:  username,
		SID:       sid,
		UserCount: snap.UserCount,
	}, sid)

	if snap.Created {
		o.publish(app.RoomEvent{Type: app.EventRoomCreated, Room: snap.Code, SID: sid, UserCount: snap.UserCount})
	}
	o.publish(app.RoomEvent{Type: app.EventMemberJoined, Room: snap.Code, SID: sid, UserCount: snap.UserCount})

	log.Info().
		Str("module", "orch").
		Str("sid", string(sid)).
		Str("room", string(snap.Code)).
		Str("username", username).
		Int("user_count", snap.UserCount).
		Int("rooms", len(o.Registry.RoomsOf(sid))).
		Msg("joined room")
}

func (o *Orchestrator) leave(sid domain.ConnID, m *protocol.LeaveRoom) {
	count, ok := o.Rooms.Leave(m.RoomCode, sid)
	if !ok {
		return
	}
	o.announceLeave(m.RoomCode, sid, o.Registry.Username(sid), count)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(m.RoomCode)).Msg("left room")
}

// announceLeave runs after sid is already out of the room, so the leaver
// never receives its own user_left.
func (o *Orchestrator) announceLeave(code domain.RoomCode, sid domain.ConnID, username string, count int) {
	o.Router.BroadcastToRoom(code, &protocol.UserLeft{
		Type:      protocol.TypeUserLeft,
		SID:       sid,
		UserCount: count,
		Username:  username,
	}, "")

	o.publish(app.RoomEvent{Type: app.EventMemberLeft, Room: code, SID: sid, UserCount: count})
	if count == 0 {
		o.publish(app.RoomEvent{Type: app.EventRoomDeleted, Room: code})
	}
}

func (o *Orchestrator) chat(sid domain.ConnID, m *protocol.ChatMessage) {
	if !o.Rooms.Exists(m.RoomCode) {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("room", string(m.RoomCode)).Msg("chat to unknown room")
		return
	}
	ts := m.Timestamp
	if len(ts) == 0 {
		ts = []byte("null")
	}
	o.Router.BroadcastToRoom(m.RoomCode, &protocol.ChatBroadcast{
		Type:      protocol.TypeChatMessage,
		Username:  *m.Username,
		Message:   *m.Message,
		Timestamp: ts,
	}, "")
}
