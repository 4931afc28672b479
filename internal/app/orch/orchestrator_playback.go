package orch

import (
	"github.com/dkeye/watchparty/internal/app"
	"github.com/dkeye/watchparty/internal/domain"
	"github.com/dkeye/watchparty/internal/protocol"
)

// Playback events mutate the room state only when the room exists, but the
// echo to the other members is sent either way.

func (o *Orchestrator) play(sid domain.ConnID, m *protocol.VideoPlay) {
	t := timeOrZero(m.Time)
	o.updatePlayback(sid, m.RoomCode, func(p *domain.PlaybackState) { p.Play(t) })
	o.Router.BroadcastToRoom(m.RoomCode, &protocol.PlaybackBroadcast{
		Type:     protocol.TypeVideoPlay,
		Time:     t,
		Username: m.Username,
	}, sid)
}

func (o *Orchestrator) pause(sid domain.ConnID, m *protocol.VideoPause) {
	t := timeOrZero(m.Time)
	o.updatePlayback(sid, m.RoomCode, func(p *domain.PlaybackState) { p.Pause(t) })
	o.Router.BroadcastToRoom(m.RoomCode, &protocol.PlaybackBroadcast{
		Type:     protocol.TypeVideoPause,
		Time:     t,
		Username: m.Username,
	}, sid)
}

func (o *Orchestrator) seek(sid domain.ConnID, m *protocol.VideoSeek) {
	t := timeOrZero(m.Time)
	o.updatePlayback(sid, m.RoomCode, func(p *domain.PlaybackState) { p.Seek(t) })
	o.Router.BroadcastToRoom(m.RoomCode, &protocol.SeekBroadcast{
		Type: protocol.TypeVideoSeek,
		Time: t,
	}, sid)
}

func (o *Orchestrator) load(sid domain.ConnID, m *protocol.VideoLoad) {
	url := *m.URL
	o.updatePlayback(sid, m.RoomCode, func(p *domain.PlaybackState) { p.Load(url) })
	o.Router.BroadcastToRoom(m.RoomCode, &protocol.LoadBroadcast{
		Type:     protocol.TypeVideoLoad,
		URL:      url,
		Username: m.Username,
	}, sid)
}

func (o *Orchestrator) updatePlayback(sid domain.ConnID, code domain.RoomCode, mutate func(*domain.PlaybackState)) {
	state, ok := o.Rooms.UpdatePlayback(code, mutate)
	if !ok {
		return
	}
	o.publish(app.RoomEvent{Type: app.EventPlaybackChanged, Room: code, SID: sid, Playback: &state})
}

func timeOrZero(t *float64) float64 {
	if t == nil {
		return 0
	}
	return *t
}
