package app

import (
	"time"

	"github.com/dkeye/watchparty/internal/domain"
)

type RoomEventType string

const (
	EventRoomCreated     RoomEventType = "room_created"
	EventRoomDeleted     RoomEventType = "room_deleted"
	EventMemberJoined    RoomEventType = "member_joined"
	EventMemberLeft      RoomEventType = "member_left"
	EventPlaybackChanged RoomEventType = "playback_changed"
)

// RoomEvent describes a room lifecycle change for external observers.
type RoomEvent struct {
	Type      RoomEventType         `json:"type"`
	Room      domain.RoomCode       `json:"room_code"`
	SID       domain.ConnID         `json:"sid,omitempty"`
	UserCount int                   `json:"user_count"`
	Playback  *domain.PlaybackState `json:"video_state,omitempty"`
	At        time.Time             `json:"at"`
}

// EventSink receives room events. Publish must not block the caller.
type EventSink interface {
	Publish(RoomEvent)
}

type NopSink struct{}

func (NopSink) Publish(RoomEvent) {}
