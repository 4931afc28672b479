package core

import "github.com/dkeye/watchparty/internal/domain"

// RoomSnapshot is what a joining connection is told about the room.
type RoomSnapshot struct {
	Code      domain.RoomCode
	UserCount int
	Playback  domain.PlaybackState
	Created   bool
}

// Departure reports one room a connection was removed from.
type Departure struct {
	Code      domain.RoomCode
	UserCount int
}

// RoomInfo is a read-only view for APIs (no transport fields).
type RoomInfo struct {
	Code      domain.RoomCode       `json:"room_code"`
	UserCount int                   `json:"user_count"`
	Members   []domain.Member       `json:"members,omitempty"`
	Playback  *domain.PlaybackState `json:"video_state,omitempty"`
	Status    string                `json:"status,omitempty"`
}
