package core

import (
	"slices"

	"github.com/dkeye/watchparty/internal/domain"
)

// Room is an ordered member set plus the shared playback state.
// It is not safe for concurrent use: the room store serializes access.
type Room struct {
	code     domain.RoomCode
	members  []domain.ConnID
	index    map[domain.ConnID]struct{}
	playback domain.PlaybackState
}

func NewRoom(code domain.RoomCode) *Room {
	return &Room{
		code:  code,
		index: make(map[domain.ConnID]struct{}),
	}
}

func (r *Room) Code() domain.RoomCode { return r.code }

func (r *Room) Len() int { return len(r.members) }

func (r *Room) Has(sid domain.ConnID) bool {
	_, ok := r.index[sid]
	return ok
}

// Add reports whether sid was not a member before.
func (r *Room) Add(sid domain.ConnID) bool {
	if r.Has(sid) {
		return false
	}
	r.index[sid] = struct{}{}
	r.members = append(r.members, sid)
	return true
}

// Remove reports whether sid was a member.
func (r *Room) Remove(sid domain.ConnID) bool {
	if !r.Has(sid) {
		return false
	}
	delete(r.index, sid)
	if i := slices.Index(r.members, sid); i >= 0 {
		r.members = slices.Delete(r.members, i, i+1)
	}
	return true
}

// Members returns a copy in join order.
func (r *Room) Members() []domain.ConnID {
	return slices.Clone(r.members)
}

func (r *Room) Playback() domain.PlaybackState { return r.playback }

func (r *Room) UpdatePlayback(mutate func(*domain.PlaybackState)) domain.PlaybackState {
	mutate(&r.playback)
	return r.playback
}
