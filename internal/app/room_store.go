package app

import (
	"cmp"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/core"
	"github.com/dkeye/watchparty/internal/domain"
)

// RoomStore owns every Room. A room exists iff it has at least one member:
// rooms are created on first join and deleted the moment they empty.
// Each membership change updates the Registry inside the same critical section.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*core.Room
	reg   *Registry
}

func NewRoomStore(reg *Registry) *RoomStore {
	return &RoomStore{
		rooms: make(map[domain.RoomCode]*core.Room),
		reg:   reg,
	}
}

// Join adds sid to the room, creating it with the default playback state
// when the code is unknown. Joining twice is a no-op on membership.
func (s *RoomStore) Join(code domain.RoomCode, sid domain.ConnID) (core.RoomSnapshot, error) {
	if err := code.Validate(); err != nil {
		return core.RoomSnapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		room = core.NewRoom(code)
		s.rooms[code] = room
		log.Info().Str("module", "app.store").Str("room", string(code)).Msg("room created")
	}
	if room.Add(sid) {
		s.reg.RecordJoin(sid, code)
	}
	return core.RoomSnapshot{
		Code:      code,
		UserCount: room.Len(),
		Playback:  room.Playback(),
		Created:   !ok,
	}, nil
}

// Leave removes sid from the room. ok is false when the room does not exist
// or sid was not a member; count is then whatever the room holds.
func (s *RoomStore) Leave(code domain.RoomCode, sid domain.ConnID) (count int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[code]
	if !exists {
		return 0, false
	}
	if !room.Has(sid) {
		return room.Len(), false
	}
	return s.removeLocked(room, sid), true
}

// DisconnectAll unregisters sid and removes it from every room the registry
// has on record, reporting the post-removal count per room.
func (s *RoomStore) DisconnectAll(sid domain.ConnID) []core.Departure {
	s.mu.Lock()
	defer s.mu.Unlock()

	codes := s.reg.Unregister(sid)
	out := make([]core.Departure, 0, len(codes))
	for _, code := range codes {
		room, ok := s.rooms[code]
		if !ok || !room.Has(sid) {
			continue
		}
		out = append(out, core.Departure{Code: code, UserCount: s.removeLocked(room, sid)})
	}
	return out
}

func (s *RoomStore) removeLocked(room *core.Room, sid domain.ConnID) int {
	if room.Remove(sid) {
		s.reg.RecordLeave(sid, room.Code())
	}
	n := room.Len()
	if n == 0 {
		delete(s.rooms, room.Code())
		log.Info().Str("module", "app.store").Str("room", string(room.Code())).Msg("room deleted (empty)")
	}
	return n
}

func (s *RoomStore) Playback(code domain.RoomCode) (domain.PlaybackState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return domain.PlaybackState{}, false
	}
	return room.Playback(), true
}

// UpdatePlayback applies mutate only if the room still exists; a room that
// vanished in between is a silent no-op.
func (s *RoomStore) UpdatePlayback(code domain.RoomCode, mutate func(*domain.PlaybackState)) (domain.PlaybackState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return domain.PlaybackState{}, false
	}
	return room.UpdatePlayback(mutate), true
}

// Members returns the member set as it is now, in join order.
func (s *RoomStore) Members(code domain.RoomCode) []domain.ConnID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if room, ok := s.rooms[code]; ok {
		return room.Members()
	}
	return nil
}

func (s *RoomStore) Exists(code domain.RoomCode) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok
}

func (s *RoomStore) Info(code domain.RoomCode) (core.RoomInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	if !ok {
		return core.RoomInfo{}, false
	}
	members := make([]domain.Member, 0, room.Len())
	for _, sid := range room.Members() {
		members = append(members, domain.Member{SID: sid, Username: s.reg.Username(sid)})
	}
	pb := room.Playback()
	return core.RoomInfo{
		Code:      code,
		UserCount: room.Len(),
		Members:   members,
		Playback:  &pb,
		Status:    pb.Status().String(),
	}, true
}

// List is sorted by room code.
func (s *RoomStore) List() []core.RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(s.rooms))
	for code, r := range s.rooms {
		out = append(out, core.RoomInfo{Code: code, UserCount: r.Len()})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.Code, b.Code) })
	return out
}

func (s *RoomStore) Stats() (rooms, members int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		members += r.Len()
	}
	return len(s.rooms), members
}
