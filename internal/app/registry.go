package app

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/watchparty/internal/core"
	"github.com/dkeye/watchparty/internal/domain"
)

type connEntry struct {
	Conn     core.SignalConnection
	Username string
	Rooms    []domain.RoomCode
}

// Registry is the connection -> rooms index and the liveness source of truth
// for transport connections. Room membership changes go through RoomStore,
// which keeps this index in lock-step.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnID]*connEntry),
	}
}

// Register binds a live connection. Registering an id twice replaces the
// endpoint and keeps the rooms already recorded.
func (r *Registry) Register(sid domain.ConnID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[sid]; ok {
		e.Conn = conn
		log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Msg("connection re-registered")
		return
	}
	r.conns[sid] = &connEntry{Conn: conn}
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Msg("registered connection")
}

// Unregister drops the connection and returns the rooms it was in so the
// caller can cascade the cleanup.
func (r *Registry) Unregister(sid domain.ConnID) []domain.RoomCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[sid]
	if !ok {
		return nil
	}
	delete(r.conns, sid)
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Int("rooms", len(e.Rooms)).Msg("unregistered connection")
	return e.Rooms
}

// RecordJoin is idempotent. A connection that was never registered still
// gets an index entry so that Unregister can cascade its cleanup.
func (r *Registry) RecordJoin(sid domain.ConnID, code domain.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[sid]
	if !ok {
		e = &connEntry{}
		r.conns[sid] = e
	}
	if slices.Contains(e.Rooms, code) {
		return
	}
	e.Rooms = append(e.Rooms, code)
}

func (r *Registry) RecordLeave(sid domain.ConnID, code domain.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[sid]
	if !ok {
		return
	}
	if i := slices.Index(e.Rooms, code); i >= 0 {
		e.Rooms = slices.Delete(e.Rooms, i, i+1)
	}
}

// Lookup returns the endpoint of a live connection.
func (r *Registry) Lookup(sid domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[sid]; ok && e.Conn != nil {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) RoomsOf(sid domain.ConnID) []domain.RoomCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[sid]; ok {
		return slices.Clone(e.Rooms)
	}
	return nil
}

func (r *Registry) SetUsername(sid domain.ConnID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[sid]; ok {
		e.Username = name
	}
}

func (r *Registry) Username(sid domain.ConnID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[sid]; ok {
		return e.Username
	}
	return ""
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.conns {
		if e.Conn != nil {
			n++
		}
	}
	return n
}
