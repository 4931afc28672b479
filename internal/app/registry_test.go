package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/watchparty/internal/domain"
)

func TestRegistry_RegisterLookupUnregister(t *testing.T) {
	r := NewRegistry()
	c := &mockConn{}

	_, ok := r.Lookup("c1")
	assert.False(t, ok)

	r.Register("c1", c)
	got, ok := r.Lookup("c1")
	assert.True(t, ok)
	assert.Same(t, c, got)
	assert.Equal(t, 1, r.Count())

	r.RecordJoin("c1", "A")
	r.RecordJoin("c1", "B")
	r.RecordJoin("c1", "A")
	assert.Equal(t, []domain.RoomCode{"A", "B"}, r.RoomsOf("c1"))

	rooms := r.Unregister("c1")
	assert.ElementsMatch(t, []domain.RoomCode{"A", "B"}, rooms)
	_, ok = r.Lookup("c1")
	assert.False(t, ok)
	assert.Empty(t, r.RoomsOf("c1"))
	assert.Nil(t, r.Unregister("c1"), "second unregister is a no-op")
}

func TestRegistry_ReRegisterKeepsRooms(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", &mockConn{})
	r.RecordJoin("c1", "A")

	next := &mockConn{}
	r.Register("c1", next)

	got, _ := r.Lookup("c1")
	assert.Same(t, next, got)
	assert.Equal(t, []domain.RoomCode{"A"}, r.RoomsOf("c1"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_JoinWithoutRegisterIsNotLive(t *testing.T) {
	r := NewRegistry()
	r.RecordJoin("ghost", "A")

	_, ok := r.Lookup("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, []domain.RoomCode{"A"}, r.Unregister("ghost"))
}

func TestRegistry_RecordLeaveAndUsername(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", &mockConn{})
	r.RecordJoin("c1", "A")
	r.RecordLeave("c1", "A")
	r.RecordLeave("c1", "A")
	r.RecordLeave("nobody", "A")
	assert.Empty(t, r.RoomsOf("c1"))

	r.SetUsername("c1", "alice")
	assert.Equal(t, "alice", r.Username("c1"))
	r.SetUsername("nobody", "bob")
	assert.Equal(t, "", r.Username("nobody"))
}
