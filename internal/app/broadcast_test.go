package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/watchparty/internal/domain"
	"github.com/dkeye/watchparty/internal/protocol"
)

type fixture struct {
	reg   *Registry
	store *RoomStore
	conns map[domain.ConnID]*mockConn
}

func newFixture(t *testing.T, room domain.RoomCode, sids ...domain.ConnID) *fixture {
	t.Helper()
	f := &fixture{reg: NewRegistry(), conns: map[domain.ConnID]*mockConn{}}
	f.store = NewRoomStore(f.reg)
	for _, sid := range sids {
		c := &mockConn{}
		f.conns[sid] = c
		f.reg.Register(sid, c)
		_, err := f.store.Join(room, sid)
		require.NoError(t, err)
	}
	return f
}

func TestRouter_BroadcastToRoom(t *testing.T) {
	tests := []struct {
		name     string
		exclude  domain.ConnID
		wantSent int
		wantGot  map[domain.ConnID]int
	}{
		{name: "include sender", wantSent: 3, wantGot: map[domain.ConnID]int{"a": 1, "b": 1, "c": 1}},
		{name: "exclude sender", exclude: "a", wantSent: 2, wantGot: map[domain.ConnID]int{"a": 0, "b": 1, "c": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "R", "a", "b", "c")
			r := NewRouter(f.store, f.reg, nil)

			res := r.BroadcastToRoom("R", &protocol.SeekBroadcast{Type: protocol.TypeVideoSeek, Time: 3}, tt.exclude)
			assert.Equal(t, tt.wantSent, res.SentTo)
			assert.Empty(t, res.Dropped)
			for sid, n := range tt.wantGot {
				assert.Len(t, f.conns[sid].messages(), n, "sid %s", sid)
			}
		})
	}
}

func TestRouter_NoCrossRoom(t *testing.T) {
	f := newFixture(t, "R1", "a")
	other := &mockConn{}
	f.reg.Register("b", other)
	_, _ = f.store.Join("R2", "b")

	r := NewRouter(f.store, f.reg, nil)
	r.BroadcastToRoom("R1", &protocol.Pong{Type: protocol.TypePong}, "")

	assert.Len(t, f.conns["a"].messages(), 1)
	assert.Empty(t, other.messages())
}

func TestRouter_MissingRoomIsNoop(t *testing.T) {
	f := newFixture(t, "R", "a")
	r := NewRouter(f.store, f.reg, nil)

	res := r.BroadcastToRoom("nope", &protocol.Pong{Type: protocol.TypePong}, "")
	assert.Zero(t, res.SentTo)
	assert.Empty(t, f.conns["a"].messages())
}

func TestRouter_SkipsDeadMembers(t *testing.T) {
	f := newFixture(t, "R", "a")
	_, _ = f.store.Join("R", "never-registered")
	r := NewRouter(f.store, f.reg, nil)

	res := r.BroadcastToRoom("R", &protocol.Pong{Type: protocol.TypePong}, "")
	assert.Equal(t, 1, res.SentTo)
	assert.Empty(t, res.Dropped)
}

func TestRouter_Backpressure(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		wantClosed bool
	}{
		{name: "kick closes slow consumer", policy: KickPolicy{}, wantClosed: true},
		{name: "drop keeps slow consumer", policy: DropPolicy{}, wantClosed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "R", "fast", "slow")
			f.conns["slow"].limit = 1
			r := NewRouter(f.store, f.reg, tt.policy)

			msg := &protocol.SeekBroadcast{Type: protocol.TypeVideoSeek, Time: 1}
			r.BroadcastToRoom("R", msg, "")
			res := r.BroadcastToRoom("R", msg, "")

			assert.Equal(t, 1, res.SentTo)
			assert.Equal(t, []domain.ConnID{"slow"}, res.Dropped)
			assert.Len(t, f.conns["fast"].messages(), 2, "fast member unaffected")
			assert.Equal(t, tt.wantClosed, f.conns["slow"].isClosed())
		})
	}
}

func TestRouter_SendTo(t *testing.T) {
	f := newFixture(t, "R", "a")
	r := NewRouter(f.store, f.reg, nil)

	assert.True(t, r.SendTo("a", &protocol.Pong{Type: protocol.TypePong}))
	assert.False(t, r.SendTo("ghost", &protocol.Pong{Type: protocol.TypePong}))

	msgs := f.conns["a"].messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "pong", msgs[0]["type"])
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.IsType(t, KickPolicy{}, p)

	p, err = PolicyByName("drop")
	require.NoError(t, err)
	assert.IsType(t, DropPolicy{}, p)

	_, err = PolicyByName("block")
	assert.Error(t, err)
}

func TestRouter_ClosedConnectionIsNotKickedAgain(t *testing.T) {
	f := newFixture(t, "R", "a", "b")
	f.conns["b"].limit = 1
	r := NewRouter(f.store, f.reg, KickPolicy{})
	msg := &protocol.Pong{Type: protocol.TypePong}

	r.BroadcastToRoom("R", msg, "")
	res := r.BroadcastToRoom("R", msg, "")
	require.Equal(t, []domain.ConnID{"b"}, res.Dropped)
	require.Equal(t, 1, f.conns["b"].closeCount())

	// b is closed but its read pump has not unregistered it yet.
	res = r.BroadcastToRoom("R", msg, "")
	assert.Equal(t, 1, res.SentTo)
	assert.Empty(t, res.Dropped, "a closed connection is not a slow consumer")
	assert.Equal(t, 1, f.conns["b"].closeCount(), "policy does not run again")
}
