package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/watchparty/internal/domain"
)

func TestRoom_MembershipIsASet(t *testing.T) {
	r := NewRoom("ABCD")

	assert.True(t, r.Add("c1"))
	assert.True(t, r.Add("c2"))
	assert.False(t, r.Add("c1"), "re-adding must not duplicate")
	assert.Equal(t, 2, r.Len())

	assert.False(t, r.Remove("ghost"))
	assert.True(t, r.Remove("c1"))
	assert.False(t, r.Remove("c1"))
	assert.Equal(t, 1, r.Len())
	assert.False(t, r.Has("c1"))
	assert.True(t, r.Has("c2"))
}

func TestRoom_MembersKeepJoinOrder(t *testing.T) {
	r := NewRoom("ABCD")
	for _, sid := range []domain.ConnID{"c3", "c1", "c2"} {
		r.Add(sid)
	}
	r.Remove("c1")
	r.Add("c4")

	assert.Equal(t, []domain.ConnID{"c3", "c2", "c4"}, r.Members())

	snap := r.Members()
	snap[0] = "mutated"
	assert.Equal(t, domain.ConnID("c3"), r.Members()[0], "Members must return a copy")
}

func TestRoom_Playback(t *testing.T) {
	r := NewRoom("ABCD")
	assert.Equal(t, domain.PlaybackState{}, r.Playback())

	got := r.UpdatePlayback(func(p *domain.PlaybackState) { p.Load("v.mp4") })
	assert.Equal(t, domain.PlaybackState{URL: "v.mp4"}, got)
	assert.Equal(t, got, r.Playback())
}
