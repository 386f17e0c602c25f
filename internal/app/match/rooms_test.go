package match

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairup/internal/app/user"
)

func newRoomPair(t *testing.T) (*RoomManager, *Room, *fakePeer, *fakePeer) {
	t.Helper()

	m := NewRoomManager(zerolog.Nop())
	pa, pb := newPeer("a"), newPeer("b")
	room, err := m.CreateRoom("r1", user.New(pa, "alice", nil), user.New(pb, "bob", nil), time.Now())
	require.NoError(t, err)
	return m, room, pa, pb
}

func TestRoomManager_CreateRoomNotifiesBoth(t *testing.T) {
	m, room, pa, pb := newRoomPair(t)

	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"alice", "bob"}, room.UserIDs())
	assert.Equal(t, []any{NewMatchMessage("r1", "bob")}, pa.messages())
	assert.Equal(t, []any{NewMatchMessage("r1", "alice")}, pb.messages())

	got, ok := m.RoomOf(pb)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestRoomManager_CreateRoomRejectsTakenID(t *testing.T) {
	m, _, _, _ := newRoomPair(t)

	_, err := m.CreateRoom("r1", user.New(newPeer("c"), "carol", nil), user.New(newPeer("d"), "dave", nil), time.Now())
	assert.ErrorIs(t, err, ErrRoomIDConflict)
	assert.Equal(t, 1, m.Len())
}

func TestRoomManager_Relay(t *testing.T) {
	tests := []struct {
		name   string
		roomID string
		sender func(pa, pb *fakePeer) user.Peer
		want   int
	}{
		{name: "member to opponent", roomID: "r1", sender: func(pa, _ *fakePeer) user.Peer { return pa }, want: 1},
		{name: "unknown room", roomID: "nope", sender: func(pa, _ *fakePeer) user.Peer { return pa }, want: 0},
		{name: "non-member", roomID: "r1", sender: func(_, _ *fakePeer) user.Peer { return newPeer("x") }, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, pa, pb := newRoomPair(t)

			sent := m.Relay(tt.roomID, tt.sender(pa, pb), json.RawMessage(`"hi"`))
			assert.Equal(t, tt.want, sent)

			assert.Len(t, pa.messages(), 1)
			if tt.want == 1 {
				require.Len(t, pb.messages(), 2)
				assert.Equal(t, NewChatMessage("alice", json.RawMessage(`"hi"`)), pb.messages()[1])
			} else {
				assert.Len(t, pb.messages(), 1)
			}
		})
	}
}

func TestRoomManager_RelayToBrokenPeerIsSwallowed(t *testing.T) {
	m, _, pa, pb := newRoomPair(t)
	pb.mu.Lock()
	pb.fail = true
	pb.mu.Unlock()

	assert.NotPanics(t, func() {
		assert.Equal(t, 1, m.Relay("r1", pa, json.RawMessage(`{}`)))
	})
}

func TestRoomManager_RemoveUserDestroysRoom(t *testing.T) {
	m, room, pa, pb := newRoomPair(t)

	removed, ok := m.RemoveUser(room.Members[0])
	require.True(t, ok)
	assert.Same(t, room, removed)
	assert.Same(t, room.Members[1], removed.Opponent(room.Members[0]))

	assert.Zero(t, m.Len())
	_, ok = m.RoomOf(pa)
	assert.False(t, ok)
	_, ok = m.RoomOf(pb)
	assert.False(t, ok)

	_, ok = m.RemoveUser(room.Members[1])
	assert.False(t, ok)
	assert.Zero(t, m.Relay("r1", pb, json.RawMessage(`"late"`)))
}
