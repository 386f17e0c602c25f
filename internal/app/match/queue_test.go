package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairup/internal/app/user"
)

func queuedUsers(t *testing.T, q *Queue, at time.Time, ids ...string) []*user.User {
	t.Helper()

	users := make([]*user.User, 0, len(ids))
	for _, id := range ids {
		u := user.New(newPeer(id), id, nil)
		require.True(t, q.Enqueue(u, at))
		users = append(users, u)
	}
	return users
}

func TestQueue_TryMatchPairsInArrivalOrder(t *testing.T) {
	q := NewQueue()
	users := queuedUsers(t, q, time.Now(), "a", "b", "c", "d", "e")

	pairings := q.TryMatch(sequentialIDs())

	require.Len(t, pairings, 2)
	assert.Same(t, users[0], pairings[0].First)
	assert.Same(t, users[1], pairings[0].Second)
	assert.Equal(t, "room-1", pairings[0].RoomID)
	assert.Same(t, users[2], pairings[1].First)
	assert.Same(t, users[3], pairings[1].Second)
	assert.Equal(t, "room-2", pairings[1].RoomID)

	assert.Equal(t, 1, q.Len())
	assert.True(t, q.Contains(users[4]))
}

func TestQueue_TryMatchNeedsTwo(t *testing.T) {
	q := NewQueue()
	assert.Empty(t, q.TryMatch(sequentialIDs()))

	queuedUsers(t, q, time.Now(), "solo")
	assert.Empty(t, q.TryMatch(sequentialIDs()))
	assert.Equal(t, 1, q.Len())
}

func TestQueue_EnqueueIsIdempotent(t *testing.T) {
	q := NewQueue()
	start := time.Now()
	u := user.New(newPeer("a"), "a", nil)

	assert.True(t, q.Enqueue(u, start))
	assert.False(t, q.Enqueue(u, start.Add(time.Minute)))

	assert.Equal(t, 1, q.Len())
	assert.Equal(t, start, u.QueuedAt)
	assert.Empty(t, q.TryMatch(sequentialIDs()))
}

func TestQueue_NeverPairsAConnectionWithItself(t *testing.T) {
	q := NewQueue()
	peer := newPeer("shared")
	first := user.New(peer, "a", nil)
	second := user.New(peer, "a", nil)

	require.True(t, q.Enqueue(first, time.Now()))
	require.False(t, q.Enqueue(second, time.Now()))

	q.entries = append(q.entries, second)
	assert.Empty(t, q.TryMatch(sequentialIDs()))
	assert.Equal(t, 1, q.Len())
}

func TestQueue_Expire(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	maxWait := 120 * time.Second

	tests := []struct {
		name    string
		elapsed time.Duration
		expired bool
	}{
		{name: "well within", elapsed: 119 * time.Second, expired: false},
		{name: "exactly max wait", elapsed: 120 * time.Second, expired: false},
		{name: "past max wait", elapsed: 121 * time.Second, expired: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueue()
			users := queuedUsers(t, q, start, "a")

			expired := q.Expire(start.Add(tt.elapsed), maxWait)

			if tt.expired {
				require.Len(t, expired, 1)
				assert.Same(t, users[0], expired[0])
				assert.Zero(t, q.Len())
			} else {
				assert.Empty(t, expired)
				assert.Equal(t, 1, q.Len())
			}
		})
	}
}

func TestQueue_ExpireKeepsSurvivorOrder(t *testing.T) {
	q := NewQueue()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	old := queuedUsers(t, q, start, "old1")
	fresh := queuedUsers(t, q, start.Add(time.Minute), "fresh1")
	old = append(old, queuedUsers(t, q, start, "old2")...)
	fresh = append(fresh, queuedUsers(t, q, start.Add(time.Minute), "fresh2")...)

	expired := q.Expire(start.Add(90*time.Second), time.Minute)

	assert.Equal(t, old, expired)
	assert.Equal(t, fresh, q.Users())
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue()
	users := queuedUsers(t, q, time.Now(), "a", "b", "c")

	assert.True(t, q.Remove(users[1]))
	assert.False(t, q.Remove(users[1]))
	assert.Equal(t, []*user.User{users[0], users[2]}, q.Users())
}

func TestQueue_RequeueRestoresHead(t *testing.T) {
	q := NewQueue()
	users := queuedUsers(t, q, time.Now(), "a", "b", "c")

	pairings := q.TryMatch(sequentialIDs())
	require.Len(t, pairings, 1)

	q.Requeue(pairings[0])
	assert.Equal(t, users, q.Users())
}
