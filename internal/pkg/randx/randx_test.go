package randx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairup/internal/pkg/randx"
)

func TestRoomID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := randx.RoomID()
		require.True(t, randx.IsValidRoomID(id))
		_, dup := seen[id]
		require.False(t, dup, "room id %s generated twice", id)
		seen[id] = struct{}{}
	}

	assert.False(t, randx.IsValidRoomID("room-1"))
	assert.False(t, randx.IsValidRoomID(""))
}

func TestConnectionID(t *testing.T) {
	id, err := randx.ConnectionID()
	require.NoError(t, err)
	assert.Len(t, id, randx.ConnectionIDLength)
	assert.True(t, randx.IsBase62(id))

	assert.False(t, randx.IsBase62(""))
	assert.False(t, randx.IsBase62("abc-123"))
}
