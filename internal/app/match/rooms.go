package match

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"pairup/internal/app/user"
)

// Room is an active two-party session. It exists only while both members are connected.
type Room struct {
	ID        string
	Members   [2]*user.User
	CreatedAt time.Time
}

// Member returns the member bound to peer.
func (r *Room) Member(peer user.Peer) (*user.User, bool) {
	for _, m := range r.Members {
		if m.Peer == peer {
			return m, true
		}
	}
	return nil, false
}

// Opponent returns the member that is not u.
func (r *Room) Opponent(u *user.User) *user.User {
	if r.Members[0].SameConnection(u) {
		return r.Members[1]
	}
	return r.Members[0]
}

// UserIDs returns the caller-supplied ids of both members.
func (r *Room) UserIDs() []string {
	return []string{r.Members[0].ID, r.Members[1].ID}
}

// RoomManager tracks the active rooms by id and by member connection.
// It is not safe for concurrent use; the Hub goroutine owns it.
type RoomManager struct {
	rooms  map[string]*Room
	byPeer map[user.Peer]*Room
	logger zerolog.Logger
}

func NewRoomManager(logger zerolog.Logger) *RoomManager {
	return &RoomManager{
		rooms:  make(map[string]*Room),
		byPeer: make(map[user.Peer]*Room),
		logger: logger,
	}
}

// CreateRoom registers a room for a and b under id and sends each member a match notification.
func (m *RoomManager) CreateRoom(id string, a, b *user.User, now time.Time) (*Room, error) {
	if _, exists := m.rooms[id]; exists {
		return nil, ErrRoomIDConflict
	}

	room := &Room{
		ID:        id,
		Members:   [2]*user.User{a, b},
		CreatedAt: now,
	}
	m.rooms[id] = room
	m.byPeer[a.Peer] = room
	m.byPeer[b.Peer] = room

	deliver(m.logger, a, NewMatchMessage(id, b.ID))
	deliver(m.logger, b, NewMatchMessage(id, a.ID))

	m.logger.Info().
		Str("room_id", id).
		Str("first_user", a.ID).
		Str("second_user", b.ID).
		Msg("Room created")

	return room, nil
}

// Relay forwards message from sender to the other members of roomID and returns how many
// sends were attempted. Unknown rooms and senders outside the room are dropped.
func (m *RoomManager) Relay(roomID string, sender user.Peer, message json.RawMessage) int {
	room, ok := m.rooms[roomID]
	if !ok {
		m.logger.Debug().Str("room_id", roomID).Msg("Relay to unknown room dropped")
		return 0
	}

	from, ok := room.Member(sender)
	if !ok {
		m.logger.Warn().Str("room_id", roomID).Msg("Relay from non-member dropped")
		return 0
	}

	msg := NewChatMessage(from.ID, message)
	sent := 0
	for _, member := range room.Members {
		if member.SameConnection(from) {
			continue
		}
		deliver(m.logger, member, msg)
		sent++
	}
	return sent
}

// RemoveUser destroys the room u belongs to and returns it.
func (m *RoomManager) RemoveUser(u *user.User) (*Room, bool) {
	room, ok := m.byPeer[u.Peer]
	if !ok {
		return nil, false
	}
	if member, _ := room.Member(u.Peer); member != u {
		return nil, false
	}

	delete(m.rooms, room.ID)
	for _, member := range room.Members {
		delete(m.byPeer, member.Peer)
	}

	m.logger.Info().
		Str("room_id", room.ID).
		Str("user_id", u.ID).
		Dur("lifetime", time.Since(room.CreatedAt)).
		Msg("Room destroyed")

	return room, true
}

func (m *RoomManager) Get(id string) (*Room, bool) {
	room, ok := m.rooms[id]
	return room, ok
}

// RoomOf returns the room the connection is currently in.
func (m *RoomManager) RoomOf(peer user.Peer) (*Room, bool) {
	room, ok := m.byPeer[peer]
	return room, ok
}

func (m *RoomManager) Len() int {
	return len(m.rooms)
}

// deliver sends msg to u. Failures only affect that recipient and are logged.
func deliver(logger zerolog.Logger, u *user.User, msg any) {
	if err := u.Peer.Send(msg); err != nil {
		logger.Warn().
			Err(err).
			Str("user_id", u.ID).
			Msg("Failed to deliver message")
	}
}
