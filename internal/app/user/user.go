/*
Package user defines the participant record shared by the matchmaking queue and the rooms.
*/
package user

import (
	"encoding/json"
	"time"
)

// Peer is the transport-side handle of a connection. The core never owns it: it only
// sends through it and compares handles for identity, so implementations must be
// comparable (pointer types).
//
// Send must not block; a failed or dropped send is reported through the error only.
type Peer interface {
	Send(msg any) error
}

// User is a connected participant that has asked to be matched.
type User struct {
	// ID is supplied by the client and is not guaranteed to be unique.
	ID string `json:"id"`

	// Preferences is kept verbatim; matching ignores it.
	Preferences json.RawMessage `json:"preferences,omitempty"`

	// QueuedAt is set when the user enters the matchmaking queue.
	QueuedAt time.Time `json:"queuedAt"`

	// Peer is the connection this user is bound to.
	Peer Peer `json:"-"`
}

// New returns a User bound to peer.
func New(peer Peer, id string, preferences json.RawMessage) *User {
	return &User{
		ID:          id,
		Preferences: preferences,
		Peer:        peer,
	}
}

// SameConnection reports whether u and other are bound to the same connection.
func (u *User) SameConnection(other *User) bool {
	return u != nil && other != nil && u.Peer == other.Peer
}

// WaitedAt returns how long the user has been queued as of now.
func (u *User) WaitedAt(now time.Time) time.Duration {
	return now.Sub(u.QueuedAt)
}
