/*
Package history keeps an append-only record of matchmaking outcomes.

Events are produced by the hub and written asynchronously; recording never blocks
matchmaking and a failing store only costs history, never live state. Nothing here is
read back to rebuild queues or rooms.
*/
package history

import "time"

// Kind classifies a history event.
type Kind string

const (
	KindMatched Kind = "matched"
	KindClosed  Kind = "closed"
	KindExpired Kind = "expired"
)

// Event is a single matchmaking outcome.
type Event struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	RoomID  string    `json:"roomId,omitempty"`
	UserIDs []string  `json:"userIds"`
	Reason  string    `json:"reason,omitempty"`
	At      time.Time `json:"at"`
}

// Sink receives events. Record must not block.
type Sink interface {
	Record(ev Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(Event) {}
