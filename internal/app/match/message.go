/*
Package match implements the matchmaking core: the connection registry, the FIFO
matchmaking queue, the two-party rooms, and the Hub goroutine that owns all three.

This file defines the wire protocol spoken with clients. Inbound frames are an envelope
{"type", "payload"}; outbound frames are flat objects keyed by "type".
*/
package match

import "encoding/json"

// MessageType names a protocol frame.
type MessageType string

const (
	// Inbound
	TypeJoin MessageType = "join"
	TypeChat MessageType = "chat"

	// Outbound
	TypeMatch    MessageType = "match"
	TypeTimeout  MessageType = "timeout"
	TypePeerLeft MessageType = "peer_left"
	TypeError    MessageType = "error"
)

// Envelope is the outer shape of every inbound frame.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// JoinPayload asks to be queued for a match.
type JoinPayload struct {
	UserID      string          `json:"userId"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
}

// ChatPayload asks to relay Message to the other member of RoomID.
type ChatPayload struct {
	RoomID  string          `json:"roomId"`
	Message json.RawMessage `json:"message"`
}

// MatchMessage tells a user which room they were paired into and with whom.
type MatchMessage struct {
	Type     MessageType `json:"type"`
	RoomID   string      `json:"roomId"`
	Opponent string      `json:"opponent"`
}

// ChatMessage carries a relayed payload.
type ChatMessage struct {
	Type    MessageType     `json:"type"`
	From    string          `json:"from"`
	Message json.RawMessage `json:"message"`
}

// TimeoutPayload identifies the user whose wait expired.
type TimeoutPayload struct {
	UserID string `json:"userId"`
}

// TimeoutMessage is sent to a user removed from the queue by the expiry sweep.
type TimeoutMessage struct {
	Type    MessageType    `json:"type"`
	Payload TimeoutPayload `json:"payload"`
}

// PeerLeftMessage is sent to the remaining member when a room is torn down.
type PeerLeftMessage struct {
	Type   MessageType `json:"type"`
	RoomID string      `json:"roomId"`
}

// ErrorPayload mirrors errs.CustomError on the wire.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorMessage reports a rejected inbound frame. The connection stays open.
type ErrorMessage struct {
	Type    MessageType  `json:"type"`
	Payload ErrorPayload `json:"payload"`
}

// NewMatchMessage builds the notification for a user paired with opponentID.
func NewMatchMessage(roomID, opponentID string) MatchMessage {
	return MatchMessage{Type: TypeMatch, RoomID: roomID, Opponent: opponentID}
}

// NewChatMessage builds a relayed chat frame. A missing payload is sent as JSON null.
func NewChatMessage(from string, message json.RawMessage) ChatMessage {
	if len(message) == 0 {
		message = json.RawMessage("null")
	}
	return ChatMessage{Type: TypeChat, From: from, Message: message}
}

// NewTimeoutMessage builds the queue timeout notification for userID.
func NewTimeoutMessage(userID string) TimeoutMessage {
	return TimeoutMessage{Type: TypeTimeout, Payload: TimeoutPayload{UserID: userID}}
}

// NewPeerLeftMessage builds the notification that the other member of roomID is gone.
func NewPeerLeftMessage(roomID string) PeerLeftMessage {
	return PeerLeftMessage{Type: TypePeerLeft, RoomID: roomID}
}

// NewErrorMessage converts err into an error frame; non-CustomError values become ErrUnknown.
func NewErrorMessage(err error) ErrorMessage {
	customErr := asCustom(err)
	return ErrorMessage{
		Type:    TypeError,
		Payload: ErrorPayload{Code: customErr.Code, Message: customErr.Message},
	}
}
