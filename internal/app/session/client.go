/*
Package session binds a WebSocket connection to the matchmaking hub.

A Client decodes inbound frames on its ReadPump goroutine and hands them to the hub, and
writes everything the hub sends it on its WritePump goroutine. The hub only ever calls Send,
which never blocks.
*/
package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pairup/internal/app/match"
	"pairup/internal/app/user"
	"pairup/internal/pkg/errs"
	"pairup/internal/pkg/logx"
	"pairup/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a message sent by the client.
	maxMessageSize = 8192

	// capacity of the outbound queue.
	sendBufferSize = 256
)

var (
	ErrSendQueueFull = errors.New("client send queue full")
	ErrClientClosed  = errors.New("client closed")
)

// Dispatcher is the hub surface a Client drives. *match.Hub implements it.
type Dispatcher interface {
	Join(peer user.Peer, userID string, preferences json.RawMessage) error
	Relay(peer user.Peer, roomID string, message json.RawMessage) (int, error)
	Disconnect(peer user.Peer)
}

// Client is one WebSocket connection.
type Client struct {
	// ID identifies the connection in logs.
	ID string

	conn *websocket.Conn
	hub  Dispatcher

	// a buffered channel used to queue messages waiting to be sent to the client.
	send chan []byte

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once

	logger zerolog.Logger
}

// NewClient wraps conn. Call ReadPump and WritePump to start serving it.
func NewClient(conn *websocket.Conn, hub Dispatcher) *Client {
	id, err := randx.ConnectionID()
	if err != nil {
		logx.Error(err, "Failed to generate connection id, using a UUID")
		id = randx.RoomID()
	}

	return &Client{
		ID:     id,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
		logger: logx.Logger().With().Str("component", "session").Str("conn_id", id).Logger(),
	}
}

// Send marshals msg and queues it for the writer. It never blocks: a full queue drops the
// message and returns ErrSendQueueFull.
func (c *Client) Send(msg any) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error marshaling data for client")
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- messageBytes:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send channel full, dropping message")
		return ErrSendQueueFull
	}
}

// SendError reports err to the client as an error frame.
func (c *Client) SendError(err error) {
	if sendErr := c.Send(match.NewErrorMessage(err)); sendErr != nil {
		c.logger.Warn().Err(sendErr).Msg("Failed to queue error message")
	}
}

// Close stops accepting messages. The writer flushes what is queued, sends a close
// frame and closes the connection, which in turn ends ReadPump.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()
	})
}

// ReadPump reads frames until the connection fails, then disconnects the client from the hub.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading message (Client close/going away)")
			}
			break
		}

		c.processInboundMessage(messageBytes)
	}
}

// cleanupOnDisconnect runs when ReadPump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.hub.Disconnect(c)
	c.Close()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}

	c.logger.Info().Msg("Client disconnected")
}

func (c *Client) processInboundMessage(messageBytes []byte) {
	var envelope match.Envelope
	if err := json.Unmarshal(messageBytes, &envelope); err != nil {
		c.logger.Warn().Err(err).Int("size", len(messageBytes)).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrMalformedMessage, "invalid JSON"))
		return
	}

	switch envelope.Type {
	case match.TypeJoin:
		c.handleJoin(envelope.Payload)

	case match.TypeChat:
		c.handleChat(envelope.Payload)

	default:
		c.logger.Warn().Str("msg_type", string(envelope.Type)).Msg("Client sent unsupported message type")
		c.SendError(errs.NewError(errs.ErrUnsupportedMessageType, string(envelope.Type)))
	}
}

func (c *Client) handleJoin(payload json.RawMessage) {
	var join match.JoinPayload
	if err := json.Unmarshal(payload, &join); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid join payload")
		c.SendError(errs.NewError(errs.ErrMalformedMessage, "invalid join payload"))
		return
	}

	if join.UserID == "" {
		c.logger.Warn().Msg("Client sent join without userId")
		c.SendError(errs.NewError(errs.ErrMalformedMessage, "userId is required"))
		return
	}

	if err := c.hub.Join(c, join.UserID, join.Preferences); err != nil {
		c.SendError(err)
		return
	}

	c.logger.Info().Str("user_id", join.UserID).Msg("Client joined matchmaking")
}

func (c *Client) handleChat(payload json.RawMessage) {
	var chat match.ChatPayload
	if err := json.Unmarshal(payload, &chat); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid chat payload")
		c.SendError(errs.NewError(errs.ErrMalformedMessage, "invalid chat payload"))
		return
	}

	if chat.RoomID == "" {
		c.logger.Warn().Msg("Client sent chat without roomId")
		c.SendError(errs.NewError(errs.ErrMalformedMessage, "roomId is required"))
		return
	}

	if _, err := c.hub.Relay(c, chat.RoomID, chat.Message); err != nil {
		c.SendError(err)
	}
}

// WritePump writes queued messages and heartbeats until the queue is closed or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		// ensure the connection is closed on exit
		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !c.writeQueuedMessage(message, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingMessage() {
				return
			}
		}
	}
}

// writeQueuedMessage returns false when WritePump should stop.
func (c *Client) writeQueuedMessage(message []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		c.logger.Error().Err(err).Msg("Error writing message")
		return false
	}

	return true
}

func (c *Client) writePingMessage() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
