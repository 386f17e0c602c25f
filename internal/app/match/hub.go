package match

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pairup/internal/app/history"
	"pairup/internal/app/user"
	"pairup/internal/pkg/logx"
	"pairup/internal/pkg/randx"
)

const (
	DefaultMaxWait       = 2 * time.Minute
	DefaultSweepInterval = 10 * time.Second

	maxRoomIDAttempts = 8
)

// HubConfig holds the matchmaking timings.
type HubConfig struct {
	// MaxWait is how long a user may stay queued before being expired.
	MaxWait time.Duration

	// SweepInterval is the period of the expiry sweep.
	SweepInterval time.Duration
}

// Stats is a point-in-time snapshot of the hub.
type Stats struct {
	Connections int `json:"connections"`
	Queued      int `json:"queued"`
	Rooms       int `json:"rooms"`
}

// Option customizes a Hub.
type Option func(*Hub)

// WithClock replaces time.Now for queue timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// WithRoomIDs replaces the room id generator.
func WithRoomIDs(newID func() string) Option {
	return func(h *Hub) { h.newRoomID = newID }
}

// WithHistory sends matchmaking outcomes to sink.
func WithHistory(sink history.Sink) Option {
	return func(h *Hub) { h.sink = sink }
}

type joinRequest struct {
	peer        user.Peer
	userID      string
	preferences json.RawMessage
	done        chan error
}

type relayRequest struct {
	peer    user.Peer
	roomID  string
	message json.RawMessage
	done    chan int
}

type leaveRequest struct {
	peer user.Peer
	done chan struct{}
}

// Hub owns the registry, the queue and the rooms. Every mutation runs on the Run goroutine;
// the exported methods hand requests to it and wait for the reply.
type Hub struct {
	cfg HubConfig

	registry *Registry
	queue    *Queue
	rooms    *RoomManager

	now       func() time.Time
	newRoomID func() string
	sink      history.Sink
	logger    zerolog.Logger

	joins  chan joinRequest
	relays chan relayRequest
	leaves chan leaveRequest
	sweeps chan chan []string
	stats  chan chan Stats

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewHub creates a Hub and starts its loop. Zero durations in cfg select the defaults.
func NewHub(cfg HubConfig, opts ...Option) *Hub {
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = DefaultMaxWait
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}

	logger := logx.Component("hub")

	h := &Hub{
		cfg:       cfg,
		registry:  NewRegistry(),
		queue:     NewQueue(),
		rooms:     NewRoomManager(logger),
		now:       time.Now,
		newRoomID: randx.RoomID,
		sink:      history.Discard,
		logger:    logger,
		joins:     make(chan joinRequest),
		relays:    make(chan relayRequest),
		leaves:    make(chan leaveRequest),
		sweeps:    make(chan chan []string),
		stats:     make(chan chan Stats),
		stopChan:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(h)
	}

	h.wg.Add(1)
	go h.Run()

	return h
}

// Run is the hub's event loop. It returns after Stop.
func (h *Hub) Run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.cfg.SweepInterval)
	defer ticker.Stop()

	h.logger.Info().
		Dur("max_wait", h.cfg.MaxWait).
		Dur("sweep_interval", h.cfg.SweepInterval).
		Msg("Hub started")

	for {
		select {
		case req := <-h.joins:
			req.done <- h.join(req)

		case req := <-h.relays:
			req.done <- h.rooms.Relay(req.roomID, req.peer, req.message)

		case req := <-h.leaves:
			h.disconnect(req.peer)
			close(req.done)

		case reply := <-h.sweeps:
			reply <- h.sweep()

		case reply := <-h.stats:
			reply <- h.snapshot()

		case <-ticker.C:
			h.sweep()

		case <-h.stopChan:
			h.logger.Info().
				Int("connections", h.registry.Len()).
				Int("queued", h.queue.Len()).
				Int("rooms", h.rooms.Len()).
				Msg("Hub stopped")
			return
		}
	}
}

// Join binds peer to a new user, queues it and pairs the queue.
func (h *Hub) Join(peer user.Peer, userID string, preferences json.RawMessage) error {
	req := joinRequest{
		peer:        peer,
		userID:      userID,
		preferences: preferences,
		done:        make(chan error, 1),
	}

	select {
	case h.joins <- req:
	case <-h.stopChan:
		return ErrHubClosed
	}
	return <-req.done
}

// Relay forwards message from peer to the other member of roomID and returns the number of
// recipients. Unknown rooms and non-members yield 0.
func (h *Hub) Relay(peer user.Peer, roomID string, message json.RawMessage) (int, error) {
	req := relayRequest{
		peer:    peer,
		roomID:  roomID,
		message: message,
		done:    make(chan int, 1),
	}

	select {
	case h.relays <- req:
	case <-h.stopChan:
		return 0, ErrHubClosed
	}
	return <-req.done, nil
}

// Disconnect removes every trace of peer. Calling it again, or for a peer that never
// joined, does nothing.
func (h *Hub) Disconnect(peer user.Peer) {
	req := leaveRequest{peer: peer, done: make(chan struct{})}

	select {
	case h.leaves <- req:
	case <-h.stopChan:
		return
	}
	<-req.done
}

// Sweep runs the expiry pass immediately and returns the ids of the expired users.
func (h *Hub) Sweep() []string {
	reply := make(chan []string, 1)

	select {
	case h.sweeps <- reply:
	case <-h.stopChan:
		return nil
	}
	return <-reply
}

// Stats returns a snapshot of the hub state.
func (h *Hub) Stats() (Stats, error) {
	reply := make(chan Stats, 1)

	select {
	case h.stats <- reply:
	case <-h.stopChan:
		return Stats{}, ErrHubClosed
	}
	return <-reply, nil
}

// Stop ends the loop and waits for it to exit. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopChan)
	})
	h.wg.Wait()
}

func (h *Hub) join(req joinRequest) error {
	u, err := h.registry.Bind(req.peer, req.userID, req.preferences)
	if err != nil {
		h.logger.Warn().Str("user_id", req.userID).Msg("Duplicate join rejected")
		return err
	}

	h.queue.Enqueue(u, h.now())
	h.logger.Debug().
		Str("user_id", u.ID).
		Int("queued", h.queue.Len()).
		Msg("User queued")

	h.match()
	return nil
}

func (h *Hub) match() {
	pairings := h.queue.TryMatch(h.uniqueRoomID)

	for i, p := range pairings {
		room, err := h.rooms.CreateRoom(p.RoomID, p.First, p.Second, h.now())
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("room_id", p.RoomID).
				Msg("Failed to create room, pairs returned to queue")

			for j := len(pairings) - 1; j >= i; j-- {
				h.queue.Requeue(pairings[j])
			}
			return
		}

		h.sink.Record(history.Event{
			Kind:    history.KindMatched,
			RoomID:  room.ID,
			UserIDs: room.UserIDs(),
			At:      room.CreatedAt,
		})
	}
}

// uniqueRoomID draws ids until one is not held by an active room.
// It gives up after maxRoomIDAttempts and returns the last draw, which CreateRoom then rejects.
func (h *Hub) uniqueRoomID() string {
	var id string
	for i := 0; i < maxRoomIDAttempts; i++ {
		id = h.newRoomID()
		if _, taken := h.rooms.Get(id); !taken {
			return id
		}
	}
	return id
}

func (h *Hub) disconnect(peer user.Peer) {
	u, ok := h.registry.Unbind(peer)
	if !ok {
		return
	}

	if h.queue.Remove(u) {
		h.logger.Debug().Str("user_id", u.ID).Msg("User left the queue")
		return
	}

	room, ok := h.rooms.RemoveUser(u)
	if !ok {
		return
	}

	survivor := room.Opponent(u)
	h.registry.Release(survivor)
	deliver(h.logger, survivor, NewPeerLeftMessage(room.ID))

	h.sink.Record(history.Event{
		Kind:    history.KindClosed,
		RoomID:  room.ID,
		UserIDs: room.UserIDs(),
		Reason:  "disconnect",
		At:      h.now(),
	})
}

func (h *Hub) sweep() []string {
	now := h.now()
	expired := h.queue.Expire(now, h.cfg.MaxWait)
	if len(expired) == 0 {
		return nil
	}

	ids := make([]string, 0, len(expired))
	for _, u := range expired {
		h.registry.Release(u)
		deliver(h.logger, u, NewTimeoutMessage(u.ID))
		ids = append(ids, u.ID)

		h.sink.Record(history.Event{
			Kind:    history.KindExpired,
			UserIDs: []string{u.ID},
			Reason:  "max_wait",
			At:      now,
		})
	}

	h.logger.Info().
		Int("expired", len(expired)).
		Int("queued", h.queue.Len()).
		Msg("Expired waiting users")

	return ids
}

func (h *Hub) snapshot() Stats {
	return Stats{
		Connections: h.registry.Len(),
		Queued:      h.queue.Len(),
		Rooms:       h.rooms.Len(),
	}
}
