package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pairup/internal/pkg/logx"
)

const (
	DefaultBufferSize = 256

	saveTimeout  = 5 * time.Second
	saveAttempts = 3
	retryBackoff = 200 * time.Millisecond
)

// Store persists events.
type Store interface {
	Save(ctx context.Context, ev Event) error
	Close()
}

// Recorder is a Sink that hands events to a background writer through a bounded buffer.
// When the buffer is full the event is dropped with a warning.
type Recorder struct {
	store  Store
	events chan Event
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewRecorder starts the writer goroutine. bufferSize <= 0 selects DefaultBufferSize.
func NewRecorder(store Store, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	r := &Recorder{
		store:  store,
		events: make(chan Event, bufferSize),
		logger: logx.Component("history"),
	}

	r.wg.Add(1)
	go r.writeLoop()

	return r
}

// Record queues ev for writing. Events recorded after Close are ignored.
func (r *Recorder) Record(ev Event) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return
	}

	select {
	case r.events <- ev:
	default:
		r.logger.Warn().
			Str("kind", string(ev.Kind)).
			Str("room_id", ev.RoomID).
			Msg("History buffer full, event dropped")
	}
}

// Close flushes the buffered events and closes the store. It is safe to call more than once.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.events)
	r.mu.Unlock()

	r.wg.Wait()
	r.store.Close()
}

func (r *Recorder) writeLoop() {
	defer r.wg.Done()

	for ev := range r.events {
		r.save(ev)
	}
}

func (r *Recorder) save(ev Event) {
	var err error
	for attempt := 1; attempt <= saveAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err = r.store.Save(ctx, ev)
		cancel()

		if err == nil {
			return
		}
		if attempt < saveAttempts {
			time.Sleep(retryBackoff * time.Duration(attempt))
		}
	}

	r.logger.Error().
		Err(err).
		Str("event_id", ev.ID).
		Str("kind", string(ev.Kind)).
		Int("attempts", saveAttempts).
		Msg("Failed to save history event")
}
