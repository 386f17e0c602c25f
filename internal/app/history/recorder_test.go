package history

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairup/internal/pkg/logx"
)

func TestMain(m *testing.M) {
	logx.SetOutput(io.Discard)
	m.Run()
}

type memoryStore struct {
	mu       sync.Mutex
	saved    []Event
	failures int
	attempts int
	closed   bool
	block    chan struct{}
}

func (s *memoryStore) Save(_ context.Context, ev Event) error {
	if s.block != nil {
		<-s.block
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if s.failures > 0 {
		s.failures--
		return errors.New("connection reset")
	}
	s.saved = append(s.saved, ev)
	return nil
}

func (s *memoryStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func TestRecorder_CloseFlushesInOrder(t *testing.T) {
	store := &memoryStore{}
	r := NewRecorder(store, 0)

	r.Record(Event{Kind: KindMatched, RoomID: "r1", UserIDs: []string{"a", "b"}})
	r.Record(Event{Kind: KindClosed, RoomID: "r1", UserIDs: []string{"a", "b"}, Reason: "disconnect"})
	r.Record(Event{Kind: KindExpired, UserIDs: []string{"c"}})
	r.Close()

	require.Len(t, store.saved, 3)
	assert.Equal(t, KindMatched, store.saved[0].Kind)
	assert.Equal(t, KindClosed, store.saved[1].Kind)
	assert.Equal(t, KindExpired, store.saved[2].Kind)
	for _, ev := range store.saved {
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.At.IsZero())
	}
	assert.True(t, store.closed)
}

func TestRecorder_RetriesTransientFailures(t *testing.T) {
	store := &memoryStore{failures: 1}
	r := NewRecorder(store, 1)

	r.Record(Event{ID: "fixed", Kind: KindMatched, At: time.Unix(0, 0)})
	r.Close()

	assert.Equal(t, 2, store.attempts)
	require.Len(t, store.saved, 1)
	assert.Equal(t, "fixed", store.saved[0].ID)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &memoryStore{block: make(chan struct{})}
	r := NewRecorder(store, 1)

	// The writer takes the first event and blocks in Save; the second fills the buffer.
	r.Record(Event{Kind: KindMatched, RoomID: "r1"})
	require.Eventually(t, func() bool { return len(r.events) == 0 }, time.Second, 5*time.Millisecond)
	r.Record(Event{Kind: KindMatched, RoomID: "r2"})
	r.Record(Event{Kind: KindMatched, RoomID: "r3"})

	close(store.block)
	r.Close()

	require.Len(t, store.saved, 2)
	assert.Equal(t, "r1", store.saved[0].RoomID)
	assert.Equal(t, "r2", store.saved[1].RoomID)
}

func TestRecorder_RecordAfterCloseIsIgnored(t *testing.T) {
	store := &memoryStore{}
	r := NewRecorder(store, 1)
	r.Close()
	r.Close()

	assert.NotPanics(t, func() { r.Record(Event{Kind: KindExpired}) })
	assert.Empty(t, store.saved)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(errors.Join(errors.New("insert"), &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Record(Event{Kind: KindMatched}) })
}
