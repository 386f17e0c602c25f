package match

import (
	"time"

	"pairup/internal/app/user"
)

// Pairing is two users taken from the head of the queue, and the room id assigned to them.
type Pairing struct {
	First  *user.User
	Second *user.User
	RoomID string
}

// Queue is the FIFO list of users waiting for a match, oldest first.
// It is not safe for concurrent use; the Hub goroutine owns it.
type Queue struct {
	entries []*user.User
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue stamps u with now and appends it to the tail.
// It reports false, leaving the queue untouched, if u is already waiting.
func (q *Queue) Enqueue(u *user.User, now time.Time) bool {
	if q.Contains(u) {
		return false
	}
	u.QueuedAt = now
	q.entries = append(q.entries, u)
	return true
}

// TryMatch pops users from the head two at a time until fewer than two remain.
func (q *Queue) TryMatch(newRoomID func() string) []Pairing {
	var pairings []Pairing

	for len(q.entries) >= 2 {
		first, second := q.entries[0], q.entries[1]

		if first.SameConnection(second) {
			q.entries = append(q.entries[:1], q.entries[2:]...)
			continue
		}

		q.entries = q.entries[2:]
		pairings = append(pairings, Pairing{First: first, Second: second, RoomID: newRoomID()})
	}

	if len(q.entries) == 0 {
		q.entries = nil
	}
	return pairings
}

// Requeue puts the users of p back at the head of the queue, keeping their original timestamps.
func (q *Queue) Requeue(p Pairing) {
	q.entries = append([]*user.User{p.First, p.Second}, q.entries...)
}

// Expire removes every user that has waited strictly longer than maxWait as of now.
// Removed users are returned oldest first; the survivors keep their relative order.
func (q *Queue) Expire(now time.Time, maxWait time.Duration) []*user.User {
	var expired []*user.User
	kept := q.entries[:0]

	for _, u := range q.entries {
		if u.WaitedAt(now) > maxWait {
			expired = append(expired, u)
			continue
		}
		kept = append(kept, u)
	}

	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = nil
	}
	q.entries = kept
	return expired
}

// Remove takes u out of the queue. It reports whether u was waiting.
func (q *Queue) Remove(u *user.User) bool {
	for i, queued := range q.entries {
		if queued.SameConnection(u) {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) Contains(u *user.User) bool {
	for _, queued := range q.entries {
		if queued.SameConnection(u) {
			return true
		}
	}
	return false
}

func (q *Queue) Len() int {
	return len(q.entries)
}

// Users returns a copy of the waiting users, oldest first.
func (q *Queue) Users() []*user.User {
	out := make([]*user.User, len(q.entries))
	copy(out, q.entries)
	return out
}
