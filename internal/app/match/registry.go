package match

import (
	"encoding/json"

	"pairup/internal/app/user"
)

// Registry maps connection handles to their active User.
// It is not safe for concurrent use; the Hub goroutine owns it.
type Registry struct {
	users map[user.Peer]*user.User
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[user.Peer]*user.User)}
}

// Bind creates the User for a join on peer. A connection holds at most one active User;
// a second join while the first is still queued or matched fails with ErrDuplicateJoin.
func (r *Registry) Bind(peer user.Peer, userID string, preferences json.RawMessage) (*user.User, error) {
	if _, ok := r.users[peer]; ok {
		return nil, ErrDuplicateJoin
	}

	u := user.New(peer, userID, preferences)
	r.users[peer] = u
	return u, nil
}

// Unbind removes and returns the User bound to peer.
func (r *Registry) Unbind(peer user.Peer) (*user.User, bool) {
	u, ok := r.users[peer]
	if !ok {
		return nil, false
	}
	delete(r.users, peer)
	return u, true
}

// Release drops u's binding while leaving the connection open, so that it may join again.
// It is a no-op if the connection has since been bound to a different User.
func (r *Registry) Release(u *user.User) bool {
	current, ok := r.users[u.Peer]
	if !ok || current != u {
		return false
	}
	delete(r.users, u.Peer)
	return true
}

func (r *Registry) Lookup(peer user.Peer) (*user.User, bool) {
	u, ok := r.users[peer]
	return u, ok
}

func (r *Registry) Len() int {
	return len(r.users)
}
