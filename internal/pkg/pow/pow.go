/*
Package pow implements an optional Proof-of-Work gate for opening matchmaking connections.

A client fetches a nonce, searches for a counter such that sha256(nonce+counter) starts with
`difficulty` hex zeros, and exchanges the proof for a short-lived single-use admission token.
A difficulty of 0 disables the gate.
*/
package pow

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// TokenHeaderKey is the header carrying an admission token.
	TokenHeaderKey = "X-PoW-Token"

	// TokenQueryKey is the query parameter carrying an admission token (browsers cannot set
	// headers on a WebSocket handshake).
	TokenQueryKey = "pow_token"

	// ProofTokenDuration is how long an admission token stays valid.
	ProofTokenDuration = 30 * time.Second

	// NonceExpiryDuration is how long a challenge nonce stays valid.
	NonceExpiryDuration = 5 * time.Minute

	cleanupInterval = time.Minute
)

var (
	// ErrNonceInvalid is returned for unknown, expired or already used nonces.
	ErrNonceInvalid = errors.New("nonce expired or invalid")

	// ErrProofInsufficient is returned when the hash misses the difficulty target.
	ErrProofInsufficient = errors.New("proof does not meet difficulty requirement")
)

// Challenge is handed to clients that must prove work before connecting.
type Challenge struct {
	Nonce      string `json:"nonce"`
	Difficulty int    `json:"difficulty"`
}

// Manager issues nonces, verifies proofs and redeems admission tokens.
type Manager struct {
	difficulty int
	now        func() time.Time

	mu     sync.Mutex
	nonces map[string]time.Time
	tokens map[string]time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewManager creates a Manager and starts its expiry sweeper. Call Stop to release it.
func NewManager(difficulty int) *Manager {
	m := &Manager{
		difficulty: difficulty,
		now:        time.Now,
		nonces:     make(map[string]time.Time),
		tokens:     make(map[string]time.Time),
		stopChan:   make(chan struct{}),
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// Enabled reports whether connections must present an admission token.
func (m *Manager) Enabled() bool {
	return m.difficulty > 0
}

// Difficulty returns the number of leading hex zeros a proof needs.
func (m *Manager) Difficulty() int {
	return m.difficulty
}

// NewChallenge stores and returns a fresh nonce.
func (m *Manager) NewChallenge() Challenge {
	nonce := uuid.NewString()

	m.mu.Lock()
	m.nonces[nonce] = m.now().Add(NonceExpiryDuration)
	m.mu.Unlock()

	return Challenge{Nonce: nonce, Difficulty: m.difficulty}
}

// Verify checks a proof for nonce. On success the nonce is consumed and an admission
// token is returned.
func (m *Manager) Verify(nonce, counter string) (string, error) {
	if !MeetsDifficulty(nonce, counter, m.difficulty) {
		return "", ErrProofInsufficient
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.nonces[nonce]
	if !ok || m.now().After(expiry) {
		return "", ErrNonceInvalid
	}
	delete(m.nonces, nonce)

	token := uuid.NewString()
	m.tokens[token] = m.now().Add(ProofTokenDuration)
	return token, nil
}

// Redeem consumes token. A token admits exactly one connection.
func (m *Manager) Redeem(token string) bool {
	if token == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	expiry, ok := m.tokens[token]
	if !ok {
		return false
	}
	delete(m.tokens, token)

	return !m.now().After(expiry)
}

// TokenFromRequest reads the admission token from the header or the query string.
func TokenFromRequest(r *http.Request) string {
	if token := r.Header.Get(TokenHeaderKey); token != "" {
		return token
	}
	return r.URL.Query().Get(TokenQueryKey)
}

// MeetsDifficulty reports whether sha256(nonce+counter) has difficulty leading hex zeros.
func MeetsDifficulty(nonce, counter string, difficulty int) bool {
	hash := sha256.Sum256([]byte(nonce + counter))
	return strings.HasPrefix(hex.EncodeToString(hash[:]), strings.Repeat("0", difficulty))
}

// Stop terminates the sweeper. It is safe to call more than once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	m.wg.Wait()
}

func (m *Manager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.removeExpired()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for nonce, expiry := range m.nonces {
		if now.After(expiry) {
			delete(m.nonces, nonce)
		}
	}
	for token, expiry := range m.tokens {
		if now.After(expiry) {
			delete(m.tokens, token)
		}
	}
}
