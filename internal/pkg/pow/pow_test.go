package pow

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// solve brute-forces a counter for nonce. Difficulty 2 needs ~256 attempts on average.
func solve(t *testing.T, nonce string, difficulty int) string {
	t.Helper()
	for i := 0; i < 1_000_000; i++ {
		counter := strconv.Itoa(i)
		if MeetsDifficulty(nonce, counter, difficulty) {
			return counter
		}
	}
	t.Fatalf("no proof found for nonce %s", nonce)
	return ""
}

func TestManager_VerifyAndRedeem(t *testing.T) {
	m := NewManager(2)
	defer m.Stop()

	require.True(t, m.Enabled())

	challenge := m.NewChallenge()
	assert.Equal(t, 2, challenge.Difficulty)

	counter := solve(t, challenge.Nonce, challenge.Difficulty)

	token, err := m.Verify(challenge.Nonce, counter)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = m.Verify(challenge.Nonce, counter)
	assert.ErrorIs(t, err, ErrNonceInvalid, "a nonce is single use")

	assert.True(t, m.Redeem(token))
	assert.False(t, m.Redeem(token), "a token admits one connection")
}

func TestManager_VerifyRejectsWeakProof(t *testing.T) {
	m := NewManager(64)
	defer m.Stop()

	challenge := m.NewChallenge()
	_, err := m.Verify(challenge.Nonce, "0")
	assert.ErrorIs(t, err, ErrProofInsufficient)
}

func TestManager_Expiry(t *testing.T) {
	m := NewManager(1)
	defer m.Stop()

	clock := time.Now()
	m.now = func() time.Time { return clock }

	challenge := m.NewChallenge()
	counter := solve(t, challenge.Nonce, 1)

	clock = clock.Add(NonceExpiryDuration + time.Second)
	_, err := m.Verify(challenge.Nonce, counter)
	assert.ErrorIs(t, err, ErrNonceInvalid)

	challenge = m.NewChallenge()
	counter = solve(t, challenge.Nonce, 1)
	token, err := m.Verify(challenge.Nonce, counter)
	require.NoError(t, err)

	clock = clock.Add(ProofTokenDuration + time.Second)
	assert.False(t, m.Redeem(token))

	m.NewChallenge()
	clock = clock.Add(NonceExpiryDuration + time.Second)
	m.removeExpired()
	assert.Empty(t, m.nonces)
	assert.Empty(t, m.tokens)
}

func TestManager_DisabledAtZeroDifficulty(t *testing.T) {
	m := NewManager(0)
	defer m.Stop()

	assert.False(t, m.Enabled())
	assert.False(t, m.Redeem(""))
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?pow_token=from-query", nil)
	assert.Equal(t, "from-query", TokenFromRequest(r))

	r.Header.Set(TokenHeaderKey, "from-header")
	assert.Equal(t, "from-header", TokenFromRequest(r))
}
