package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseSessionToken(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateSessionToken("user-123", "admin", secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseSessionToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestParseSessionToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateSessionToken("u1", "user", secret, -1*time.Second)
	require.NoError(t, err)

	_, err = ParseSessionToken(tok, secret)
	require.Error(t, err)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateSessionToken("u2", "user", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(tok, []byte("wrong-secret"))
	require.Error(t, err)
}

func TestParseSessionToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseSessionToken("not.a.jwt", []byte("k"))
	require.Error(t, err)
}

func TestSessionTokenExpiryWindow(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	before := time.Now().Add(SessionTTL)
	tok, err := GenerateSessionToken("u3", "user", secret, SessionTTL)
	require.NoError(t, err)
	after := time.Now().Add(SessionTTL)

	claims, err := ParseSessionToken(tok, secret)
	require.NoError(t, err)
	exp := claims.ExpiresAt.Time
	assert.False(t, exp.Before(before.Truncate(time.Second)))
	assert.False(t, exp.After(after.Add(time.Second)))
}

func TestGenerateOpaqueToken(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		tok, err := GenerateOpaqueToken()
		require.NoError(t, err)
		assert.Len(t, tok, 64)
		assert.Regexp(t, "^[0-9a-f]{64}$", tok)
		assert.False(t, seen[tok], "opaque tokens must not repeat")
		seen[tok] = true
	}
}
