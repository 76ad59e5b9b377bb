package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avangard-team/auth-service/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func guardedEcho(t *testing.T, secret []byte) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(UserIDCtxKey).(string)
		role, _ := r.Context().Value(UserRoleCtxKey).(string)
		w.Header().Set("X-User-ID", userID)
		w.Header().Set("X-User-Role", role)
		w.WriteHeader(http.StatusOK)
	})
	return SessionGuard(secret, zap.NewNop())(next)
}

func TestSessionGuard_MissingCookie(t *testing.T) {
	h := guardedEcho(t, []byte("secret"))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	assert.Contains(t, res.Body.String(), "Authentication failed")
}

func TestSessionGuard_ValidToken(t *testing.T) {
	secret := []byte("secret")
	token, err := auth.GenerateSessionToken("abc123", "admin", secret, time.Hour)
	require.NoError(t, err)

	h := guardedEcho(t, secret)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "abc123", res.Header().Get("X-User-ID"))
	assert.Equal(t, "admin", res.Header().Get("X-User-Role"))
}

func TestSessionGuard_ExpiredToken(t *testing.T) {
	secret := []byte("secret")
	token, err := auth.GenerateSessionToken("abc123", "user", secret, -time.Minute)
	require.NoError(t, err)

	h := guardedEcho(t, secret)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestSessionGuard_TamperedToken(t *testing.T) {
	secret := []byte("secret")
	token, err := auth.GenerateSessionToken("abc123", "user", secret, time.Hour)
	require.NoError(t, err)

	h := guardedEcho(t, secret)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token + "x"})
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
}
