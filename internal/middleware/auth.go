package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avangard-team/auth-service/internal/auth"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "token"

// SessionGuard extracts the session token from the cookie and verifies its
// signature and expiry. Verification is stateless: the account store is never
// consulted, so a token stays valid for its full window. On success the
// decoded identity is placed in the request context.
func SessionGuard(jwtSecret []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	log := logger.Named("SessionGuard")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				log.Debug("No session cookie on protected route", zap.String("path", r.URL.Path))
				respondUnauthenticated(w)
				return
			}

			claims, err := auth.ParseSessionToken(cookie.Value, jwtSecret)
			if err != nil {
				log.Warn("Invalid session token", zap.String("path", r.URL.Path), zap.Error(err))
				respondUnauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": "Authentication failed",
	})
}
