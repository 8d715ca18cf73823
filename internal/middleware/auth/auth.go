// Package auth provides the bearer-token middleware that resolves sessions.
package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"spendify/internal/auth"
	"spendify/internal/core"
)

type contextKey string

const sessionKey contextKey = "session"

// Middleware verifies the Authorization bearer token and stores the resolved
// core.Session in the request context. Requests without a valid, unexpired
// token get a 401.
type Middleware struct {
	issuer *auth.TokenIssuer
	now    func() time.Time
}

func NewMiddleware(issuer *auth.TokenIssuer) *Middleware {
	return &Middleware{issuer: issuer, now: time.Now}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "missing bearer token")
			return
		}

		session, err := m.issuer.Verify(token, m.now())
		if err != nil {
			slog.DebugContext(r.Context(), "Token verification failed", "error", err)
			unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the session stored by the middleware.
func SessionFromContext(ctx context.Context) (core.Session, bool) {
	session, ok := ctx.Value(sessionKey).(core.Session)
	return session, ok
}

// ContextWithSession stores a session directly, for tests that bypass the
// middleware.
func ContextWithSession(ctx context.Context, session core.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
