package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"spendify/internal/core"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenIssuer signs and verifies access tokens. Tokens carry the owner ID,
// email and an expiry; verification yields an explicit core.Session rather
// than any ambient auth state.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed access token for the user, expiring after the
// configured TTL.
func (i *TokenIssuer) Issue(userID, email string, now time.Time) (string, core.Session, error) {
	expiresAt := now.Add(i.ttl)
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", core.Session{}, fmt.Errorf("sign token: %w", err)
	}

	return token, core.Session{UserID: userID, Email: email, ExpiresAt: expiresAt}, nil
}

// Verify parses a token and returns the session it encodes. Expired,
// malformed or wrongly signed tokens all yield ErrInvalidToken.
func (i *TokenIssuer) Verify(tokenString string, now time.Time) (core.Session, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return core.Session{}, ErrInvalidToken
	}

	session := core.Session{
		UserID: c.Subject,
		Email:  c.Email,
	}
	if c.ExpiresAt != nil {
		session.ExpiresAt = c.ExpiresAt.Time
	}
	if session.UserID == "" || session.Expired(now) {
		return core.Session{}, ErrInvalidToken
	}

	return session, nil
}
