package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	token, session, err := issuer.Issue("u1", "u1@example.com", now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if session.UserID != "u1" || session.Email != "u1@example.com" {
		t.Errorf("issued session = %+v", session)
	}
	if !session.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", session.ExpiresAt, now.Add(time.Hour))
	}

	verified, err := issuer.Verify(token, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if verified.UserID != "u1" || verified.Email != "u1@example.com" {
		t.Errorf("verified session = %+v", verified)
	}
}

func TestTokenIssuer_RejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	token, _, err := issuer.Issue("u1", "u1@example.com", now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := issuer.Verify(token, now.Add(2*time.Hour)); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(expired) error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	token, _, err := NewTokenIssuer(testSecret, time.Hour).Issue("u1", "u1@example.com", now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	other := NewTokenIssuer("another-secret-another-secret-xx", time.Hour)
	if _, err := other.Verify(token, now); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify(wrong secret) error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Verify(token, time.Now()); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword(correct) = false, want true")
	}
	if CheckPassword("wrong password", hash) {
		t.Error("CheckPassword(wrong) = true, want false")
	}
}
