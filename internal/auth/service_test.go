package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendify/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewService(repo, NewTokenIssuer(testSecret, 24*time.Hour))
}

func TestService_SignupAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Signup(ctx, "Person@Example.com", "s3cret-password", "Person")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if creds.Account.Email != "person@example.com" {
		t.Errorf("email = %q, want lowercased", creds.Account.Email)
	}
	if creds.AccessToken == "" {
		t.Error("AccessToken is empty")
	}
	if creds.Session.UserID != creds.Account.ID {
		t.Error("session user does not match account")
	}

	loggedIn, err := svc.Login(ctx, "person@example.com", "s3cret-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.Account.ID != creds.Account.ID {
		t.Error("login returned a different account")
	}

	account, err := svc.Account(ctx, loggedIn.Session)
	if err != nil {
		t.Fatalf("Account() error = %v", err)
	}
	if account.ID != creds.Account.ID {
		t.Error("Account() returned a different user")
	}
}

func TestService_SignupValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "not-an-email", "s3cret-password", ""); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("Signup(bad email) error = %v, want ErrInvalidEmail", err)
	}
	if _, err := svc.Signup(ctx, "a@b.com", "short", ""); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Signup(short password) error = %v, want ErrWeakPassword", err)
	}

	if _, err := svc.Signup(ctx, "a@b.com", "s3cret-password", ""); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if _, err := svc.Signup(ctx, "a@b.com", "s3cret-password", ""); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Signup(duplicate) error = %v, want ErrEmailTaken", err)
	}
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "a@b.com", "s3cret-password", ""); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if _, err := svc.Login(ctx, "a@b.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "unknown@b.com", "s3cret-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}
