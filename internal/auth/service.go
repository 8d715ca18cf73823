package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"spendify/internal/core"
	"spendify/internal/storage"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// Account is the public view of a user, safe to return from the API.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials couples an account with its freshly issued access token.
type Credentials struct {
	Account     Account      `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Session     core.Session `json:"-"`
}

// Service handles registration and login against the user store.
type Service struct {
	storage *storage.SQLiteRepository
	issuer  *TokenIssuer
}

func NewService(storage *storage.SQLiteRepository, issuer *TokenIssuer) *Service {
	return &Service{storage: storage, issuer: issuer}
}

// Signup registers a new account and logs it in.
func (s *Service) Signup(ctx context.Context, email, password, name string) (Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return Credentials{}, ErrInvalidEmail
	}
	if len(password) < 8 {
		return Credentials{}, ErrWeakPassword
	}

	if _, err := s.storage.GetUserByEmail(ctx, email); err == nil {
		return Credentials{}, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Credentials{}, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return Credentials{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := storage.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return Credentials{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "Account registered", "user_id", user.ID)
	return s.issue(user, now)
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Credentials, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.storage.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return Credentials{}, ErrInvalidCredentials
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("look up user: %w", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return Credentials{}, ErrInvalidCredentials
	}

	return s.issue(user, time.Now().UTC())
}

// Account returns the public view of the session's user.
func (s *Service) Account(ctx context.Context, session core.Session) (Account, error) {
	user, err := s.storage.GetUserByID(ctx, session.UserID)
	if err != nil {
		return Account{}, fmt.Errorf("look up user: %w", err)
	}
	return accountOf(user), nil
}

func (s *Service) issue(user storage.User, now time.Time) (Credentials, error) {
	token, session, err := s.issuer.Issue(user.ID, user.Email, now)
	if err != nil {
		return Credentials{}, fmt.Errorf("issue token: %w", err)
	}

	return Credentials{
		Account:     accountOf(user),
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
		Session:     session,
	}, nil
}

func accountOf(u storage.User) Account {
	return Account{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}
