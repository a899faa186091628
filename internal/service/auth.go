package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"

	"github.com/expensio/expensio/internal/auth"
	"github.com/expensio/expensio/internal/metrics"
	"github.com/expensio/expensio/internal/model"
	"github.com/expensio/expensio/internal/repository"
)

// Auth service errors.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const minPasswordLength = 8

// UserStore is the persistence interface the auth service needs.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// TokenIssuer signs a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// AuthService registers users and exchanges credentials for tokens.
// Hashing is an explicit step performed here before persistence, never
// a side effect of saving.
type AuthService struct {
	store   UserStore
	tokens  TokenIssuer
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, tokens TokenIssuer, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:   store,
		tokens:  tokens,
		metrics: recorder,
	}
}

// Signup registers a new user and returns the user with a fresh token.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*model.User, string, error) {
	var invalid []string
	if !validUsername(username) {
		invalid = append(invalid, "username")
	}
	if len(password) < minPasswordLength {
		invalid = append(invalid, "password")
	}
	if len(invalid) > 0 {
		return nil, "", &ValidationError{Fields: invalid}
	}

	digest, err := auth.HashSecret(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		SecretDigest: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, "", ErrUsernameTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncUserSignup()

	return user, tok, nil
}

// Login verifies credentials and returns the user with a fresh token.
// An unknown username and a wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	match, err := auth.VerifySecret(password, user.SecretDigest)
	if err != nil || !match {
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncUserLogin()

	return user, tok, nil
}

// validUsername requires a non-empty alphanumeric name.
func validUsername(username string) bool {
	if username == "" {
		return false
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
