package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/expensio/expensio/internal/model"
	"github.com/expensio/expensio/internal/repository"
)

type fakeUserStore struct {
	byUsername map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byUsername: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	if _, exists := f.byUsername[user.Username]; exists {
		return repository.ErrUsernameExists
	}
	cp := *user
	f.byUsername[user.Username] = &cp
	return nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := f.byUsername[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

type staticIssuer struct{}

func (staticIssuer) Issue(userID string) (string, error) {
	return "token-for-" + userID, nil
}

func TestAuthService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), staticIssuer{}, nil)

	user, tok, err := svc.Signup(ctx, "alice42", "a-long-password")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.ID == "" {
		t.Fatal("expected generated user ID")
	}
	if tok != "token-for-"+user.ID {
		t.Fatalf("unexpected token %q", tok)
	}
	if user.SecretDigest == "a-long-password" {
		t.Fatal("expected password to be hashed before persistence")
	}

	loggedIn, tok, err := svc.Login(ctx, "alice42", "a-long-password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("expected user %q, got %q", user.ID, loggedIn.ID)
	}
	if tok == "" {
		t.Fatal("expected a token on login")
	}
}

func TestAuthService_SignupGeneratedUsername(t *testing.T) {
	// Timestamp-suffixed names, as smoke tooling generates them, must
	// be accepted as long as they stay alphanumeric.
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), staticIssuer{}, nil)

	username := fmt.Sprintf("e2e%d", time.Now().UnixNano())
	if _, _, err := svc.Signup(ctx, username, "a-long-password"); err != nil {
		t.Fatalf("signup %q: %v", username, err)
	}
}

func TestAuthService_SignupValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), staticIssuer{}, nil)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "a-long-password"},
		{"non-alphanumeric username", "alice bob!", "a-long-password"},
		{"hyphenated username", "e2e-1693526400", "a-long-password"},
		{"short password", "alice42", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Signup(ctx, tt.username, tt.password)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAuthService_SignupDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), staticIssuer{}, nil)

	if _, _, err := svc.Signup(ctx, "alice42", "a-long-password"); err != nil {
		t.Fatalf("first signup: %v", err)
	}

	if _, _, err := svc.Signup(ctx, "alice42", "another-password"); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuthService_LoginFailuresAreUniform(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(newFakeUserStore(), staticIssuer{}, nil)

	if _, _, err := svc.Signup(ctx, "alice42", "a-long-password"); err != nil {
		t.Fatalf("signup: %v", err)
	}

	// Unknown user and wrong password produce the identical error.
	_, _, unknownErr := svc.Login(ctx, "nosuchuser", "a-long-password")
	_, _, wrongErr := svc.Login(ctx, "alice42", "wrong-password")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
}
