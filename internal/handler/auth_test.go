package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/expensio/expensio/internal/handler/dto"
	"github.com/expensio/expensio/internal/model"
	"github.com/expensio/expensio/internal/repository"
	"github.com/expensio/expensio/internal/service"
)

type fakeUserStore struct {
	byUsername map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byUsername: make(map[string]*model.User)}
}

func (s *fakeUserStore) CreateUser(ctx context.Context, user *model.User) error {
	if _, ok := s.byUsername[user.Username]; ok {
		return repository.ErrUsernameExists
	}
	s.byUsername[user.Username] = user
	return nil
}

func (s *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, ok := s.byUsername[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type staticIssuer struct{}

func (staticIssuer) Issue(userID string) (string, error) {
	return "token-for-" + userID, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthHandler() (*AuthHandler, *fakeUserStore) {
	store := newFakeUserStore()
	svc := service.NewAuthService(store, staticIssuer{}, nil)
	return NewAuthHandler(svc, discardLogger()), store
}

func TestAuthHandler_Signup(t *testing.T) {
	h, _ := newAuthHandler()

	body := `{"username":"alice","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Signup(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response dto.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Username != "alice" {
		t.Errorf("unexpected username: %s", response.Username)
	}
	if response.ID == "" {
		t.Error("expected a generated user id")
	}
	if response.Token != "token-for-"+response.ID {
		t.Errorf("unexpected token: %s", response.Token)
	}
}

func TestAuthHandler_Signup_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		code   string
		status int
	}{
		{
			name:   "malformed json",
			body:   `{"username":`,
			code:   "INVALID_JSON",
			status: http.StatusBadRequest,
		},
		{
			name:   "empty username",
			body:   `{"username":"","password":"correct horse"}`,
			code:   "VALIDATION_FAILED",
			status: http.StatusBadRequest,
		},
		{
			name:   "short password",
			body:   `{"username":"alice","password":"short"}`,
			code:   "VALIDATION_FAILED",
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newAuthHandler()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Signup(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}

			var response dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if response.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, response.Code)
			}
		})
	}
}

func TestAuthHandler_Signup_DuplicateUsername(t *testing.T) {
	h, _ := newAuthHandler()

	body := `{"username":"alice","password":"correct horse"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first signup failed: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(body))
	rec = httptest.NewRecorder()
	h.Signup(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Code != "USERNAME_TAKEN" {
		t.Errorf("expected code USERNAME_TAKEN, got %s", response.Code)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	h, _ := newAuthHandler()

	signup := `{"username":"alice","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(signup))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup failed: %d", rec.Code)
	}

	login := `{"username":"alice","password":"correct horse"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(login))
	rec = httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response dto.AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Username != "alice" {
		t.Errorf("unexpected username: %s", response.Username)
	}
	if response.Token == "" {
		t.Error("expected a token")
	}
}

// Unknown users and wrong passwords must be indistinguishable to the
// caller.
func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	h, _ := newAuthHandler()

	signup := `{"username":"alice","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(signup))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	tests := []struct {
		name string
		body string
	}{
		{name: "unknown user", body: `{"username":"bob","password":"correct horse"}`},
		{name: "wrong password", body: `{"username":"alice","password":"wrong password"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Login(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected status 401, got %d", rec.Code)
			}

			var response dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if response.Code != "INVALID_CREDENTIALS" {
				t.Errorf("expected code INVALID_CREDENTIALS, got %s", response.Code)
			}
		})
	}
}
