package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestService_IssueAndVerify(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	signed, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims, err := svc.Verify(signed)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}

	if claims.UserID != "user-123" {
		t.Fatalf("expected user ID %q, got %q", "user-123", claims.UserID)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != time.Hour {
		t.Fatalf("expected TTL of 1h between claims, got %v", got)
	}
}

func TestService_VerifyBeforeAndAfterTTL(t *testing.T) {
	issued := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ttl := 15 * time.Minute

	svc := NewService([]byte("test-secret"), ttl)
	svc.nowFn = func() time.Time { return issued }

	signed, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"immediately", issued, nil},
		{"just before expiry", issued.Add(ttl - time.Second), nil},
		{"at expiry", issued.Add(ttl), ErrExpired},
		{"well after expiry", issued.Add(24 * time.Hour), ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.nowFn = func() time.Time { return tt.at }
			_, err := svc.Verify(signed)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("at %v: expected %v, got %v", tt.at, tt.wantErr, err)
			}
		})
	}
}

func TestService_VerifyMalformed(t *testing.T) {
	svc := NewService([]byte("test-secret"), time.Hour)

	signed, err := svc.Issue("user-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"truncated", signed[:len(signed)-10]},
		{"tampered payload", tamper(signed)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); !errors.Is(err, ErrMalformed) {
				t.Fatalf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestService_VerifyWrongSecret(t *testing.T) {
	issuer := NewService([]byte("issuer-secret"), time.Hour)
	verifier := NewService([]byte("other-secret"), time.Hour)

	signed, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := verifier.Verify(signed); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

// tamper flips a character in the payload segment of a JWT.
func tamper(signed string) string {
	parts := strings.Split(signed, ".")
	if len(parts) != 3 || len(parts[1]) == 0 {
		return signed
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}
