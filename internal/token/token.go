// Package token issues and verifies the signed bearer tokens that carry
// a user identity claim. Signing is stateless; there is no server-side
// revocation list.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification errors.
var (
	// ErrMalformed indicates the token could not be parsed or its
	// signature did not verify.
	ErrMalformed = errors.New("malformed token")
	// ErrExpired indicates the token was valid but its expiry has passed.
	ErrExpired = errors.New("token expired")
)

// Claims is the identity claim carried by a verified token.
type Claims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Service signs and verifies bearer tokens with HMAC-SHA256.
type Service struct {
	secret []byte
	ttl    time.Duration
	nowFn  func() time.Time
}

// NewService creates a token Service with the given signing secret and
// token time-to-live.
func NewService(secret []byte, ttl time.Duration) *Service {
	return &Service{
		secret: secret,
		ttl:    ttl,
		nowFn:  time.Now,
	}
}

// Issue produces a signed token embedding the user id, an issue timestamp
// and an expiry derived from the configured TTL.
func (s *Service) Issue(userID string) (string, error) {
	now := s.nowFn()

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Verify parses and validates a token, returning its claims.
// Any failure yields full rejection: ErrExpired when the expiry has
// passed, ErrMalformed for everything else.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	var claims jwt.RegisteredClaims

	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.nowFn))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrMalformed
	}

	if !tok.Valid || claims.Subject == "" {
		return nil, ErrMalformed
	}

	out := &Claims{UserID: claims.Subject}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}
