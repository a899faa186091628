// Package model defines domain entities for the application.
package model

import "time"

// User represents an account that owns expenses.
// SecretDigest holds the argon2id hash of the password and is never
// serialized in API responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	SecretDigest string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
