package dto

import "github.com/expensio/expensio/internal/model"

// SignupRequest represents the request body for registration.
type SignupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the authenticated user and a fresh bearer token.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// ToAuthResponse converts a user and token to the auth response DTO.
func ToAuthResponse(user *model.User, token string) *AuthResponse {
	return &AuthResponse{
		ID:       user.ID,
		Username: user.Username,
		Token:    token,
	}
}
