package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/expensio/expensio/internal/handler/dto"
	"github.com/expensio/expensio/internal/service"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Signup handles POST /api/v1/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}

	user, token, err := h.svc.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.logger.Info("user_signed_up", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToAuthResponse(user, token))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToAuthResponse(user, token))
}

// handleAuthError maps auth service errors to HTTP responses.
func (h *AuthHandler) handleAuthError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid user data", verr.Fields)
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, "USERNAME_TAKEN", "User already exists", nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string, fields []string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:  message,
		Code:   code,
		Fields: fields,
	})
}
