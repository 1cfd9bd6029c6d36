package handlers

import (
	"net/http"
	"strings"

	"github.com/isdelr/itemdesk-be/internal/auth"
	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/isdelr/itemdesk-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles account registration, login and session requests.
type AuthHandler struct {
	service services.UserServiceProvider
	tokens  *auth.TokenManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.UserServiceProvider, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{service: service, tokens: tokens}
}

// SignupPayload defines the structure for registration requests.
type SignupPayload struct {
	Name     string `json:"name" validate:"min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
}

// PasswordPayload defines the structure for password change requests.
type PasswordPayload struct {
	CurrentPassword string `json:"currentPassword" validate:"min=8"`
	NewPassword     string `json:"newPassword" validate:"min=8"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type userResponse struct {
	User models.User `json:"user"`
}

// Signup registers a new account and starts a session for it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	err := decodeAndValidate(w, r, &payload, func() {
		payload.Name = strings.TrimSpace(payload.Name)
		payload.Email = strings.TrimSpace(payload.Email)
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), services.NewUser{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     models.Role(payload.Role),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("User registered")
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

// Login verifies credentials and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	err := decodeAndValidate(w, r, &payload, func() {
		payload.Email = strings.TrimSpace(payload.Email)
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), payload.Email, payload.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

// Me returns the caller context resolved by Authenticate.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		WriteError(w, r, models.NewError(models.ErrUnauthenticated, "Authentication required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.Caller{"user": caller})
}

// Logout acknowledges the end of a session. Tokens are stateless, so the
// client simply discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// ChangePassword replaces the caller's password after checking the current one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		WriteError(w, r, models.NewError(models.ErrUnauthenticated, "Authentication required"))
		return
	}

	var payload PasswordPayload
	if err := decodeAndValidate(w, r, &payload, nil); err != nil {
		WriteError(w, r, err)
		return
	}

	if err := h.service.UpdatePassword(r.Context(), caller.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		WriteError(w, r, err)
		return
	}

	log.Info().Str("user_id", caller.ID).Msg("Password changed")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}
