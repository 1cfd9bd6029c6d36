package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/itemdesk-be/internal/auth"
	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/isdelr/itemdesk-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles the admin-only user management and overview routes.
type AdminHandler struct {
	users   services.UserServiceProvider
	metrics services.MetricsServiceProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users services.UserServiceProvider, metrics services.MetricsServiceProvider) *AdminHandler {
	return &AdminHandler{users: users, metrics: metrics}
}

// RolePayload defines the structure for role change requests.
type RolePayload struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// Metrics returns record counts and the newest items.
func (h *AdminHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	overview, err := h.metrics.GetOverview(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// ListUsers returns users matching the optional search term, newest first.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]models.User{"users": users})
}

// UpdateRole changes the role of a user.
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !models.ValidID(id) {
		WriteError(w, r, models.NewError(models.ErrInvalidInput, "Invalid user id"))
		return
	}

	var payload RolePayload
	if err := decodeAndValidate(w, r, &payload, nil); err != nil {
		WriteError(w, r, err)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), id, models.Role(payload.Role))
	if err != nil {
		WriteError(w, r, err)
		return
	}

	log.Info().Str("user_id", id).Str("role", payload.Role).Msg("User role updated")
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

// DeleteUser removes a user and everything they own.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		WriteError(w, r, models.NewError(models.ErrUnauthenticated, "Authentication required"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.users.DeleteUser(r.Context(), caller, id); err != nil {
		WriteError(w, r, err)
		return
	}

	log.Info().Str("user_id", id).Str("deleted_by", caller.ID).Msg("User deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Health reports that the process is serving requests.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
