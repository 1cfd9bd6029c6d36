package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/itemdesk-be/internal/auth"
	"github.com/isdelr/itemdesk-be/internal/models"
	"github.com/isdelr/itemdesk-be/internal/services"
)

// ItemHandler handles HTTP requests for items.
type ItemHandler struct {
	service services.ItemServiceProvider
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service services.ItemServiceProvider) *ItemHandler {
	return &ItemHandler{service: service}
}

// CreateItemPayload defines the structure for item creation requests.
type CreateItemPayload struct {
	Title       string `json:"title" validate:"min=3,max=120"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateItemPayload defines the structure for partial item updates.
type UpdateItemPayload struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=120"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// BulkDeletePayload defines the structure for bulk deletion requests.
type BulkDeletePayload struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type itemResponse struct {
	Item models.Item `json:"item"`
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// queryInt parses a query parameter, returning 0 when it is absent or not a number.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil {
		return 0
	}
	return n
}

func (h *ItemHandler) caller(w http.ResponseWriter, r *http.Request) (models.Caller, bool) {
	caller, ok := auth.CallerFromContext(r.Context())
	if !ok {
		WriteError(w, r, models.NewError(models.ErrUnauthenticated, "Authentication required"))
	}
	return caller, ok
}

// List returns a page of the caller's items, or of all items for admins.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	page, err := h.service.ListItems(r.Context(), caller, services.ListParams{
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
		Search: r.URL.Query().Get("search"),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Create adds an item owned by the caller.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var payload CreateItemPayload
	err := decodeAndValidate(w, r, &payload, func() {
		payload.Title = strings.TrimSpace(payload.Title)
		payload.Description = strings.TrimSpace(payload.Description)
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	item, err := h.service.CreateItem(r.Context(), caller, services.ItemInput{
		Title:       payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, itemResponse{Item: item})
}

// Update changes the given fields of an item.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if !models.ValidID(id) {
		WriteError(w, r, models.NewError(models.ErrInvalidInput, "Invalid item id"))
		return
	}

	var payload UpdateItemPayload
	err := decodeAndValidate(w, r, &payload, func() {
		trimPtr(payload.Title)
		trimPtr(payload.Description)
	})
	if err == nil && payload.Title != nil && *payload.Title == "" {
		// omitempty skips an explicitly empty title, which is still too short.
		err = &ValidationError{FieldErrors: map[string][]string{"title": {"Must contain at least 3 character(s)"}}}
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), caller, id, services.ItemPatch{
		Title:       payload.Title,
		Description: payload.Description,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse{Item: item})
}

// Delete removes a single item.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete removes several items at once within the caller's scope.
func (h *ItemHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var payload BulkDeletePayload
	if err := decodeAndValidate(w, r, &payload, nil); err != nil {
		WriteError(w, r, err)
		return
	}

	deleted, err := h.service.BulkDeleteItems(r.Context(), caller, payload.IDs)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deletedCount": deleted})
}
