package punchlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/platform/httpx"
	"github.com/railyard/railyard/internal/shared"
)

// Handler exposes punch-list endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers routes under a /projects/{projectID} router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/punch-list", h.list)
	r.Post("/punch-list", h.create)
	r.Get("/punch-list/{id}", h.get)
	r.Post("/punch-list/{id}/status", h.status)
	r.Post("/punch-list/{id}/assign", h.assign)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	filter := ListFilter{Status: Status(r.URL.Query().Get("status"))}
	if raw := r.URL.Query().Get("assigned_to"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Error(w, shared.NewValidationError("assigned_to", "must be a valid id"))
			return
		}
		filter.AssignedTo = &id
	}
	list, err := h.service.ListItems(r.Context(), projectID, filter)
	httpx.Result(w, http.StatusOK, list, err)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	item, err := h.service.CreateItem(r.Context(), projectID, req)
	httpx.Result(w, http.StatusCreated, item, err)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	item, err := h.service.GetItem(r.Context(), projectID, id)
	httpx.Result(w, http.StatusOK, item, err)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	item, err := h.service.UpdateItemStatus(r.Context(), projectID, id, req)
	httpx.Result(w, http.StatusOK, item, err)
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req AssignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	item, err := h.service.AssignItem(r.Context(), projectID, id, req)
	httpx.Result(w, http.StatusOK, item, err)
}
