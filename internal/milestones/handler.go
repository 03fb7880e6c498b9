package milestones

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railyard/railyard/internal/platform/httpx"
)

// Handler exposes milestone endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers routes under a /projects/{projectID} router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/milestones", h.list)
	r.Post("/milestones", h.create)
	r.Patch("/milestones/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	list, err := h.service.ListMilestones(r.Context(), projectID)
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
	m, err := h.service.CreateMilestone(r.Context(), projectID, req)
	httpx.Result(w, http.StatusCreated, m, err)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	m, err := h.service.UpdateMilestone(r.Context(), projectID, id, req)
	httpx.Result(w, http.StatusOK, m, err)
}
