package submittals

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railyard/railyard/internal/platform/httpx"
)

// Handler exposes submittal endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers routes under a /projects/{projectID} router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/submittals", h.list)
	r.Post("/submittals", h.create)
	r.Get("/submittals/{id}", h.get)
	r.Patch("/submittals/{id}", h.update)
	r.Post("/submittals/{id}/status", h.status)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	list, err := h.service.ListSubmittals(r.Context(), projectID, ListFilter{Status: Status(r.URL.Query().Get("status"))})
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
	sub, err := h.service.CreateSubmittal(r.Context(), projectID, req)
	httpx.Result(w, http.StatusCreated, sub, err)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	sub, err := h.service.GetSubmittal(r.Context(), projectID, id)
	httpx.Result(w, http.StatusOK, sub, err)
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
	sub, err := h.service.UpdateSubmittal(r.Context(), projectID, id, req)
	httpx.Result(w, http.StatusOK, sub, err)
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
	sub, err := h.service.UpdateSubmittalStatus(r.Context(), projectID, id, req)
	httpx.Result(w, http.StatusOK, sub, err)
}
