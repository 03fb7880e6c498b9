package dailylogs

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railyard/railyard/internal/platform/httpx"
	"github.com/railyard/railyard/internal/shared"
)

// Handler exposes daily log endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers routes under a /projects/{projectID} router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/daily-logs", h.list)
	r.Post("/daily-logs", h.create)
	r.Get("/daily-logs/{id}", h.get)
	r.Patch("/daily-logs/{id}", h.update)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	var window Range
	if window.From, err = shared.ParseDate("from", &from); err != nil {
		httpx.Error(w, err)
		return
	}
	if window.To, err = shared.ParseDate("to", &to); err != nil {
		httpx.Error(w, err)
		return
	}
	list, err := h.service.ListDailyLogs(r.Context(), projectID, window)
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
	log, err := h.service.CreateDailyLog(r.Context(), projectID, req)
	httpx.Result(w, http.StatusCreated, log, err)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	log, err := h.service.GetDailyLog(r.Context(), projectID, id)
	httpx.Result(w, http.StatusOK, log, err)
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
	log, err := h.service.UpdateDailyLog(r.Context(), projectID, id, req)
	httpx.Result(w, http.StatusOK, log, err)
}
