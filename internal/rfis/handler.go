package rfis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railyard/railyard/internal/platform/httpx"
)

// Handler exposes RFI endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// MountRoutes registers routes under a /projects/{projectID} router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/rfis", h.list)
	r.Post("/rfis", h.create)
	r.Get("/rfis/{id}", h.get)
	r.Post("/rfis/{id}/responses", h.respond)
	r.Post("/rfis/{id}/assign", h.assign)
	r.Post("/rfis/{id}/close", h.close)
	r.Post("/rfis/{id}/reopen", h.reopen)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	list, err := h.service.ListRFIs(r.Context(), projectID, ListFilter{Status: Status(r.URL.Query().Get("status"))})
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
	rfi, err := h.service.CreateRFI(r.Context(), projectID, req)
	httpx.Result(w, http.StatusCreated, rfi, err)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	detail, err := h.service.GetRFI(r.Context(), projectID, id)
	httpx.Result(w, http.StatusOK, detail, err)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req ResponseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	resp, err := h.service.AddResponse(r.Context(), projectID, id, req)
	httpx.Result(w, http.StatusCreated, resp, err)
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
	rfi, err := h.service.AssignRFI(r.Context(), projectID, id, req)
	httpx.Result(w, http.StatusOK, rfi, err)
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	rfi, err := h.service.CloseRFI(r.Context(), projectID, id)
	httpx.Result(w, http.StatusOK, rfi, err)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	projectID, id, err := httpx.ScopedIDs(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	rfi, err := h.service.ReopenRFI(r.Context(), projectID, id)
	httpx.Result(w, http.StatusOK, rfi, err)
}
