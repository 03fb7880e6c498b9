package activity

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/railyard/railyard/internal/platform/httpx"
	"github.com/railyard/railyard/internal/shared"
)

// Handler serves the project activity feed.
type Handler struct {
	feed *Feed
}

// NewHandler constructs a Handler.
func NewHandler(feed *Feed) *Handler {
	return &Handler{feed: feed}
}

// MountRoutes registers routes under a /projects/{projectID} router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/activity", h.recent)
}

func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			httpx.Error(w, shared.NewValidationError("limit", "must be a number"))
			return
		}
	}
	entries, err := h.feed.RecentActivity(r.Context(), projectID, limit)
	httpx.Result(w, http.StatusOK, entries, err)
}
