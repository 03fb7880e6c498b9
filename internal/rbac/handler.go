package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railyard/railyard/internal/platform/httpx"
)

// Handler exposes the caller's effective permissions for a project.
type Handler struct {
	guard *Guard
}

// NewHandler constructs a Handler.
func NewHandler(guard *Guard) *Handler {
	return &Handler{guard: guard}
}

// MountRoutes registers routes under a /projects/{projectID} router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.permissions)
}

type permissionsView struct {
	Role     ProjectRole `json:"role"`
	CanEdit  bool        `json:"can_edit"`
	Implicit bool        `json:"implicit"`
	Bypass   bool        `json:"bypass"`
	Actions  []Action    `json:"actions"`
}

func (h *Handler) permissions(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	actor, err := h.guard.RequireMember(r.Context(), projectID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	view := permissionsView{
		Role:     actor.Membership.Role,
		CanEdit:  actor.Membership.CanEdit,
		Implicit: actor.Membership.Implicit,
		Bypass:   actor.GlobalRole == GlobalAdmin,
	}
	if view.Bypass {
		view.Actions = Actions()
	} else {
		view.Actions = AllowedActions(actor.Membership.Role).Slice()
	}
	httpx.Result(w, http.StatusOK, view, nil)
}
