package projects

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railyard/railyard/internal/platform/httpx"
)

// Handler exposes project and team endpoints.
type Handler struct {
	projects *Service
	team     *TeamService
}

// NewHandler constructs a Handler.
func NewHandler(projects *Service, team *TeamService) *Handler {
	return &Handler{projects: projects, team: team}
}

// MountCollection registers /projects level routes.
func (h *Handler) MountCollection(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
}

// MountRoutes registers routes under a /projects/{projectID} router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Patch("/", h.update)
	r.Delete("/", h.archive)
	r.Get("/members", h.listMembers)
	r.Post("/members", h.addMember)
	r.Patch("/members/{userID}", h.updateMember)
	r.Delete("/members/{userID}", h.removeMember)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.projects.ListProjects(r.Context())
	httpx.Result(w, http.StatusOK, list, err)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.projects.CreateProject(r.Context(), req)
	httpx.Result(w, http.StatusCreated, p, err)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.projects.GetProject(r.Context(), projectID)
	httpx.Result(w, http.StatusOK, p, err)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req UpdateProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.projects.UpdateProject(r.Context(), projectID, req)
	httpx.Result(w, http.StatusOK, p, err)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.projects.ArchiveProject(r.Context(), projectID)
	httpx.Result(w, http.StatusOK, p, err)
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	members, err := h.team.ListMembers(r.Context(), projectID)
	httpx.Result(w, http.StatusOK, members, err)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req AddMemberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	m, err := h.team.AddProjectMember(r.Context(), projectID, req)
	httpx.Result(w, http.StatusCreated, m, err)
}

func (h *Handler) updateMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	userID, err := httpx.UUIDParam(r, "userID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req UpdateMemberRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	m, err := h.team.UpdateMemberRole(r.Context(), projectID, userID, req)
	httpx.Result(w, http.StatusOK, m, err)
}

func (h *Handler) removeMember(w http.ResponseWriter, r *http.Request) {
	projectID, err := httpx.UUIDParam(r, "projectID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	userID, err := httpx.UUIDParam(r, "userID")
	if err != nil {
		httpx.Error(w, err)
		return
	}
	err = h.team.RemoveProjectMember(r.Context(), projectID, userID)
	httpx.Result(w, http.StatusOK, map[string]string{"removed": userID.String()}, err)
}
