package projects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
	"github.com/railyard/railyard/internal/testing/sitetest"
)

type harness struct {
	site     *sitetest.Site
	projects *Service
	team     *TeamService
}

func newHarness(t *testing.T) harness {
	t.Helper()
	site := sitetest.New(t)
	return harness{
		site:     site,
		projects: NewService(NewMemoryRepository(site.Store), site.Guard, site.Recorder, nil),
		team:     NewTeamService(site.Store, site.Guard, site.Recorder, nil),
	}
}

func strPtr(s string) *string { return &s }

func TestCreateProjectMakesCreatorManager(t *testing.T) {
	h := newHarness(t)
	lead := h.site.User(rbac.GlobalManager)

	p, err := h.projects.CreateProject(h.site.As(lead), CreateProjectRequest{
		Name:      "Harbor Point Tower",
		Code:      "hpt",
		StartDate: strPtr("2026-04-01"),
		EndDate:   strPtr("2027-09-30"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, "HPT", p.Code)
	require.NotNil(t, p.StartDate)

	m, err := h.site.Store.FindMembership(h.site.As(lead), p.ID, lead)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, m.Role)

	entries := h.site.EntriesFor(t, p.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.VerbCreated, entries[0].Action)
	assert.Equal(t, activity.EntityProject, entries[0].EntityType)
}

func TestCreateProjectRequiresGlobalRole(t *testing.T) {
	h := newHarness(t)
	member := h.site.User(rbac.GlobalMember)

	_, err := h.projects.CreateProject(h.site.As(member), CreateProjectRequest{Name: "Depot"})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	_, err = h.projects.CreateProject(h.site.As(h.site.User(rbac.GlobalAdmin)), CreateProjectRequest{
		Name: "Depot", StartDate: strPtr("2026-05-01"), EndDate: strPtr("2026-04-01"),
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestListProjectsScopesToMembership(t *testing.T) {
	h := newHarness(t)
	lead := h.site.User(rbac.GlobalManager)
	other := h.site.User(rbac.GlobalManager)
	admin := h.site.User(rbac.GlobalAdmin)

	_, err := h.projects.CreateProject(h.site.As(lead), CreateProjectRequest{Name: "Alpha"})
	require.NoError(t, err)
	_, err = h.projects.CreateProject(h.site.As(other), CreateProjectRequest{Name: "Bravo"})
	require.NoError(t, err)

	mine, err := h.projects.ListProjects(h.site.As(lead))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Alpha", mine[0].Name)

	all, err := h.projects.ListProjects(h.site.As(admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetProjectCrossProjectIsolation(t *testing.T) {
	h := newHarness(t)
	lead := h.site.User(rbac.GlobalManager)
	other := h.site.User(rbac.GlobalManager)

	p, err := h.projects.CreateProject(h.site.As(lead), CreateProjectRequest{Name: "Alpha"})
	require.NoError(t, err)
	q, err := h.projects.CreateProject(h.site.As(other), CreateProjectRequest{Name: "Bravo"})
	require.NoError(t, err)

	_, err = h.projects.GetProject(h.site.As(lead), p.ID)
	require.NoError(t, err)
	got, err := h.projects.GetProject(h.site.As(lead), q.ID)
	assert.ErrorIs(t, err, shared.ErrNotAMember)
	assert.Nil(t, got)
}

func TestUpdateProjectStatusChange(t *testing.T) {
	h := newHarness(t)
	lead := h.site.User(rbac.GlobalManager)
	p, err := h.projects.CreateProject(h.site.As(lead), CreateProjectRequest{Name: "Alpha"})
	require.NoError(t, err)

	super := h.site.MemberOf(t, p.ID, rbac.RoleSuperintendent)
	updated, err := h.projects.UpdateProject(h.site.As(super), p.ID, UpdateProjectRequest{Status: strPtr("on_hold")})
	require.NoError(t, err)
	assert.Equal(t, StatusOnHold, updated.Status)
	assert.Equal(t, activity.VerbStatusChanged, h.site.EntriesFor(t, p.ID)[0].Action)

	updated, err = h.projects.UpdateProject(h.site.As(super), p.ID, UpdateProjectRequest{Location: strPtr("Pier 4")})
	require.NoError(t, err)
	assert.Equal(t, "Pier 4", updated.Location)
	assert.Equal(t, activity.VerbUpdated, h.site.EntriesFor(t, p.ID)[0].Action)

	foreman := h.site.MemberOf(t, p.ID, rbac.RoleForeman)
	_, err = h.projects.UpdateProject(h.site.As(foreman), p.ID, UpdateProjectRequest{Name: strPtr("Renamed")})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestArchiveProject(t *testing.T) {
	h := newHarness(t)
	lead := h.site.User(rbac.GlobalManager)
	p, err := h.projects.CreateProject(h.site.As(lead), CreateProjectRequest{Name: "Alpha"})
	require.NoError(t, err)

	super := h.site.MemberOf(t, p.ID, rbac.RoleSuperintendent)
	_, err = h.projects.ArchiveProject(h.site.As(super), p.ID)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	archived, err := h.projects.ArchiveProject(h.site.As(lead), p.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusArchived, archived.Status)

	_, err = h.projects.ArchiveProject(h.site.As(lead), p.ID)
	assert.ErrorIs(t, err, shared.ErrValidation)
}
