package rfis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
	"github.com/railyard/railyard/internal/testing/sitetest"
)

func newService(site *sitetest.Site) (*Service, *MemoryRepository) {
	repo := NewMemoryRepository()
	return NewService(repo, site.Sequencer, site.Guard, site.Recorder, nil), repo
}

func date(s string) *string { return &s }

func TestCreateRFI(t *testing.T) {
	site := sitetest.New(t)
	svc, _ := newService(site)
	owner := site.Member(t, rbac.RoleOwner)
	engineer := site.Member(t, rbac.RoleEngineer)

	rfi, err := svc.CreateRFI(site.As(owner), site.ProjectID, CreateRequest{
		Subject:    "Slab edge detail",
		Question:   "Confirm embed spacing at grid C.",
		AssignedTo: &engineer,
		DueDate:    date("2026-06-10"),
	})
	require.NoError(t, err)
	assert.Equal(t, "RFI-001", rfi.Number)
	assert.Equal(t, StatusOpen, rfi.Status)
	assert.Equal(t, PriorityNormal, rfi.Priority)
	require.NotNil(t, rfi.AssignedTo)

	outsider := site.User(rbac.GlobalMember)
	_, err = svc.CreateRFI(site.As(owner), site.ProjectID, CreateRequest{Subject: "x", Question: "y", AssignedTo: &outsider})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateRFI(site.As(owner), site.ProjectID, CreateRequest{Subject: "x", Question: "y", Priority: "asap"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	assert.Len(t, site.Entries(t), 1)
}

func TestOfficialResponseAnswers(t *testing.T) {
	site := sitetest.New(t)
	svc, _ := newService(site)
	foreman := site.Member(t, rbac.RoleForeman)
	engineer := site.Member(t, rbac.RoleEngineer)

	rfi, err := svc.CreateRFI(site.As(foreman), site.ProjectID, CreateRequest{Subject: "Beam penetration", Question: "Can we core W12 web?"})
	require.NoError(t, err)

	_, err = svc.AddResponse(site.As(foreman), site.ProjectID, rfi.ID, ResponseRequest{Body: "Photos attached"})
	require.NoError(t, err)
	detail, err := svc.GetRFI(site.As(foreman), site.ProjectID, rfi.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, detail.Status)

	_, err = svc.AddResponse(site.As(foreman), site.ProjectID, rfi.ID, ResponseRequest{Body: "Yes", Official: true})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	resp, err := svc.AddResponse(site.As(engineer), site.ProjectID, rfi.ID, ResponseRequest{Body: "Coring permitted within middle third.", Official: true})
	require.NoError(t, err)
	assert.True(t, resp.Official)

	detail, err = svc.GetRFI(site.As(foreman), site.ProjectID, rfi.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAnswered, detail.Status)
	assert.NotNil(t, detail.AnsweredAt)
	require.Len(t, detail.Responses, 2)
	assert.False(t, detail.Responses[0].Official)
	assert.True(t, detail.Responses[1].Official)

	latest := site.Entries(t)[0]
	assert.Equal(t, activity.VerbCommented, latest.Action)
	assert.Contains(t, latest.Description, "official response")
}

func TestCloseAndReopen(t *testing.T) {
	site := sitetest.New(t)
	svc, _ := newService(site)
	engineer := site.Member(t, rbac.RoleEngineer)
	contractor := site.Member(t, rbac.RoleContractor)

	rfi, err := svc.CreateRFI(site.As(contractor), site.ProjectID, CreateRequest{Subject: "Door hardware", Question: "Which set at 104?"})
	require.NoError(t, err)

	_, err = svc.CloseRFI(site.As(contractor), site.ProjectID, rfi.ID)
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	closed, err := svc.CloseRFI(site.As(engineer), site.ProjectID, rfi.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedBy)
	assert.Equal(t, engineer, *closed.ClosedBy)

	_, err = svc.AddResponse(site.As(contractor), site.ProjectID, rfi.ID, ResponseRequest{Body: "Follow-up"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CloseRFI(site.As(engineer), site.ProjectID, rfi.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	reopened, err := svc.ReopenRFI(site.As(engineer), site.ProjectID, rfi.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, reopened.Status)
	assert.Nil(t, reopened.ClosedAt)
}

func TestAssignRFI(t *testing.T) {
	site := sitetest.New(t)
	svc, _ := newService(site)
	super := site.Member(t, rbac.RoleSuperintendent)
	engineer := site.Member(t, rbac.RoleEngineer)
	inspector := site.Member(t, rbac.RoleInspector)

	rfi, err := svc.CreateRFI(site.As(inspector), site.ProjectID, CreateRequest{Subject: "Fireproofing", Question: "Thickness at columns?"})
	require.NoError(t, err)

	_, err = svc.AssignRFI(site.As(inspector), site.ProjectID, rfi.ID, AssignRequest{UserID: engineer})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	assigned, err := svc.AssignRFI(site.As(super), site.ProjectID, rfi.ID, AssignRequest{UserID: engineer})
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedTo)
	assert.Equal(t, engineer, *assigned.AssignedTo)
	assert.Equal(t, activity.VerbAssigned, site.Entries(t)[0].Action)

	_, err = svc.AssignRFI(site.As(super), site.ProjectID, rfi.ID, AssignRequest{UserID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestMarkOverdue(t *testing.T) {
	site := sitetest.New(t)
	svc, repo := newService(site)
	manager := site.Member(t, rbac.RoleManager)
	ctx := site.As(manager)

	late, err := svc.CreateRFI(ctx, site.ProjectID, CreateRequest{Subject: "Late", Question: "?", DueDate: date("2026-06-01")})
	require.NoError(t, err)
	dueToday, err := svc.CreateRFI(ctx, site.ProjectID, CreateRequest{Subject: "Today", Question: "?", DueDate: date("2026-06-03")})
	require.NoError(t, err)
	_, err = svc.CreateRFI(ctx, site.ProjectID, CreateRequest{Subject: "Undated", Question: "?"})
	require.NoError(t, err)
	answered, err := svc.CreateRFI(ctx, site.ProjectID, CreateRequest{Subject: "Answered", Question: "?", DueDate: date("2026-05-01")})
	require.NoError(t, err)
	_, err = svc.AddResponse(ctx, site.ProjectID, answered.ID, ResponseRequest{Body: "Done", Official: true})
	require.NoError(t, err)

	now := time.Date(2026, 6, 3, 15, 0, 0, 0, time.UTC)
	n, err := svc.MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.Get(ctx, site.ProjectID, late.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOverdue, got.Status)
	got, err = repo.Get(ctx, site.ProjectID, dueToday.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, got.Status)

	latest := site.Entries(t)[0]
	assert.Equal(t, activity.VerbStatusChanged, latest.Action)
	assert.Nil(t, latest.ActorID)

	n, err = svc.MarkOverdue(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.AddResponse(ctx, site.ProjectID, late.ID, ResponseRequest{Body: "Answer", Official: true})
	require.NoError(t, err)
	got, err = repo.Get(ctx, site.ProjectID, late.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAnswered, got.Status)
}

func TestRFICrossProject(t *testing.T) {
	site := sitetest.New(t)
	svc, _ := newService(site)
	other := uuid.New()
	mine := site.Member(t, rbac.RoleManager)
	theirs := site.MemberOf(t, other, rbac.RoleManager)

	foreign, err := svc.CreateRFI(site.As(theirs), other, CreateRequest{Subject: "Private", Question: "?"})
	require.NoError(t, err)

	_, err = svc.GetRFI(site.As(mine), site.ProjectID, foreign.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.CloseRFI(site.As(mine), site.ProjectID, foreign.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = svc.ListRFIs(site.As(mine), other, ListFilter{})
	assert.ErrorIs(t, err, shared.ErrNotAMember)
}
