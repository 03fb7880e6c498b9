package milestones

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
	"github.com/railyard/railyard/internal/testing/sitetest"
)

func fixedService(site *sitetest.Site, now time.Time) *Service {
	svc := NewService(NewMemoryRepository(), site.Guard, site.Recorder, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func ptr[T any](v T) *T { return &v }

func TestCompleteFillsDateAndPercent(t *testing.T) {
	site := sitetest.New(t)
	now := time.Date(2026, 5, 14, 16, 30, 0, 0, time.UTC)
	svc := fixedService(site, now)
	super := site.Member(t, rbac.RoleSuperintendent)

	m, err := svc.CreateMilestone(site.As(super), site.ProjectID, CreateRequest{Name: "Track bed complete", TargetDate: "2026-05-30"})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, m.Status)
	assert.Equal(t, "Track bed complete (target 2026-05-30)", site.Entries(t)[0].Description)

	m, err = svc.UpdateMilestone(site.As(super), site.ProjectID, m.ID, UpdateRequest{PercentComplete: ptr(40), Status: ptr("in_progress")})
	require.NoError(t, err)
	assert.Equal(t, 40, m.PercentComplete)

	m, err = svc.UpdateMilestone(site.As(super), site.ProjectID, m.ID, UpdateRequest{Status: ptr("complete")})
	require.NoError(t, err)
	assert.Equal(t, 100, m.PercentComplete)
	require.NotNil(t, m.ActualDate)
	assert.Equal(t, time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC), *m.ActualDate)

	latest := site.Entries(t)[0]
	assert.Equal(t, activity.VerbStatusChanged, latest.Action)
	assert.Equal(t, "Track bed complete marked Complete", latest.Description)
}

func TestCompleteKeepsExplicitValues(t *testing.T) {
	site := sitetest.New(t)
	svc := fixedService(site, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	manager := site.Member(t, rbac.RoleManager)

	m, err := svc.CreateMilestone(site.As(manager), site.ProjectID, CreateRequest{Name: "Signals energized", TargetDate: "2026-06-15"})
	require.NoError(t, err)

	m, err = svc.UpdateMilestone(site.As(manager), site.ProjectID, m.ID, UpdateRequest{
		Status:          ptr("complete"),
		PercentComplete: ptr(95),
		ActualDate:      ptr("2026-05-28"),
	})
	require.NoError(t, err)
	assert.Equal(t, 95, m.PercentComplete)
	assert.Equal(t, "2026-05-28", m.ActualDate.Format(shared.DateLayout))
}

func TestUpdateWithoutStatusChange(t *testing.T) {
	site := sitetest.New(t)
	svc := fixedService(site, time.Now())
	engineer := site.Member(t, rbac.RoleEngineer)
	manager := site.Member(t, rbac.RoleManager)

	m, err := svc.CreateMilestone(site.As(manager), site.ProjectID, CreateRequest{Name: "Platform pour", TargetDate: "2026-07-01"})
	require.NoError(t, err)

	_, err = svc.UpdateMilestone(site.As(engineer), site.ProjectID, m.ID, UpdateRequest{TargetDate: ptr("2026-07-08")})
	require.NoError(t, err)
	assert.Equal(t, activity.VerbUpdated, site.Entries(t)[0].Action)

	_, err = svc.CreateMilestone(site.As(engineer), site.ProjectID, CreateRequest{Name: "x", TargetDate: "2026-07-01"})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	_, err = svc.UpdateMilestone(site.As(site.Member(t, rbac.RoleForeman)), site.ProjectID, m.ID, UpdateRequest{PercentComplete: ptr(10)})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)
}

func TestMilestoneValidation(t *testing.T) {
	site := sitetest.New(t)
	svc := fixedService(site, time.Now())
	manager := site.Member(t, rbac.RoleManager)

	_, err := svc.CreateMilestone(site.As(manager), site.ProjectID, CreateRequest{Name: "Bad", TargetDate: "30/05/2026"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	m, err := svc.CreateMilestone(site.As(manager), site.ProjectID, CreateRequest{Name: "Good", TargetDate: "2026-05-30"})
	require.NoError(t, err)
	_, err = svc.UpdateMilestone(site.As(manager), site.ProjectID, m.ID, UpdateRequest{PercentComplete: ptr(150)})
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.UpdateMilestone(site.As(manager), site.ProjectID, m.ID, UpdateRequest{Status: ptr("done")})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestListMilestonesByTargetDate(t *testing.T) {
	site := sitetest.New(t)
	svc := fixedService(site, time.Now())
	manager := site.Member(t, rbac.RoleManager)

	for _, req := range []CreateRequest{
		{Name: "Closeout", TargetDate: "2026-12-01"},
		{Name: "Mobilization", TargetDate: "2026-01-15"},
		{Name: "Structure", TargetDate: "2026-06-30"},
	} {
		_, err := svc.CreateMilestone(site.As(manager), site.ProjectID, req)
		require.NoError(t, err)
	}

	list, err := svc.ListMilestones(site.As(site.Member(t, rbac.RoleOwner)), site.ProjectID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Mobilization", "Structure", "Closeout"}, []string{list[0].Name, list[1].Name, list[2].Name})

	_, err = svc.ListMilestones(site.As(site.User(rbac.GlobalMember)), site.ProjectID)
	assert.ErrorIs(t, err, shared.ErrNotAMember)
}
