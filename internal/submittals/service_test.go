package submittals

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
	"github.com/railyard/railyard/internal/testing/sitetest"
)

func newService(site *sitetest.Site) *Service {
	return NewService(NewMemoryRepository(), site.Sequencer, site.Guard, site.Recorder, nil)
}

func TestCreateSubmittalNumbering(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	contractor := site.Member(t, rbac.RoleContractor)
	ctx := site.As(contractor)

	for i, want := range []string{"SUB-001", "SUB-002", "SUB-003"} {
		sub, err := svc.CreateSubmittal(ctx, site.ProjectID, CreateRequest{Title: "Package " + want, SpecSection: "03 30 00"})
		require.NoError(t, err, i)
		assert.Equal(t, want, sub.Number)
		assert.Equal(t, StatusDraft, sub.Status)
	}

	entries := site.Entries(t)
	require.Len(t, entries, 3)
	assert.Equal(t, activity.VerbCreated, entries[0].Action)
	assert.Equal(t, "SUB-003: Package SUB-003", entries[0].Description)
}

func TestCreateSubmittalNumbersArePerProject(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	other := site.Project()
	admin := site.User(rbac.GlobalAdmin)

	_, err := svc.CreateSubmittal(site.As(admin), site.ProjectID, CreateRequest{Title: "Curtain wall"})
	require.NoError(t, err)
	sub, err := svc.CreateSubmittal(site.As(admin), other, CreateRequest{Title: "Curtain wall"})
	require.NoError(t, err)
	assert.Equal(t, "SUB-001", sub.Number)
}

func TestCreateSubmittalUnknownProject(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	missing := uuid.New()

	sub, err := svc.CreateSubmittal(site.As(site.User(rbac.GlobalAdmin)), missing, CreateRequest{Title: "Curtain wall"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Nil(t, sub)
	assert.Empty(t, site.EntriesFor(t, missing))
}

func TestCreateSubmittalConcurrentNumbersAreUnique(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	ctx := site.As(site.Member(t, rbac.RoleEngineer))

	const n = 25
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub, err := svc.CreateSubmittal(ctx, site.ProjectID, CreateRequest{Title: "Anchor bolts"})
			if err != nil {
				return
			}
			mu.Lock()
			numbers[sub.Number] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, numbers, n)
}

func TestCreateSubmittalDenied(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)

	_, err := svc.CreateSubmittal(site.As(site.Member(t, rbac.RoleOwner)), site.ProjectID, CreateRequest{Title: "x"})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	_, err = svc.CreateSubmittal(site.As(site.User(rbac.GlobalMember)), site.ProjectID, CreateRequest{Title: "x"})
	assert.ErrorIs(t, err, shared.ErrNotAMember)

	_, err = svc.CreateSubmittal(site.As(site.Member(t, rbac.RoleForeman)), site.ProjectID, CreateRequest{Title: "  "})
	assert.ErrorIs(t, err, shared.ErrValidation)

	assert.Empty(t, site.Entries(t))
}

func TestReviewFlow(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	contractor := site.Member(t, rbac.RoleContractor)
	engineer := site.Member(t, rbac.RoleEngineer)

	var sub *Submittal
	for i := 0; i < 4; i++ {
		var err error
		sub, err = svc.CreateSubmittal(site.As(contractor), site.ProjectID, CreateRequest{Title: "Storefront glazing"})
		require.NoError(t, err)
	}
	require.Equal(t, "SUB-004", sub.Number)

	sub, err := svc.UpdateSubmittalStatus(site.As(contractor), site.ProjectID, sub.ID, StatusRequest{Status: "submitted"})
	require.NoError(t, err)
	require.NotNil(t, sub.SubmittedBy)
	assert.Equal(t, contractor, *sub.SubmittedBy)
	assert.Equal(t, activity.VerbSubmitted, site.Entries(t)[0].Action)

	_, err = svc.UpdateSubmittalStatus(site.As(contractor), site.ProjectID, sub.ID, StatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, shared.ErrPermissionDenied)

	sub, err = svc.UpdateSubmittalStatus(site.As(engineer), site.ProjectID, sub.ID, StatusRequest{Status: "approved", Notes: "Approved as noted"})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, sub.Status)
	require.NotNil(t, sub.ReviewedBy)
	assert.Equal(t, engineer, *sub.ReviewedBy)
	assert.NotNil(t, sub.ReviewedAt)
	assert.Equal(t, "Approved as noted", sub.ReviewNotes)

	latest := site.Entries(t)[0]
	assert.Equal(t, activity.VerbApproved, latest.Action)
	assert.Equal(t, "SUB-004 approved", latest.Description)
	require.NotNil(t, latest.ActorID)
	assert.Equal(t, engineer, *latest.ActorID)
}

func TestConditionalAndResubmit(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	super := site.Member(t, rbac.RoleSuperintendent)
	ctx := site.As(super)

	sub, err := svc.CreateSubmittal(ctx, site.ProjectID, CreateRequest{Title: "Roof membrane"})
	require.NoError(t, err)
	_, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, sub.ID, StatusRequest{Status: "submitted"})
	require.NoError(t, err)
	_, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, sub.ID, StatusRequest{Status: "under_review"})
	require.NoError(t, err)
	assert.Equal(t, activity.VerbStatusChanged, site.Entries(t)[0].Action)

	sub, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, sub.ID, StatusRequest{Status: "conditional", Notes: "Provide wind uplift data"})
	require.NoError(t, err)
	assert.Equal(t, "SUB-001 conditionally approved", site.Entries(t)[0].Description)
	assert.Equal(t, activity.VerbApproved, site.Entries(t)[0].Action)

	sub, err = svc.UpdateSubmittal(ctx, site.ProjectID, sub.ID, UpdateRequest{Description: ptr("Uplift data attached")})
	require.NoError(t, err)
	assert.Equal(t, "Uplift data attached", sub.Description)

	sub, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, sub.ID, StatusRequest{Status: "submitted"})
	require.NoError(t, err)
	assert.Nil(t, sub.ReviewedBy)
	assert.Empty(t, sub.ReviewNotes)
}

func TestInvalidTransitionsAndLocks(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	manager := site.Member(t, rbac.RoleManager)
	ctx := site.As(manager)

	sub, err := svc.CreateSubmittal(ctx, site.ProjectID, CreateRequest{Title: "Elevator cab finishes"})
	require.NoError(t, err)

	_, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, sub.ID, StatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	_, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, sub.ID, StatusRequest{Status: "shipped"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, sub.ID, StatusRequest{Status: "submitted"})
	require.NoError(t, err)
	_, err = svc.UpdateSubmittal(ctx, site.ProjectID, sub.ID, UpdateRequest{Title: ptr("Changed")})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.UpdateSubmittal(ctx, site.ProjectID, uuid.New(), UpdateRequest{Title: ptr("Changed")})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCrossProjectIsolation(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	otherProject := uuid.New()
	mine := site.Member(t, rbac.RoleManager)
	theirs := site.MemberOf(t, otherProject, rbac.RoleManager)

	foreign, err := svc.CreateSubmittal(site.As(theirs), otherProject, CreateRequest{Title: "Secret"})
	require.NoError(t, err)

	_, err = svc.GetSubmittal(site.As(mine), otherProject, foreign.ID)
	assert.ErrorIs(t, err, shared.ErrNotAMember)

	_, err = svc.GetSubmittal(site.As(mine), site.ProjectID, foreign.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.UpdateSubmittal(site.As(mine), site.ProjectID, foreign.ID, UpdateRequest{Title: ptr("Mine now")})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	list, err := svc.ListSubmittals(site.As(mine), site.ProjectID, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListSubmittalsFilter(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)
	ctx := site.As(site.Member(t, rbac.RoleEngineer))

	first, err := svc.CreateSubmittal(ctx, site.ProjectID, CreateRequest{Title: "A"})
	require.NoError(t, err)
	_, err = svc.CreateSubmittal(ctx, site.ProjectID, CreateRequest{Title: "B"})
	require.NoError(t, err)
	_, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, first.ID, StatusRequest{Status: "submitted"})
	require.NoError(t, err)

	list, err := svc.ListSubmittals(ctx, site.ProjectID, ListFilter{Status: StatusDraft})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "SUB-002", list[0].Number)

	_, err = svc.ListSubmittals(ctx, site.ProjectID, ListFilter{Status: "lost"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func ptr(s string) *string { return &s }
