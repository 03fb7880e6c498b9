package submittals

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
	"github.com/railyard/railyard/internal/testing/sitetest"
)

var errStorage = errors.New("storage unavailable")

type brokenRepository struct {
	*MemoryRepository
	fail bool
}

func (r *brokenRepository) Insert(ctx context.Context, s Submittal) (Submittal, error) {
	if r.fail {
		return Submittal{}, errStorage
	}
	return r.MemoryRepository.Insert(ctx, s)
}

func (r *brokenRepository) Update(ctx context.Context, s Submittal) (Submittal, error) {
	if r.fail {
		return Submittal{}, errStorage
	}
	return r.MemoryRepository.Update(ctx, s)
}

func TestFailedWritesRecordNoActivity(t *testing.T) {
	site := sitetest.New(t)
	repo := &brokenRepository{MemoryRepository: NewMemoryRepository()}
	svc := NewService(repo, site.Sequencer, site.Guard, site.Recorder, nil)
	ctx := site.As(site.Member(t, rbac.RoleManager))

	sub, err := svc.CreateSubmittal(ctx, site.ProjectID, CreateRequest{Title: "Precast panels"})
	require.NoError(t, err)
	require.Len(t, site.Entries(t), 1)

	repo.fail = true
	_, err = svc.CreateSubmittal(ctx, site.ProjectID, CreateRequest{Title: "Precast connections"})
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.UpdateSubmittalStatus(ctx, site.ProjectID, sub.ID, StatusRequest{Status: "submitted"})
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.UpdateSubmittal(ctx, site.ProjectID, sub.ID, UpdateRequest{Title: ptr("Precast wall panels")})
	assert.ErrorIs(t, err, errStorage)

	assert.Len(t, site.Entries(t), 1)
}

func TestStatusChangeChecksActorFirst(t *testing.T) {
	site := sitetest.New(t)
	svc := newService(site)

	_, err := svc.UpdateSubmittalStatus(context.Background(), site.ProjectID, site.ProjectID, StatusRequest{Status: "bogus"})
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
	assert.NotErrorIs(t, err, shared.ErrValidation)
}
