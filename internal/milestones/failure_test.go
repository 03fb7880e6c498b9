package milestones

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/testing/sitetest"
)

var errStorage = errors.New("storage unavailable")

type brokenRepository struct {
	*MemoryRepository
	fail bool
}

func (r *brokenRepository) Insert(ctx context.Context, m Milestone) (Milestone, error) {
	if r.fail {
		return Milestone{}, errStorage
	}
	return r.MemoryRepository.Insert(ctx, m)
}

func (r *brokenRepository) Update(ctx context.Context, m Milestone) (Milestone, error) {
	if r.fail {
		return Milestone{}, errStorage
	}
	return r.MemoryRepository.Update(ctx, m)
}

func TestFailedWritesRecordNoActivity(t *testing.T) {
	site := sitetest.New(t)
	repo := &brokenRepository{MemoryRepository: NewMemoryRepository()}
	svc := NewService(repo, site.Guard, site.Recorder, nil)
	svc.now = func() time.Time { return time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC) }
	ctx := site.As(site.Member(t, rbac.RoleManager))

	m, err := svc.CreateMilestone(ctx, site.ProjectID, CreateRequest{Name: "Signals energized", TargetDate: "2026-08-01"})
	require.NoError(t, err)
	require.Len(t, site.Entries(t), 1)

	repo.fail = true
	_, err = svc.CreateMilestone(ctx, site.ProjectID, CreateRequest{Name: "Handover", TargetDate: "2026-09-01"})
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.UpdateMilestone(ctx, site.ProjectID, m.ID, UpdateRequest{Status: ptr("complete")})
	assert.ErrorIs(t, err, errStorage)

	assert.Len(t, site.Entries(t), 1)
}
