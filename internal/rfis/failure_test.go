package rfis

import (
	"context"
	"errors"
	"testing"

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

func (r *brokenRepository) Insert(ctx context.Context, rfi RFI) (RFI, error) {
	if r.fail {
		return RFI{}, errStorage
	}
	return r.MemoryRepository.Insert(ctx, rfi)
}

func (r *brokenRepository) Update(ctx context.Context, rfi RFI) (RFI, error) {
	if r.fail {
		return RFI{}, errStorage
	}
	return r.MemoryRepository.Update(ctx, rfi)
}

func (r *brokenRepository) AddResponse(ctx context.Context, resp Response, rfi RFI) (RFI, error) {
	if r.fail {
		return RFI{}, errStorage
	}
	return r.MemoryRepository.AddResponse(ctx, resp, rfi)
}

func TestFailedWritesRecordNoActivity(t *testing.T) {
	site := sitetest.New(t)
	repo := &brokenRepository{MemoryRepository: NewMemoryRepository()}
	svc := NewService(repo, site.Sequencer, site.Guard, site.Recorder, nil)
	ctx := site.As(site.Member(t, rbac.RoleManager))

	rfi, err := svc.CreateRFI(ctx, site.ProjectID, CreateRequest{Subject: "Drainage invert", Question: "Confirm invert at MH-4."})
	require.NoError(t, err)
	require.Len(t, site.Entries(t), 1)

	repo.fail = true
	_, err = svc.CreateRFI(ctx, site.ProjectID, CreateRequest{Subject: "Culvert", Question: "Headwall type?"})
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.AddResponse(ctx, site.ProjectID, rfi.ID, ResponseRequest{Body: "Invert is 101.25", Official: true})
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.CloseRFI(ctx, site.ProjectID, rfi.ID)
	assert.ErrorIs(t, err, errStorage)

	assert.Len(t, site.Entries(t), 1)
	got, err := repo.Get(context.Background(), site.ProjectID, rfi.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, got.Status)
}
