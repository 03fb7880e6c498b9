package projects

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

type brokenProjects struct {
	*MemoryRepository
	fail bool
}

func (r *brokenProjects) Update(ctx context.Context, p Project) (Project, error) {
	if r.fail {
		return Project{}, errStorage
	}
	return r.MemoryRepository.Update(ctx, p)
}

type brokenMembers struct {
	*rbac.MemoryStore
}

func (brokenMembers) InsertMembership(context.Context, rbac.Membership) (rbac.Membership, error) {
	return rbac.Membership{}, errStorage
}

func TestFailedWritesRecordNoActivity(t *testing.T) {
	site := sitetest.New(t)
	repo := &brokenProjects{MemoryRepository: NewMemoryRepository(site.Store)}
	svc := NewService(repo, site.Guard, site.Recorder, nil)
	team := NewTeamService(brokenMembers{site.Store}, site.Guard, site.Recorder, nil)
	ctx := site.As(site.User(rbac.GlobalManager))

	p, err := svc.CreateProject(ctx, CreateProjectRequest{Name: "Northline Depot"})
	require.NoError(t, err)
	require.Len(t, site.EntriesFor(t, p.ID), 1)

	repo.fail = true
	_, err = svc.UpdateProject(ctx, p.ID, UpdateProjectRequest{Location: strPtr("Yard 7")})
	assert.ErrorIs(t, err, errStorage)
	_, err = svc.ArchiveProject(ctx, p.ID)
	assert.ErrorIs(t, err, errStorage)
	_, err = team.AddProjectMember(ctx, p.ID, AddMemberRequest{UserID: site.User(rbac.GlobalMember), Role: "foreman"})
	assert.ErrorIs(t, err, errStorage)

	assert.Len(t, site.EntriesFor(t, p.ID), 1)
}
