// Package sitetest assembles an in-memory project with its permission and
// activity plumbing for service tests.
package sitetest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
	_ "github.com/railyard/railyard/internal/testing/guard"
)

// Site is one project plus the stores its services need.
type Site struct {
	Store     *rbac.MemoryStore
	Guard     *rbac.Guard
	Activity  *activity.MemoryRepository
	Recorder  *activity.Recorder
	Sequencer *shared.MemorySequencer
	ProjectID uuid.UUID
}

// New builds an empty site around a fresh, registered project id.
func New(t testing.TB) *Site {
	t.Helper()
	store := rbac.NewMemoryStore()
	repo := activity.NewMemoryRepository()
	projectID := uuid.New()
	store.AddProject(projectID)
	return &Site{
		Store:     store,
		Guard:     rbac.NewGuard(rbac.NewEvaluator(store), nil, nil),
		Activity:  repo,
		Recorder:  activity.NewRecorder(repo, activity.RecorderOptions{}),
		Sequencer: shared.NewMemorySequencer(),
		ProjectID: projectID,
	}
}

// Project registers another project id on the site.
func (s *Site) Project() uuid.UUID {
	id := uuid.New()
	s.Store.AddProject(id)
	return id
}

// User registers a profile with the given global role.
func (s *Site) User(global rbac.GlobalRole) uuid.UUID {
	id := uuid.New()
	s.Store.PutProfile(rbac.Profile{ID: id, Email: id.String()[:8] + "@site.test", FullName: "User " + id.String()[:8], GlobalRole: global})
	return id
}

// Member registers a global member holding role on the site's project.
func (s *Site) Member(t testing.TB, role rbac.ProjectRole) uuid.UUID {
	t.Helper()
	return s.MemberOf(t, s.ProjectID, role)
}

// MemberOf registers a global member holding role on projectID.
func (s *Site) MemberOf(t testing.TB, projectID uuid.UUID, role rbac.ProjectRole) uuid.UUID {
	t.Helper()
	s.Store.AddProject(projectID)
	id := s.User(rbac.GlobalMember)
	_, err := s.Store.InsertMembership(context.Background(), rbac.NewMembership(projectID, id, role))
	require.NoError(t, err)
	return id
}

// As returns a context acting as actorID.
func (s *Site) As(actorID uuid.UUID) context.Context {
	return shared.ContextWithActor(context.Background(), actorID)
}

// Entries returns the project's activity, newest first.
func (s *Site) Entries(t testing.TB) []activity.Entry {
	t.Helper()
	return s.EntriesFor(t, s.ProjectID)
}

// EntriesFor returns projectID's activity, newest first.
func (s *Site) EntriesFor(t testing.TB, projectID uuid.UUID) []activity.Entry {
	t.Helper()
	entries, err := s.Activity.Recent(context.Background(), projectID, 1000)
	require.NoError(t, err)
	return entries
}
