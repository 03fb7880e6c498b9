package rbac

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/shared"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]Profile
	members  map[membershipKey]Membership
	projects map[uuid.UUID]struct{}
	now      func() time.Time
}

type membershipKey struct {
	project uuid.UUID
	user    uuid.UUID
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[uuid.UUID]Profile),
		members:  make(map[membershipKey]Membership),
		projects: make(map[uuid.UUID]struct{}),
		now:      time.Now,
	}
}

// PutProfile creates or replaces a profile.
func (s *MemoryStore) PutProfile(p Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}

// UpsertProfile stores p.
func (s *MemoryStore) UpsertProfile(_ context.Context, p Profile) error {
	s.PutProfile(p)
	return nil
}

// GlobalRole implements Directory.
func (s *MemoryStore) GlobalRole(_ context.Context, userID uuid.UUID) (GlobalRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return "", shared.ErrProfileNotFound
	}
	return p.GlobalRole, nil
}

// Profile implements Store.
func (s *MemoryStore) Profile(_ context.Context, userID uuid.UUID) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return Profile{}, shared.ErrProfileNotFound
	}
	return p, nil
}

// AddProject registers a project id so admin checks can see it.
func (s *MemoryStore) AddProject(projectID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[projectID] = struct{}{}
}

// ProjectExists implements Directory.
func (s *MemoryStore) ProjectExists(_ context.Context, projectID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.projects[projectID]
	return ok, nil
}

// FindMembership implements Directory.
func (s *MemoryStore) FindMembership(_ context.Context, projectID, userID uuid.UUID) (Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[membershipKey{projectID, userID}]
	if !ok {
		return Membership{}, shared.ErrNotFound
	}
	return m, nil
}

// ListMembers implements Store.
func (s *MemoryStore) ListMembers(_ context.Context, projectID uuid.UUID) ([]Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Member
	for key, m := range s.members {
		if key.project != projectID {
			continue
		}
		p := s.profiles[key.user]
		out = append(out, Member{Membership: m, Email: p.Email, FullName: p.FullName})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

// ProjectIDsFor lists projects where userID holds an explicit membership.
func (s *MemoryStore) ProjectIDsFor(userID uuid.UUID) []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []uuid.UUID
	for key := range s.members {
		if key.user == userID {
			ids = append(ids, key.project)
		}
	}
	return ids
}

// InsertMembership implements Store.
func (s *MemoryStore) InsertMembership(_ context.Context, m Membership) (Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey{m.ProjectID, m.UserID}
	if _, exists := s.members[key]; exists {
		return Membership{}, shared.ErrAlreadyMember
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := s.now().UTC()
	m.CanEdit = m.Role.CanEdit()
	m.Implicit = false
	m.CreatedAt = now
	m.UpdatedAt = now
	s.members[key] = m
	return m, nil
}

// UpdateMemberRole implements Store.
func (s *MemoryStore) UpdateMemberRole(_ context.Context, projectID, userID uuid.UUID, role ProjectRole) (Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey{projectID, userID}
	m, ok := s.members[key]
	if !ok {
		return Membership{}, shared.ErrNotFound
	}
	m.Role = role
	m.CanEdit = role.CanEdit()
	m.UpdatedAt = s.now().UTC()
	s.members[key] = m
	return m, nil
}

// DeleteMembership implements Store.
func (s *MemoryStore) DeleteMembership(_ context.Context, projectID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := membershipKey{projectID, userID}
	if _, ok := s.members[key]; !ok {
		return shared.ErrNotFound
	}
	delete(s.members, key)
	return nil
}
