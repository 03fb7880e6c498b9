package projects

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
)

// MemoryRepository is an in-process Repository sharing memberships with an
// rbac.MemoryStore.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]Project
	members  *rbac.MemoryStore
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository(members *rbac.MemoryStore) *MemoryRepository {
	return &MemoryRepository{projects: make(map[uuid.UUID]Project), members: members}
}

// Create implements Repository.
func (r *MemoryRepository) Create(ctx context.Context, p Project, manager rbac.Membership) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.members.InsertMembership(ctx, manager); err != nil {
		return Project{}, err
	}
	r.projects[p.ID] = p
	r.members.AddProject(p.ID)
	return p, nil
}

// Get implements Repository.
func (r *MemoryRepository) Get(_ context.Context, id uuid.UUID) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return Project{}, shared.ErrNotFound
	}
	return p, nil
}

// ListAll implements Repository.
func (r *MemoryRepository) ListAll(_ context.Context) ([]Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, p)
	}
	sortProjects(out)
	return out, nil
}

// ListForMember implements Repository.
func (r *MemoryRepository) ListForMember(_ context.Context, userID uuid.UUID) ([]Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Project
	for _, id := range r.members.ProjectIDsFor(userID) {
		if p, ok := r.projects[id]; ok {
			out = append(out, p)
		}
	}
	sortProjects(out)
	return out, nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(_ context.Context, p Project) (Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ID]; !ok {
		return Project{}, shared.ErrNotFound
	}
	r.projects[p.ID] = p
	return p, nil
}

func sortProjects(list []Project) {
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
}
