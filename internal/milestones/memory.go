package milestones

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/shared"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]Milestone
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[uuid.UUID]Milestone)}
}

// Insert implements Repository.
func (r *MemoryRepository) Insert(_ context.Context, m Milestone) (Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[m.ID] = m
	return m, nil
}

// Get implements Repository.
func (r *MemoryRepository) Get(_ context.Context, projectID, id uuid.UUID) (Milestone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.rows[id]
	if !ok || m.ProjectID != projectID {
		return Milestone{}, shared.ErrNotFound
	}
	return m, nil
}

// List implements Repository.
func (r *MemoryRepository) List(_ context.Context, projectID uuid.UUID) ([]Milestone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Milestone
	for _, m := range r.rows {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TargetDate.Equal(out[j].TargetDate) {
			return out[i].TargetDate.Before(out[j].TargetDate)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(_ context.Context, m Milestone) (Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.rows[m.ID]
	if !ok || current.ProjectID != m.ProjectID {
		return Milestone{}, shared.ErrNotFound
	}
	r.rows[m.ID] = m
	return m, nil
}
