package submittals

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/shared"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Submittal
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]Submittal)}
}

// Insert implements Repository.
func (r *MemoryRepository) Insert(_ context.Context, s Submittal) (Submittal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[s.ID] = s
	return s, nil
}

// Get implements Repository.
func (r *MemoryRepository) Get(_ context.Context, projectID, id uuid.UUID) (Submittal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[id]
	if !ok || s.ProjectID != projectID {
		return Submittal{}, shared.ErrNotFound
	}
	return s, nil
}

// List implements Repository.
func (r *MemoryRepository) List(_ context.Context, projectID uuid.UUID, filter ListFilter) ([]Submittal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Submittal
	for _, s := range r.items {
		if s.ProjectID != projectID || (filter.Status != "" && s.Status != filter.Status) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(_ context.Context, s Submittal) (Submittal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[s.ID]
	if !ok || current.ProjectID != s.ProjectID {
		return Submittal{}, shared.ErrNotFound
	}
	r.items[s.ID] = s
	return s, nil
}
