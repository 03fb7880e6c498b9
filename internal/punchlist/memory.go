package punchlist

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
	items map[uuid.UUID]Item
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[uuid.UUID]Item)}
}

// Insert implements Repository.
func (r *MemoryRepository) Insert(_ context.Context, item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = item
	return item, nil
}

// Get implements Repository.
func (r *MemoryRepository) Get(_ context.Context, projectID, id uuid.UUID) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.ProjectID != projectID {
		return Item{}, shared.ErrNotFound
	}
	return item, nil
}

// List implements Repository.
func (r *MemoryRepository) List(_ context.Context, projectID uuid.UUID, filter ListFilter) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Item
	for _, item := range r.items {
		if item.ProjectID != projectID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.AssignedTo != nil && (item.AssignedTo == nil || *item.AssignedTo != *filter.AssignedTo) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(_ context.Context, item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[item.ID]
	if !ok || current.ProjectID != item.ProjectID {
		return Item{}, shared.ErrNotFound
	}
	r.items[item.ID] = item
	return item, nil
}
