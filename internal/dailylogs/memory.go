package dailylogs

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
	logs map[uuid.UUID]DailyLog
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{logs: make(map[uuid.UUID]DailyLog)}
}

// Insert implements Repository.
func (r *MemoryRepository) Insert(_ context.Context, l DailyLog) (DailyLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.logs {
		if existing.ProjectID == l.ProjectID && existing.LogDate.Equal(l.LogDate) {
			return DailyLog{}, ErrDuplicateDate
		}
	}
	r.logs[l.ID] = l
	return l, nil
}

// Get implements Repository.
func (r *MemoryRepository) Get(_ context.Context, projectID, id uuid.UUID) (DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.logs[id]
	if !ok || l.ProjectID != projectID {
		return DailyLog{}, shared.ErrNotFound
	}
	return l, nil
}

// List implements Repository.
func (r *MemoryRepository) List(_ context.Context, projectID uuid.UUID, window Range) ([]DailyLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []DailyLog
	for _, l := range r.logs {
		if l.ProjectID == projectID && window.contains(l.LogDate) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LogDate.After(out[j].LogDate) })
	return out, nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(_ context.Context, l DailyLog) (DailyLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.logs[l.ID]
	if !ok || current.ProjectID != l.ProjectID {
		return DailyLog{}, shared.ErrNotFound
	}
	r.logs[l.ID] = l
	return l, nil
}
