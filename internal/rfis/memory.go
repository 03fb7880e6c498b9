package rfis

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/shared"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu        sync.RWMutex
	items     map[uuid.UUID]RFI
	responses map[uuid.UUID][]Response
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items:     make(map[uuid.UUID]RFI),
		responses: make(map[uuid.UUID][]Response),
	}
}

// Insert implements Repository.
func (r *MemoryRepository) Insert(_ context.Context, rfi RFI) (RFI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rfi.ID] = rfi
	return rfi, nil
}

// Get implements Repository.
func (r *MemoryRepository) Get(_ context.Context, projectID, id uuid.UUID) (RFI, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rfi, ok := r.items[id]
	if !ok || rfi.ProjectID != projectID {
		return RFI{}, shared.ErrNotFound
	}
	return rfi, nil
}

// List implements Repository.
func (r *MemoryRepository) List(_ context.Context, projectID uuid.UUID, filter ListFilter) ([]RFI, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []RFI
	for _, rfi := range r.items {
		if rfi.ProjectID != projectID || (filter.Status != "" && rfi.Status != filter.Status) {
			continue
		}
		out = append(out, rfi)
	}
	sortByNumber(out)
	return out, nil
}

// Update implements Repository.
func (r *MemoryRepository) Update(_ context.Context, rfi RFI) (RFI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(rfi)
}

func (r *MemoryRepository) updateLocked(rfi RFI) (RFI, error) {
	current, ok := r.items[rfi.ID]
	if !ok || current.ProjectID != rfi.ProjectID {
		return RFI{}, shared.ErrNotFound
	}
	r.items[rfi.ID] = rfi
	return rfi, nil
}

// AddResponse implements Repository.
func (r *MemoryRepository) AddResponse(_ context.Context, resp Response, rfi RFI) (RFI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.updateLocked(rfi)
	if err != nil {
		return RFI{}, err
	}
	r.responses[rfi.ID] = append(r.responses[rfi.ID], resp)
	return out, nil
}

// Responses implements Repository.
func (r *MemoryRepository) Responses(_ context.Context, projectID, rfiID uuid.UUID) ([]Response, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Response
	for _, resp := range r.responses[rfiID] {
		if resp.ProjectID == projectID {
			out = append(out, resp)
		}
	}
	return out, nil
}

// MarkOverdue implements Repository.
func (r *MemoryRepository) MarkOverdue(_ context.Context, cutoff, now time.Time) ([]RFI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var flagged []RFI
	for id, rfi := range r.items {
		if rfi.Status != StatusOpen || rfi.DueDate == nil || !rfi.DueDate.Before(cutoff) {
			continue
		}
		rfi.Status = StatusOverdue
		rfi.UpdatedAt = now
		r.items[id] = rfi
		flagged = append(flagged, rfi)
	}
	sortByNumber(flagged)
	return flagged, nil
}

func sortByNumber(list []RFI) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].ProjectID != list[j].ProjectID {
			return list[i].ProjectID.String() < list[j].ProjectID.String()
		}
		return list[i].Number < list[j].Number
	})
}
