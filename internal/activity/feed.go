package activity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/rbac"
)

// Default feed page limits.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Feed serves recent activity to project members.
type Feed struct {
	repo         Repository
	guard        *rbac.Guard
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// NewFeed constructs a Feed. Non-positive limits fall back to the defaults.
func NewFeed(repo Repository, guard *rbac.Guard, cache *Cache, defaultLimit, maxLimit int) *Feed {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultLimit, maxLimit)
	}
	return &Feed{repo: repo, guard: guard, cache: cache, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// NormalizeLimit applies the default and cap to a requested page size.
func (f *Feed) NormalizeLimit(limit int) int {
	if limit <= 0 {
		return f.defaultLimit
	}
	return min(limit, f.maxLimit)
}

// RecentActivity returns the newest entries of the project, newest first.
func (f *Feed) RecentActivity(ctx context.Context, projectID uuid.UUID, limit int) ([]Entry, error) {
	if _, err := f.guard.RequireMember(ctx, projectID); err != nil {
		return nil, err
	}
	limit = f.NormalizeLimit(limit)
	entries, err := f.cache.Fetch(ctx, projectID, limit, func(ctx context.Context) ([]Entry, error) {
		return f.repo.Recent(ctx, projectID, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
