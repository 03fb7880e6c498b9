package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
)

type feedFixture struct {
	repo     *MemoryRepository
	recorder *Recorder
	feed     *Feed
	store    *rbac.MemoryStore
	project  uuid.UUID
	member   uuid.UUID
	outsider uuid.UUID
}

func newFeedFixture(t *testing.T, cache *Cache) feedFixture {
	t.Helper()
	store := rbac.NewMemoryStore()
	guard := rbac.NewGuard(rbac.NewEvaluator(store), nil, nil)
	repo := NewMemoryRepository()
	f := feedFixture{
		repo:     repo,
		recorder: NewRecorder(repo, RecorderOptions{Cache: cache}),
		feed:     NewFeed(repo, guard, cache, 0, 0),
		store:    store,
		project:  uuid.New(),
		member:   uuid.New(),
		outsider: uuid.New(),
	}
	store.PutProfile(rbac.Profile{ID: f.member, GlobalRole: rbac.GlobalMember})
	store.PutProfile(rbac.Profile{ID: f.outsider, GlobalRole: rbac.GlobalMember})
	_, err := store.InsertMembership(context.Background(), rbac.NewMembership(f.project, f.member, rbac.RoleOwner))
	require.NoError(t, err)
	return f
}

func (f feedFixture) seed(n int, base time.Time) {
	for i := 0; i < n; i++ {
		e := NewEntry(f.project, EntityDailyLog, uuid.New(), VerbCreated, fmt.Sprintf("log %d", i), f.member)
		// Stamped in groups of three sharing one timestamp.
		e.CreatedAt = base.Add(time.Duration(i-i%3) * time.Minute)
		f.recorder.Record(context.Background(), e)
	}
}

func TestRecentActivityOrdering(t *testing.T) {
	f := newFeedFixture(t, nil)
	f.seed(10, time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC))

	ctx := shared.ContextWithActor(context.Background(), f.member)
	entries, err := f.feed.RecentActivity(ctx, f.project, 10)
	require.NoError(t, err)
	require.Len(t, entries, 10)
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		assert.False(t, cur.CreatedAt.After(prev.CreatedAt), "entries must be newest first")
		if cur.CreatedAt.Equal(prev.CreatedAt) {
			assert.Greater(t, prev.Seq, cur.Seq)
		}
	}
}

func TestRecentActivityLimits(t *testing.T) {
	f := newFeedFixture(t, nil)
	f.seed(230, time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC))
	ctx := shared.ContextWithActor(context.Background(), f.member)

	entries, err := f.feed.RecentActivity(ctx, f.project, 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultLimit)

	entries, err = f.feed.RecentActivity(ctx, f.project, 1000)
	require.NoError(t, err)
	assert.Len(t, entries, MaxLimit)

	entries, err = f.feed.RecentActivity(ctx, f.project, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecentActivityRequiresMembership(t *testing.T) {
	f := newFeedFixture(t, nil)
	f.seed(2, time.Now())

	_, err := f.feed.RecentActivity(shared.ContextWithActor(context.Background(), f.outsider), f.project, 10)
	assert.ErrorIs(t, err, shared.ErrNotAMember)

	_, err = f.feed.RecentActivity(context.Background(), f.project, 10)
	assert.ErrorIs(t, err, shared.ErrNotAuthenticated)
}

func TestRecentActivityEmptyIsNotNil(t *testing.T) {
	f := newFeedFixture(t, nil)
	entries, err := f.feed.RecentActivity(shared.ContextWithActor(context.Background(), f.member), f.project, 5)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestCacheServesAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute, nil)
	f := newFeedFixture(t, cache)
	ctx := shared.ContextWithActor(context.Background(), f.member)

	f.seed(2, time.Now().UTC())
	entries, err := f.feed.RecentActivity(ctx, f.project, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	ver, err := cache.Version(context.Background(), f.project)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)
	assert.True(t, mr.Exists(feedKey(f.project, ver, 10)))

	// A write bumps the version so the next read misses the old page.
	f.seed(1, time.Now().UTC().Add(time.Hour))
	entries, err = f.feed.RecentActivity(ctx, f.project, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestCacheFallsBackWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute, nil)
	f := newFeedFixture(t, cache)
	f.seed(1, time.Now().UTC())
	mr.Close()

	entries, err := f.feed.RecentActivity(shared.ContextWithActor(context.Background(), f.member), f.project, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHandlerRecent(t *testing.T) {
	f := newFeedFixture(t, nil)
	f.seed(4, time.Now().UTC())
	r := chi.NewRouter()
	r.Route("/projects/{projectID}", NewHandler(f.feed).MountRoutes)

	req := httptest.NewRequest(http.MethodGet, "/projects/"+f.project.String()+"/activity?limit=2", nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), f.member))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Success bool    `json:"success"`
		Data    []Entry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 2)

	req = httptest.NewRequest(http.MethodGet, "/projects/"+f.project.String()+"/activity", nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), f.outsider))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Not a member of this project"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/projects/"+f.project.String()+"/activity?limit=abc", nil)
	req = req.WithContext(shared.ContextWithActor(req.Context(), f.member))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNATSSubject(t *testing.T) {
	id := uuid.MustParse("6f1c1f8e-5a2b-4c0e-9d77-3f1b2a9c0d11")
	assert.Equal(t, "railyard.activity.6f1c1f8e-5a2b-4c0e-9d77-3f1b2a9c0d11", NewNATSPublisher(nil, "").Subject(id))
	assert.Equal(t, "site.events.6f1c1f8e-5a2b-4c0e-9d77-3f1b2a9c0d11", NewNATSPublisher(nil, "site.events.").Subject(id))
}
