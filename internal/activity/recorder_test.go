package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingRepo struct {
	*MemoryRepository
	err error
}

func (r *failingRepo) Append(ctx context.Context, e Entry) (Entry, error) {
	if r.err != nil {
		return Entry{}, r.err
	}
	return r.MemoryRepository.Append(ctx, e)
}

type captureSpool struct{ entries []Entry }

func (s *captureSpool) Enqueue(_ context.Context, e Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

type capturePublisher struct{ entries []Entry }

func (p *capturePublisher) Publish(_ context.Context, e Entry) error {
	p.entries = append(p.entries, e)
	return nil
}

type failureCounter struct{ byType map[string]int }

func (c *failureCounter) ActivityWriteFailed(entityType string) {
	if c.byType == nil {
		c.byType = map[string]int{}
	}
	c.byType[entityType]++
}

func TestRecorderStampsAndPublishes(t *testing.T) {
	repo := NewMemoryRepository()
	pub := &capturePublisher{}
	rec := NewRecorder(repo, RecorderOptions{Publisher: pub})
	fixed := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	rec.now = func() time.Time { return fixed }

	projectID := uuid.New()
	actor := uuid.New()
	rec.Record(context.Background(), NewEntry(projectID, EntitySubmittal, uuid.New(), VerbCreated, "SUB-001: Rebar shop drawings", actor))

	entries, err := repo.Recent(context.Background(), projectID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEqual(t, uuid.Nil, entries[0].ID)
	assert.Equal(t, fixed, entries[0].CreatedAt)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, actor, *entries[0].ActorID)
	require.Len(t, pub.entries, 1)
	assert.Equal(t, entries[0].ID, pub.entries[0].ID)
}

func TestRecorderSwallowsAppendFailure(t *testing.T) {
	repo := &failingRepo{MemoryRepository: NewMemoryRepository(), err: errors.New("disk full")}
	spool := &captureSpool{}
	pub := &capturePublisher{}
	counter := &failureCounter{}
	rec := NewRecorder(repo, RecorderOptions{Spool: spool, Publisher: pub, Metrics: counter})

	projectID := uuid.New()
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), NewEntry(projectID, EntityRFI, uuid.New(), VerbCommented, "RFI-002: response", uuid.New()))
	})

	assert.Equal(t, 1, counter.byType["rfi"])
	require.Len(t, spool.entries, 1)
	assert.NotEqual(t, uuid.Nil, spool.entries[0].ID, "spooled entries keep their id for idempotent replay")
	assert.Empty(t, pub.entries)

	repo.err = nil
	require.NoError(t, rec.Replay(context.Background(), spool.entries[0]))
	require.NoError(t, rec.Replay(context.Background(), spool.entries[0]))
	entries, err := repo.Recent(context.Background(), projectID, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecorderRejectsUnknownVerb(t *testing.T) {
	repo := NewMemoryRepository()
	counter := &failureCounter{}
	rec := NewRecorder(repo, RecorderOptions{Metrics: counter})

	rec.Record(context.Background(), NewEntry(uuid.New(), EntityRFI, uuid.New(), Verb("deleted"), "x", uuid.Nil))
	assert.Zero(t, repo.Len())
	assert.Equal(t, 1, counter.byType["rfi"])
}

func TestRecorderSystemEntry(t *testing.T) {
	repo := NewMemoryRepository()
	rec := NewRecorder(repo, RecorderOptions{})
	projectID := uuid.New()

	rec.Record(context.Background(), NewEntry(projectID, EntityRFI, uuid.New(), VerbStatusChanged, "RFI-001 marked overdue", uuid.Nil))
	entries, err := repo.Recent(context.Background(), projectID, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].ActorID)
}
