package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sequencer issues project-scoped entity numbers from project_sequences.
// The upsert takes a row lock, so concurrent creations never share a number.
type Sequencer struct {
	pool *pgxpool.Pool
}

// NewSequencer constructs a Sequencer.
func NewSequencer(pool *pgxpool.Pool) *Sequencer {
	return &Sequencer{pool: pool}
}

// Next implements shared.Sequencer.
func (s *Sequencer) Next(ctx context.Context, projectID uuid.UUID, kind string) (int64, error) {
	const query = `
		INSERT INTO project_sequences (project_id, kind, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (project_id, kind) DO UPDATE SET value = project_sequences.value + 1
		RETURNING value`
	var value int64
	if err := s.pool.QueryRow(ctx, query, projectID, kind).Scan(&value); err != nil {
		return 0, fmt.Errorf("platform/db: next sequence: %w", err)
	}
	return value, nil
}
