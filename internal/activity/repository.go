package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railyard/railyard/internal/platform/db"
)

// PGRepository stores entries in activity_log.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Append implements Repository. A replayed id is reported as stored.
func (r *PGRepository) Append(ctx context.Context, e Entry) (Entry, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO activity_log (id, project_id, entity_type, entity_id, action, description, actor_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING
RETURNING seq`,
		e.ID, e.ProjectID, string(e.EntityType), e.EntityID, string(e.Action), e.Description, db.UUIDArg(e.ActorID), e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return e, nil
		}
		return Entry{}, fmt.Errorf("append activity: %w", err)
	}
	return e, nil
}

// Recent implements Repository.
func (r *PGRepository) Recent(ctx context.Context, projectID uuid.UUID, limit int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, seq, project_id, entity_type, entity_id, action, description, actor_id, created_at
FROM activity_log
WHERE project_id = $1
ORDER BY created_at DESC, seq DESC
LIMIT $2`, projectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			entityType string
			action     string
			actor      pgtype.UUID
		)
		if err := rows.Scan(&e.ID, &e.Seq, &e.ProjectID, &entityType, &e.EntityID, &action, &e.Description, &actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.EntityType = EntityType(entityType)
		e.Action = Verb(action)
		e.ActorID = db.UUIDPtr(actor)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
