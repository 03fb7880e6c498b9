package punchlist

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railyard/railyard/internal/platform/db"
	"github.com/railyard/railyard/internal/shared"
)

// PGRepository stores punch-list items in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const columns = `id, project_id, number, title, description, location, priority, status, assigned_to, due_date,
resolution_notes, resolved_by, resolved_at, verified_by, verified_at, created_by, created_at, updated_at`

// Insert implements Repository.
func (r *PGRepository) Insert(ctx context.Context, item Item) (Item, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO punch_list_items (`+columns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING `+columns,
		item.ID, item.ProjectID, item.Number, item.Title, item.Description, item.Location,
		string(item.Priority), string(item.Status), db.UUIDArg(item.AssignedTo), item.DueDate,
		item.ResolutionNotes, db.UUIDArg(item.ResolvedBy), item.ResolvedAt, db.UUIDArg(item.VerifiedBy), item.VerifiedAt,
		item.CreatedBy, item.CreatedAt, item.UpdatedAt)
	out, err := scan(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Item{}, fmt.Errorf("%w: number %s already used", shared.ErrValidation, item.Number)
		}
		return Item{}, err
	}
	return out, nil
}

// Get implements Repository.
func (r *PGRepository) Get(ctx context.Context, projectID, id uuid.UUID) (Item, error) {
	item, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM punch_list_items WHERE project_id = $1 AND id = $2`, projectID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// List implements Repository.
func (r *PGRepository) List(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM punch_list_items
WHERE project_id = $1
  AND ($2 = '' OR status = $2)
  AND ($3::uuid IS NULL OR assigned_to = $3)
ORDER BY number`, projectID, string(filter.Status), db.UUIDArg(filter.AssignedTo))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Item
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Update implements Repository.
func (r *PGRepository) Update(ctx context.Context, item Item) (Item, error) {
	row := r.pool.QueryRow(ctx, `UPDATE punch_list_items
SET title = $3, description = $4, location = $5, priority = $6, status = $7, assigned_to = $8, due_date = $9,
    resolution_notes = $10, resolved_by = $11, resolved_at = $12, verified_by = $13, verified_at = $14, updated_at = $15
WHERE project_id = $1 AND id = $2
RETURNING `+columns,
		item.ProjectID, item.ID, item.Title, item.Description, item.Location, string(item.Priority), string(item.Status),
		db.UUIDArg(item.AssignedTo), item.DueDate, item.ResolutionNotes,
		db.UUIDArg(item.ResolvedBy), item.ResolvedAt, db.UUIDArg(item.VerifiedBy), item.VerifiedAt, item.UpdatedAt)
	out, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	return out, nil
}

func scan(row pgx.Row) (Item, error) {
	var (
		item                             Item
		priority, status                 string
		assignee, resolvedBy, verifiedBy pgtype.UUID
	)
	if err := row.Scan(&item.ID, &item.ProjectID, &item.Number, &item.Title, &item.Description, &item.Location,
		&priority, &status, &assignee, &item.DueDate, &item.ResolutionNotes,
		&resolvedBy, &item.ResolvedAt, &verifiedBy, &item.VerifiedAt, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return Item{}, err
	}
	item.Priority = Priority(priority)
	item.Status = Status(status)
	item.AssignedTo = db.UUIDPtr(assignee)
	item.ResolvedBy = db.UUIDPtr(resolvedBy)
	item.VerifiedBy = db.UUIDPtr(verifiedBy)
	return item, nil
}
