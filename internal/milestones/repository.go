package milestones

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railyard/railyard/internal/shared"
)

// PGRepository stores milestones in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const columns = `id, project_id, name, description, target_date, actual_date, status, percent_complete, created_by, created_at, updated_at`

// Insert implements Repository.
func (r *PGRepository) Insert(ctx context.Context, m Milestone) (Milestone, error) {
	return scan(r.pool.QueryRow(ctx, `INSERT INTO milestones (`+columns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+columns,
		m.ID, m.ProjectID, m.Name, m.Description, m.TargetDate, m.ActualDate, string(m.Status), m.PercentComplete,
		m.CreatedBy, m.CreatedAt, m.UpdatedAt))
}

// Get implements Repository.
func (r *PGRepository) Get(ctx context.Context, projectID, id uuid.UUID) (Milestone, error) {
	m, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM milestones WHERE project_id = $1 AND id = $2`, projectID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Milestone{}, shared.ErrNotFound
	}
	return m, err
}

// List implements Repository.
func (r *PGRepository) List(ctx context.Context, projectID uuid.UUID) ([]Milestone, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM milestones WHERE project_id = $1 ORDER BY target_date, name`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Milestone
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update implements Repository.
func (r *PGRepository) Update(ctx context.Context, m Milestone) (Milestone, error) {
	out, err := scan(r.pool.QueryRow(ctx, `UPDATE milestones
SET name = $3, description = $4, target_date = $5, actual_date = $6, status = $7, percent_complete = $8, updated_at = $9
WHERE project_id = $1 AND id = $2
RETURNING `+columns,
		m.ProjectID, m.ID, m.Name, m.Description, m.TargetDate, m.ActualDate, string(m.Status), m.PercentComplete, m.UpdatedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return Milestone{}, shared.ErrNotFound
	}
	return out, err
}

func scan(row pgx.Row) (Milestone, error) {
	var (
		m      Milestone
		status string
	)
	if err := row.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Description, &m.TargetDate, &m.ActualDate, &status,
		&m.PercentComplete, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Milestone{}, err
	}
	m.Status = Status(status)
	return m, nil
}
