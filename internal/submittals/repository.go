package submittals

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

// PGRepository stores submittals in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const columns = `id, project_id, number, title, description, spec_section, status, due_date,
submitted_by, submitted_at, reviewed_by, reviewed_at, review_notes, created_by, created_at, updated_at`

// Insert implements Repository.
func (r *PGRepository) Insert(ctx context.Context, s Submittal) (Submittal, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO submittals (`+columns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
RETURNING `+columns,
		s.ID, s.ProjectID, s.Number, s.Title, s.Description, s.SpecSection, string(s.Status), s.DueDate,
		db.UUIDArg(s.SubmittedBy), s.SubmittedAt, db.UUIDArg(s.ReviewedBy), s.ReviewedAt, s.ReviewNotes,
		s.CreatedBy, s.CreatedAt, s.UpdatedAt)
	out, err := scan(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Submittal{}, fmt.Errorf("%w: number %s already used", shared.ErrValidation, s.Number)
		}
		return Submittal{}, err
	}
	return out, nil
}

// Get implements Repository.
func (r *PGRepository) Get(ctx context.Context, projectID, id uuid.UUID) (Submittal, error) {
	s, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM submittals WHERE project_id = $1 AND id = $2`, projectID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Submittal{}, shared.ErrNotFound
		}
		return Submittal{}, err
	}
	return s, nil
}

// List implements Repository.
func (r *PGRepository) List(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]Submittal, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM submittals
WHERE project_id = $1 AND ($2 = '' OR status = $2)
ORDER BY number`, projectID, string(filter.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submittal
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update implements Repository.
func (r *PGRepository) Update(ctx context.Context, s Submittal) (Submittal, error) {
	row := r.pool.QueryRow(ctx, `UPDATE submittals
SET title = $3, description = $4, spec_section = $5, status = $6, due_date = $7,
    submitted_by = $8, submitted_at = $9, reviewed_by = $10, reviewed_at = $11, review_notes = $12, updated_at = $13
WHERE project_id = $1 AND id = $2
RETURNING `+columns,
		s.ProjectID, s.ID, s.Title, s.Description, s.SpecSection, string(s.Status), s.DueDate,
		db.UUIDArg(s.SubmittedBy), s.SubmittedAt, db.UUIDArg(s.ReviewedBy), s.ReviewedAt, s.ReviewNotes, s.UpdatedAt)
	out, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Submittal{}, shared.ErrNotFound
		}
		return Submittal{}, err
	}
	return out, nil
}

func scan(row pgx.Row) (Submittal, error) {
	var (
		s                     Submittal
		status                string
		submittedBy, reviewer pgtype.UUID
	)
	if err := row.Scan(&s.ID, &s.ProjectID, &s.Number, &s.Title, &s.Description, &s.SpecSection, &status, &s.DueDate,
		&submittedBy, &s.SubmittedAt, &reviewer, &s.ReviewedAt, &s.ReviewNotes, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Submittal{}, err
	}
	s.Status = Status(status)
	s.SubmittedBy = db.UUIDPtr(submittedBy)
	s.ReviewedBy = db.UUIDPtr(reviewer)
	return s, nil
}
