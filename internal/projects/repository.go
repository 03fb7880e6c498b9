package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railyard/railyard/internal/platform/db"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
)

// PGRepository stores projects in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const projectColumns = `id, name, code, description, location, status, start_date, end_date, created_by, created_at, updated_at`

// Create implements Repository.
func (r *PGRepository) Create(ctx context.Context, p Project, manager rbac.Membership) (Project, error) {
	var created Project
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO projects (id, name, code, description, location, status, start_date, end_date, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+projectColumns,
			p.ID, p.Name, p.Code, p.Description, p.Location, string(p.Status), p.StartDate, p.EndDate, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
		var err error
		if created, err = scanProject(row); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		_, err = rbac.InsertMembershipWith(ctx, tx, manager)
		return err
	})
	return created, err
}

// Get implements Repository.
func (r *PGRepository) Get(ctx context.Context, id uuid.UUID) (Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, shared.ErrNotFound
		}
		return Project{}, err
	}
	return p, nil
}

// ListAll implements Repository.
func (r *PGRepository) ListAll(ctx context.Context) ([]Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// ListForMember implements Repository.
func (r *PGRepository) ListForMember(ctx context.Context, userID uuid.UUID) ([]Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.name, p.code, p.description, p.location, p.status, p.start_date, p.end_date, p.created_by, p.created_at, p.updated_at
FROM projects p
JOIN project_members m ON m.project_id = p.id
WHERE m.user_id = $1
ORDER BY p.name`, userID)
	if err != nil {
		return nil, err
	}
	return collectProjects(rows)
}

// Update implements Repository.
func (r *PGRepository) Update(ctx context.Context, p Project) (Project, error) {
	row := r.pool.QueryRow(ctx, `UPDATE projects
SET name = $2, code = $3, description = $4, location = $5, status = $6, start_date = $7, end_date = $8, updated_at = $9
WHERE id = $1
RETURNING `+projectColumns,
		p.ID, p.Name, p.Code, p.Description, p.Location, string(p.Status), p.StartDate, p.EndDate, p.UpdatedAt)
	updated, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, shared.ErrNotFound
		}
		return Project{}, err
	}
	return updated, nil
}

func collectProjects(rows pgx.Rows) ([]Project, error) {
	defer rows.Close()
	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProject(row pgx.Row) (Project, error) {
	var (
		p      Project
		status string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.Location, &status,
		&p.StartDate, &p.EndDate, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Project{}, err
	}
	p.Status = Status(status)
	return p, nil
}
