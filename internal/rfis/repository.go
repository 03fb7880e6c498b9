package rfis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railyard/railyard/internal/platform/db"
	"github.com/railyard/railyard/internal/shared"
)

// PGRepository stores RFIs in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const columns = `id, project_id, number, subject, question, priority, status, assigned_to, due_date,
answered_at, closed_by, closed_at, created_by, created_at, updated_at`

// Insert implements Repository.
func (r *PGRepository) Insert(ctx context.Context, rfi RFI) (RFI, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO rfis (`+columns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING `+columns,
		rfi.ID, rfi.ProjectID, rfi.Number, rfi.Subject, rfi.Question, string(rfi.Priority), string(rfi.Status),
		db.UUIDArg(rfi.AssignedTo), rfi.DueDate, rfi.AnsweredAt, db.UUIDArg(rfi.ClosedBy), rfi.ClosedAt,
		rfi.CreatedBy, rfi.CreatedAt, rfi.UpdatedAt)
	out, err := scan(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return RFI{}, fmt.Errorf("%w: number %s already used", shared.ErrValidation, rfi.Number)
		}
		return RFI{}, err
	}
	return out, nil
}

// Get implements Repository.
func (r *PGRepository) Get(ctx context.Context, projectID, id uuid.UUID) (RFI, error) {
	rfi, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM rfis WHERE project_id = $1 AND id = $2`, projectID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RFI{}, shared.ErrNotFound
		}
		return RFI{}, err
	}
	return rfi, nil
}

// List implements Repository.
func (r *PGRepository) List(ctx context.Context, projectID uuid.UUID, filter ListFilter) ([]RFI, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM rfis
WHERE project_id = $1 AND ($2 = '' OR status = $2)
ORDER BY number`, projectID, string(filter.Status))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

// Update implements Repository.
func (r *PGRepository) Update(ctx context.Context, rfi RFI) (RFI, error) {
	return update(ctx, r.pool, rfi)
}

// AddResponse implements Repository.
func (r *PGRepository) AddResponse(ctx context.Context, resp Response, rfi RFI) (RFI, error) {
	var out RFI
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO rfi_responses (id, rfi_id, project_id, body, official, author_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			resp.ID, resp.RFIID, resp.ProjectID, resp.Body, resp.Official, resp.AuthorID, resp.CreatedAt); err != nil {
			return fmt.Errorf("insert response: %w", err)
		}
		var err error
		out, err = update(ctx, tx, rfi)
		return err
	})
	return out, err
}

// Responses implements Repository.
func (r *PGRepository) Responses(ctx context.Context, projectID, rfiID uuid.UUID) ([]Response, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, rfi_id, project_id, body, official, author_id, created_at
FROM rfi_responses
WHERE project_id = $1 AND rfi_id = $2
ORDER BY created_at, id`, projectID, rfiID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Response
	for rows.Next() {
		var resp Response
		if err := rows.Scan(&resp.ID, &resp.RFIID, &resp.ProjectID, &resp.Body, &resp.Official, &resp.AuthorID, &resp.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

// MarkOverdue implements Repository.
func (r *PGRepository) MarkOverdue(ctx context.Context, cutoff, now time.Time) ([]RFI, error) {
	rows, err := r.pool.Query(ctx, `UPDATE rfis SET status = 'overdue', updated_at = $2
WHERE status = 'open' AND due_date IS NOT NULL AND due_date < $1
RETURNING `+columns, cutoff, now)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func update(ctx context.Context, q db.Querier, rfi RFI) (RFI, error) {
	row := q.QueryRow(ctx, `UPDATE rfis
SET subject = $3, question = $4, priority = $5, status = $6, assigned_to = $7, due_date = $8,
    answered_at = $9, closed_by = $10, closed_at = $11, updated_at = $12
WHERE project_id = $1 AND id = $2
RETURNING `+columns,
		rfi.ProjectID, rfi.ID, rfi.Subject, rfi.Question, string(rfi.Priority), string(rfi.Status),
		db.UUIDArg(rfi.AssignedTo), rfi.DueDate, rfi.AnsweredAt, db.UUIDArg(rfi.ClosedBy), rfi.ClosedAt, rfi.UpdatedAt)
	out, err := scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RFI{}, shared.ErrNotFound
		}
		return RFI{}, err
	}
	return out, nil
}

func collect(rows pgx.Rows) ([]RFI, error) {
	defer rows.Close()
	var out []RFI
	for rows.Next() {
		rfi, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rfi)
	}
	return out, rows.Err()
}

func scan(row pgx.Row) (RFI, error) {
	var (
		rfi                RFI
		priority, status   string
		assignee, closedBy pgtype.UUID
	)
	if err := row.Scan(&rfi.ID, &rfi.ProjectID, &rfi.Number, &rfi.Subject, &rfi.Question, &priority, &status,
		&assignee, &rfi.DueDate, &rfi.AnsweredAt, &closedBy, &rfi.ClosedAt, &rfi.CreatedBy, &rfi.CreatedAt, &rfi.UpdatedAt); err != nil {
		return RFI{}, err
	}
	rfi.Priority = Priority(priority)
	rfi.Status = Status(status)
	rfi.AssignedTo = db.UUIDPtr(assignee)
	rfi.ClosedBy = db.UUIDPtr(closedBy)
	return rfi, nil
}
