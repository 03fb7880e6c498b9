package dailylogs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railyard/railyard/internal/platform/db"
	"github.com/railyard/railyard/internal/shared"
)

// PGRepository stores daily logs in Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a PGRepository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const columns = `id, project_id, log_date, weather, temperature_high, temperature_low, crew_count,
work_performed, delays, safety_notes, created_by, created_at, updated_at`

// Insert implements Repository.
func (r *PGRepository) Insert(ctx context.Context, l DailyLog) (DailyLog, error) {
	out, err := scan(r.pool.QueryRow(ctx, `INSERT INTO daily_logs (`+columns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING `+columns,
		l.ID, l.ProjectID, l.LogDate, l.Weather, l.TemperatureHigh, l.TemperatureLow, l.CrewCount,
		l.WorkPerformed, l.Delays, l.SafetyNotes, l.CreatedBy, l.CreatedAt, l.UpdatedAt))
	if err != nil && db.IsUniqueViolation(err) {
		return DailyLog{}, ErrDuplicateDate
	}
	return out, err
}

// Get implements Repository.
func (r *PGRepository) Get(ctx context.Context, projectID, id uuid.UUID) (DailyLog, error) {
	l, err := scan(r.pool.QueryRow(ctx, `SELECT `+columns+` FROM daily_logs WHERE project_id = $1 AND id = $2`, projectID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return DailyLog{}, shared.ErrNotFound
	}
	return l, err
}

// List implements Repository.
func (r *PGRepository) List(ctx context.Context, projectID uuid.UUID, window Range) ([]DailyLog, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM daily_logs
WHERE project_id = $1
  AND ($2::date IS NULL OR log_date >= $2)
  AND ($3::date IS NULL OR log_date <= $3)
ORDER BY log_date DESC`, projectID, window.From, window.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyLog
	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Update implements Repository.
func (r *PGRepository) Update(ctx context.Context, l DailyLog) (DailyLog, error) {
	out, err := scan(r.pool.QueryRow(ctx, `UPDATE daily_logs
SET weather = $3, temperature_high = $4, temperature_low = $5, crew_count = $6,
    work_performed = $7, delays = $8, safety_notes = $9, updated_at = $10
WHERE project_id = $1 AND id = $2
RETURNING `+columns,
		l.ProjectID, l.ID, l.Weather, l.TemperatureHigh, l.TemperatureLow, l.CrewCount,
		l.WorkPerformed, l.Delays, l.SafetyNotes, l.UpdatedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return DailyLog{}, shared.ErrNotFound
	}
	return out, err
}

func scan(row pgx.Row) (DailyLog, error) {
	var l DailyLog
	err := row.Scan(&l.ID, &l.ProjectID, &l.LogDate, &l.Weather, &l.TemperatureHigh, &l.TemperatureLow, &l.CrewCount,
		&l.WorkPerformed, &l.Delays, &l.SafetyNotes, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}
