package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railyard/railyard/internal/platform/db"
	"github.com/railyard/railyard/internal/shared"
)

// Member is a membership joined with the member's profile.
type Member struct {
	Membership
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Store persists profiles lookups and project memberships.
type Store interface {
	Directory
	Profile(ctx context.Context, userID uuid.UUID) (Profile, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]Member, error)
	// InsertMembership returns shared.ErrAlreadyMember on a duplicate pair.
	InsertMembership(ctx context.Context, m Membership) (Membership, error)
	UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role ProjectRole) (Membership, error)
	DeleteMembership(ctx context.Context, projectID, userID uuid.UUID) error
}

// Repository is the Postgres Store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GlobalRole implements Directory.
func (r *Repository) GlobalRole(ctx context.Context, userID uuid.UUID) (GlobalRole, error) {
	var role string
	err := r.pool.QueryRow(ctx, `SELECT global_role FROM profiles WHERE id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrProfileNotFound
		}
		return "", err
	}
	return GlobalRole(role), nil
}

// Profile fetches a profile by id.
func (r *Repository) Profile(ctx context.Context, userID uuid.UUID) (Profile, error) {
	var (
		p    Profile
		role string
	)
	err := r.pool.QueryRow(ctx, `SELECT id, email, full_name, global_role FROM profiles WHERE id = $1`, userID).
		Scan(&p.ID, &p.Email, &p.FullName, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, shared.ErrProfileNotFound
		}
		return Profile{}, err
	}
	p.GlobalRole = GlobalRole(role)
	return p, nil
}

// UpsertProfile writes a profile. Only seeding uses it; the auth service owns
// profiles in production.
func (r *Repository) UpsertProfile(ctx context.Context, p Profile) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO profiles (id, email, full_name, global_role)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, full_name = EXCLUDED.full_name, global_role = EXCLUDED.global_role`,
		p.ID, p.Email, p.FullName, string(p.GlobalRole))
	return err
}

// ProjectExists implements Directory.
func (r *Repository) ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID).Scan(&exists)
	return exists, err
}

const membershipColumns = `id, project_id, user_id, role, created_at, updated_at`

// FindMembership implements Directory.
func (r *Repository) FindMembership(ctx context.Context, projectID, userID uuid.UUID) (Membership, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+membershipColumns+`
FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Membership{}, shared.ErrNotFound
		}
		return Membership{}, err
	}
	return m, nil
}

// ListMembers returns the project's explicit members ordered by name.
func (r *Repository) ListMembers(ctx context.Context, projectID uuid.UUID) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `SELECT m.id, m.project_id, m.user_id, m.role, m.created_at, m.updated_at, p.email, p.full_name
FROM project_members m
JOIN profiles p ON p.id = m.user_id
WHERE m.project_id = $1
ORDER BY p.full_name, p.email`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var members []Member
	for rows.Next() {
		var (
			mem  Member
			role string
		)
		if err := rows.Scan(&mem.ID, &mem.ProjectID, &mem.UserID, &role, &mem.CreatedAt, &mem.UpdatedAt, &mem.Email, &mem.FullName); err != nil {
			return nil, err
		}
		mem.Role = ProjectRole(role)
		mem.CanEdit = mem.Role.CanEdit()
		members = append(members, mem)
	}
	return members, rows.Err()
}

// InsertMembership stores a new membership row.
func (r *Repository) InsertMembership(ctx context.Context, m Membership) (Membership, error) {
	return InsertMembershipWith(ctx, r.pool, m)
}

// InsertMembershipWith inserts m through q so callers can share a transaction.
func InsertMembershipWith(ctx context.Context, q db.Querier, m Membership) (Membership, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	row := q.QueryRow(ctx, `INSERT INTO project_members (id, project_id, user_id, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING `+membershipColumns, m.ID, m.ProjectID, m.UserID, string(m.Role))
	out, err := scanMembership(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Membership{}, shared.ErrAlreadyMember
		}
		return Membership{}, fmt.Errorf("insert membership: %w", err)
	}
	return out, nil
}

// UpdateMemberRole changes the role of an existing membership.
func (r *Repository) UpdateMemberRole(ctx context.Context, projectID, userID uuid.UUID, role ProjectRole) (Membership, error) {
	row := r.pool.QueryRow(ctx, `UPDATE project_members SET role = $3, updated_at = NOW()
WHERE project_id = $1 AND user_id = $2
RETURNING `+membershipColumns, projectID, userID, string(role))
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Membership{}, shared.ErrNotFound
		}
		return Membership{}, err
	}
	return m, nil
}

// DeleteMembership removes a membership row.
func (r *Repository) DeleteMembership(ctx context.Context, projectID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanMembership(row pgx.Row) (Membership, error) {
	var (
		m    Membership
		role string
	)
	if err := row.Scan(&m.ID, &m.ProjectID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return Membership{}, err
	}
	m.Role = ProjectRole(role)
	m.CanEdit = m.Role.CanEdit()
	return m, nil
}
