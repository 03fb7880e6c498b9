// Package seed loads development fixtures from YAML.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/railyard/railyard/internal/projects"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/shared"
)

// Fixture is the root of a seed file.
type Fixture struct {
	Profiles []Profile `yaml:"profiles"`
	Projects []Project `yaml:"projects"`
}

// Profile seeds one user profile.
type Profile struct {
	ID         uuid.UUID `yaml:"id"`
	Email      string    `yaml:"email"`
	FullName   string    `yaml:"full_name"`
	GlobalRole string    `yaml:"global_role"`
}

// Project seeds one project with its team.
type Project struct {
	ID          uuid.UUID `yaml:"id"`
	Name        string    `yaml:"name"`
	Code        string    `yaml:"code"`
	Description string    `yaml:"description"`
	Location    string    `yaml:"location"`
	Manager     uuid.UUID `yaml:"manager"`
	Members     []Member  `yaml:"members"`
}

// Member seeds one membership.
type Member struct {
	UserID uuid.UUID `yaml:"user_id"`
	Role   string    `yaml:"role"`
}

// Parse decodes and checks a fixture.
func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("seed: decode: %w", err)
	}
	known := make(map[uuid.UUID]bool, len(f.Profiles))
	for i, p := range f.Profiles {
		if p.ID == uuid.Nil || strings.TrimSpace(p.Email) == "" {
			return Fixture{}, fmt.Errorf("seed: profile %d needs id and email", i)
		}
		if !rbac.GlobalRole(p.GlobalRole).IsValid() {
			return Fixture{}, fmt.Errorf("seed: profile %s has unknown global role %q", p.Email, p.GlobalRole)
		}
		known[p.ID] = true
	}
	for _, p := range f.Projects {
		if p.ID == uuid.Nil || strings.TrimSpace(p.Name) == "" {
			return Fixture{}, errors.New("seed: project needs id and name")
		}
		if !known[p.Manager] {
			return Fixture{}, fmt.Errorf("seed: project %s manager is not a seeded profile", p.Name)
		}
		for _, m := range p.Members {
			if _, err := rbac.ParseProjectRole(m.Role); err != nil {
				return Fixture{}, fmt.Errorf("seed: project %s: %w", p.Name, err)
			}
			if !known[m.UserID] {
				return Fixture{}, fmt.Errorf("seed: project %s member %s is not a seeded profile", p.Name, m.UserID)
			}
		}
	}
	return f, nil
}

// ProfileWriter stores profiles.
type ProfileWriter interface {
	UpsertProfile(ctx context.Context, p rbac.Profile) error
}

// Targets are the stores a fixture is written to.
type Targets struct {
	Profiles ProfileWriter
	Projects projects.Repository
	Members  rbac.Store
}

// Summary counts what Apply wrote.
type Summary struct {
	Profiles    int
	Projects    int
	Memberships int
}

// Apply writes f. Existing projects and memberships are left as they are,
// so running a fixture twice is harmless.
func Apply(ctx context.Context, f Fixture, to Targets, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var sum Summary
	for _, p := range f.Profiles {
		profile := rbac.Profile{ID: p.ID, Email: p.Email, FullName: p.FullName, GlobalRole: rbac.GlobalRole(p.GlobalRole)}
		if err := to.Profiles.UpsertProfile(ctx, profile); err != nil {
			return sum, fmt.Errorf("seed: profile %s: %w", p.Email, err)
		}
		sum.Profiles++
	}

	now := time.Now().UTC()
	for _, p := range f.Projects {
		_, err := to.Projects.Get(ctx, p.ID)
		switch {
		case err == nil:
			logger.Info("seed project exists", slog.String("project", p.Name))
		case errors.Is(err, shared.ErrNotFound):
			project := projects.Project{
				ID:          p.ID,
				Name:        p.Name,
				Code:        strings.ToUpper(p.Code),
				Description: p.Description,
				Location:    p.Location,
				Status:      projects.StatusActive,
				CreatedBy:   p.Manager,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if _, err := to.Projects.Create(ctx, project, rbac.NewMembership(p.ID, p.Manager, rbac.RoleManager)); err != nil {
				return sum, fmt.Errorf("seed: project %s: %w", p.Name, err)
			}
			sum.Projects++
		default:
			return sum, fmt.Errorf("seed: project %s: %w", p.Name, err)
		}

		for _, m := range p.Members {
			role, _ := rbac.ParseProjectRole(m.Role)
			if _, err := to.Members.InsertMembership(ctx, rbac.NewMembership(p.ID, m.UserID, role)); err != nil {
				if errors.Is(err, shared.ErrAlreadyMember) {
					continue
				}
				return sum, fmt.Errorf("seed: member %s of %s: %w", m.UserID, p.Name, err)
			}
			sum.Memberships++
		}
	}
	logger.Info("seed applied",
		slog.Int("profiles", sum.Profiles),
		slog.Int("projects", sum.Projects),
		slog.Int("memberships", sum.Memberships))
	return sum, nil
}
