package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/railyard/railyard/internal/platform/db"
	"github.com/railyard/railyard/internal/projects"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/seed"
)

// NewSeedCommand builds `seed <file.yaml>`.
func NewSeedCommand(dsn func() string, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load profiles, projects and memberships from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fixture, err := readFixture(args[0])
			if err != nil {
				return err
			}
			sum, err := seedPostgres(cmd.Context(), dsn(), fixture, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded profiles=%d projects=%d memberships=%d\n", sum.Profiles, sum.Projects, sum.Memberships)
			return nil
		},
	}
}

func readFixture(path string) (seed.Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return seed.Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return seed.Parse(data)
}

func seedPostgres(ctx context.Context, dsn string, f seed.Fixture, logger *slog.Logger) (seed.Summary, error) {
	pool, err := db.New(ctx, dsn, db.WithApplicationName("railyardctl"))
	if err != nil {
		return seed.Summary{}, err
	}
	defer pool.Close()
	members := rbac.NewRepository(pool)
	return seed.Apply(ctx, f, seed.Targets{
		Profiles: members,
		Projects: projects.NewPGRepository(pool),
		Members:  members,
	}, logger)
}
