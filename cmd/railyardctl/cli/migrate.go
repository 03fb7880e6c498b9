package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/railyard/railyard/internal/platform/db"
)

// NewMigrateCommand builds `migrate up|status|down`.
func NewMigrateCommand(dsn func() string, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{Use: "migrate", Short: "Manage the database schema"}

	migrator := func() (*db.Migrator, error) {
		return db.NewMigrator(dsn(), logger)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Up(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Status(cmd.Context())
		},
	})

	var target int64
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration, or down to --to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := migrator()
			if err != nil {
				return err
			}
			return m.Down(cmd.Context(), target)
		},
	}
	down.Flags().Int64Var(&target, "to", 0, "target version")
	cmd.AddCommand(down)
	return cmd
}
