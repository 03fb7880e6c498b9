// Package cli holds the railyardctl commands.
package cli

import (
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/railyard/railyard/internal/app"
)

// NewRootCommand assembles railyardctl. Flags override the environment.
func NewRootCommand(logger *slog.Logger) *cobra.Command {
	var dsnFlag, redisFlag string
	var cfg *app.Config

	root := &cobra.Command{
		Use:           "railyardctl",
		Short:         "Operator tooling for Railyard",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := app.LoadConfig()
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&dsnFlag, "dsn", "", "Postgres DSN (default $PG_DSN)")
	root.PersistentFlags().StringVar(&redisFlag, "redis", "", "Redis address (default $REDIS_ADDR)")

	dsn := func() string {
		if dsnFlag != "" {
			return dsnFlag
		}
		return cfg.PGDSN
	}
	redisOpts := func() asynq.RedisClientOpt {
		opts := cfg.QueueRedis()
		if redisFlag != "" {
			opts.Addr = redisFlag
		}
		return opts
	}

	root.AddCommand(
		NewMigrateCommand(dsn, logger),
		NewSeedCommand(dsn, logger),
		NewJobsCommand(redisOpts),
	)
	return root
}
