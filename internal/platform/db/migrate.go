package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations with goose.
type Migrator struct {
	dsn    string
	logger *slog.Logger
}

// NewMigrator constructs a Migrator for dsn.
func NewMigrator(dsn string, logger *slog.Logger) (*Migrator, error) {
	if dsn == "" {
		return nil, errors.New("platform/db: empty database dsn")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{dsn: dsn, logger: logger}, nil
}

// Up applies all pending migrations.
func (m *Migrator) Up(ctx context.Context) error {
	return m.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		m.logger.Info("applying migrations")
		if err := goose.UpContext(runCtx, db, "migrations"); err != nil {
			return fmt.Errorf("platform/db: apply migrations: %w", err)
		}
		m.logger.Info("migrations applied")
		return nil
	})
}

// Status logs applied and pending migrations.
func (m *Migrator) Status(ctx context.Context) error {
	return m.withDB(func(db *sql.DB) error {
		if err := goose.StatusContext(ctx, db, "migrations"); err != nil {
			return fmt.Errorf("platform/db: migration status: %w", err)
		}
		return nil
	})
}

// Down rolls back the latest migration, or down to target when positive.
func (m *Migrator) Down(ctx context.Context, target int64) error {
	return m.withDB(func(db *sql.DB) error {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if target > 0 {
			m.logger.Info("rolling back migrations", slog.Int64("target", target))
			if err := goose.DownToContext(runCtx, db, "migrations", target); err != nil {
				return fmt.Errorf("platform/db: rollback to %d: %w", target, err)
			}
			return nil
		}
		m.logger.Info("rolling back latest migration")
		if err := goose.DownContext(runCtx, db, "migrations"); err != nil {
			return fmt.Errorf("platform/db: rollback: %w", err)
		}
		return nil
	})
}

func (m *Migrator) withDB(fn func(*sql.DB) error) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("platform/db: configure goose: %w", err)
	}
	db, err := sql.Open("pgx", m.dsn)
	if err != nil {
		return fmt.Errorf("platform/db: open sql connection: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("platform/db: ping sql connection: %w", err)
	}
	return fn(db)
}
