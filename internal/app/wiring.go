package app

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/dailylogs"
	"github.com/railyard/railyard/internal/milestones"
	"github.com/railyard/railyard/internal/observability"
	"github.com/railyard/railyard/internal/platform/db"
	"github.com/railyard/railyard/internal/projects"
	"github.com/railyard/railyard/internal/punchlist"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/rfis"
	"github.com/railyard/railyard/internal/shared"
	"github.com/railyard/railyard/internal/submittals"
)

// Stores groups the repositories behind the services.
type Stores struct {
	Members    rbac.Store
	Projects   projects.Repository
	Submittals submittals.Repository
	RFIs       rfis.Repository
	PunchList  punchlist.Repository
	Milestones milestones.Repository
	DailyLogs  dailylogs.Repository
	Activity   activity.Repository
	Sequencer  shared.Sequencer

	// Directory is set for in-memory stores so seeds and tests can add profiles.
	Directory *rbac.MemoryStore
}

// MemoryStores returns process-local repositories.
func MemoryStores() Stores {
	members := rbac.NewMemoryStore()
	return Stores{
		Members:    members,
		Projects:   projects.NewMemoryRepository(members),
		Submittals: submittals.NewMemoryRepository(),
		RFIs:       rfis.NewMemoryRepository(),
		PunchList:  punchlist.NewMemoryRepository(),
		Milestones: milestones.NewMemoryRepository(),
		DailyLogs:  dailylogs.NewMemoryRepository(),
		Activity:   activity.NewMemoryRepository(),
		Sequencer:  shared.NewMemorySequencer(),
		Directory:  members,
	}
}

// PostgresStores returns repositories backed by pool.
func PostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Members:    rbac.NewRepository(pool),
		Projects:   projects.NewPGRepository(pool),
		Submittals: submittals.NewPGRepository(pool),
		RFIs:       rfis.NewPGRepository(pool),
		PunchList:  punchlist.NewPGRepository(pool),
		Milestones: milestones.NewPGRepository(pool),
		DailyLogs:  dailylogs.NewPGRepository(pool),
		Activity:   activity.NewPGRepository(pool),
		Sequencer:  db.NewSequencer(pool),
	}
}

// OpenStores connects the backend selected by cfg. The returned func
// releases it.
func OpenStores(ctx context.Context, cfg *Config) (Stores, func(), error) {
	if cfg.UsesMemoryStore() {
		return MemoryStores(), func() {}, nil
	}
	pool, err := db.New(ctx, cfg.PGDSN, db.WithMaxConns(cfg.PGMaxConns), db.WithApplicationName("railyard"))
	if err != nil {
		return Stores{}, nil, err
	}
	return PostgresStores(pool), pool.Close, nil
}

// ServiceOptions carries the optional infrastructure shared by services.
type ServiceOptions struct {
	Logger       *slog.Logger
	Metrics      *observability.Metrics
	Cache        *activity.Cache
	Spool        activity.Spool
	Publisher    activity.Publisher
	DefaultLimit int
	MaxLimit     int
}

// Services is the assembled domain layer.
type Services struct {
	Guard      *rbac.Guard
	Recorder   *activity.Recorder
	Feed       *activity.Feed
	Projects   *projects.Service
	Team       *projects.TeamService
	Submittals *submittals.Service
	RFIs       *rfis.Service
	PunchList  *punchlist.Service
	Milestones *milestones.Service
	DailyLogs  *dailylogs.Service
}

// NewServices wires every service against stores.
func NewServices(stores Stores, opts ServiceOptions) *Services {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var observer rbac.DecisionObserver
	var failures activity.FailureObserver
	if opts.Metrics != nil {
		observer = opts.Metrics
		failures = opts.Metrics
	}

	guard := rbac.NewGuard(rbac.NewEvaluator(stores.Members), observer, logger)
	recorder := activity.NewRecorder(stores.Activity, activity.RecorderOptions{
		Cache:     opts.Cache,
		Spool:     opts.Spool,
		Publisher: opts.Publisher,
		Metrics:   failures,
		Logger:    logger,
	})
	return &Services{
		Guard:      guard,
		Recorder:   recorder,
		Feed:       activity.NewFeed(stores.Activity, guard, opts.Cache, opts.DefaultLimit, opts.MaxLimit),
		Projects:   projects.NewService(stores.Projects, guard, recorder, logger),
		Team:       projects.NewTeamService(stores.Members, guard, recorder, logger),
		Submittals: submittals.NewService(stores.Submittals, stores.Sequencer, guard, recorder, logger),
		RFIs:       rfis.NewService(stores.RFIs, stores.Sequencer, guard, recorder, logger),
		PunchList:  punchlist.NewService(stores.PunchList, stores.Sequencer, guard, recorder, logger),
		Milestones: milestones.NewService(stores.Milestones, guard, recorder, logger),
		DailyLogs:  dailylogs.NewService(stores.DailyLogs, guard, recorder, logger),
	}
}
