package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/railyard/railyard/internal/activity"
	"github.com/railyard/railyard/internal/dailylogs"
	"github.com/railyard/railyard/internal/milestones"
	"github.com/railyard/railyard/internal/observability"
	"github.com/railyard/railyard/internal/platform/httpx"
	"github.com/railyard/railyard/internal/projects"
	"github.com/railyard/railyard/internal/punchlist"
	"github.com/railyard/railyard/internal/rbac"
	"github.com/railyard/railyard/internal/rfis"
	"github.com/railyard/railyard/internal/submittals"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger   *slog.Logger
	Config   *Config
	Sessions rbac.SessionResolver
	Services *Services
	Metrics  *observability.Metrics

	// Jobs serves queue health under /jobs when set.
	Jobs routeMounter
}

type routeMounter interface {
	MountRoutes(r chi.Router)
}

// NewRouter constructs the chi.Router with Railyard defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	identity := rbac.Middleware{Sessions: params.Sessions, Logger: logger}

	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   logger,
		Config:   params.Config,
		Identity: identity,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.Jobs != nil {
		r.Route("/jobs", params.Jobs.MountRoutes)
	}

	svc := params.Services
	projectHandler := projects.NewHandler(svc.Projects, svc.Team)
	scoped := []routeMounter{
		projectHandler,
		rbac.NewHandler(svc.Guard),
		submittals.NewHandler(svc.Submittals),
		rfis.NewHandler(svc.RFIs),
		punchlist.NewHandler(svc.PunchList),
		milestones.NewHandler(svc.Milestones),
		dailylogs.NewHandler(svc.DailyLogs),
		activity.NewHandler(svc.Feed),
	}

	perMinute := 60
	if params.Config != nil && params.Config.RateLimitPerMinute > 0 {
		perMinute = max(1, params.Config.RateLimitPerMinute/2)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(identity.RequireActor)
		r.Use(MutationLimit(perMinute))
		r.Route("/projects", func(r chi.Router) {
			projectHandler.MountCollection(r)
			r.Route("/{projectID}", func(r chi.Router) {
				for _, h := range scoped {
					h.MountRoutes(r)
				}
			})
		})
	})

	return r
}
