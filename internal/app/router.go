package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chorale-app/chorale/internal/assignments"
	"github.com/chorale-app/chorale/internal/auth"
	"github.com/chorale-app/chorale/internal/observability"
	"github.com/chorale-app/chorale/internal/permissions"
	"github.com/chorale-app/chorale/internal/roles"
	"github.com/chorale-app/chorale/internal/songs"
	"github.com/chorale-app/chorale/internal/teams"
	"github.com/chorale-app/chorale/internal/users"
	"github.com/chorale-app/chorale/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	TokenStore         *auth.TokenStore
	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	SongsHandler       *songs.Handler
	TeamsHandler       *teams.Handler
	RolesHandler       *roles.Handler
	PermissionsHandler *permissions.Handler
	AssignmentsHandler *assignments.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Chorale defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(params.TokenStore))

		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		r.Route("/songs", params.SongsHandler.MountRoutes)
		r.Route("/teams", params.TeamsHandler.MountRoutes)
		r.Route("/roles", params.RolesHandler.MountRoutes)
		r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		r.Route("/assignments", params.AssignmentsHandler.MountRoutes)
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
