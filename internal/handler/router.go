package handler

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/joestump/mediashare/docs/swagger"
	"github.com/joestump/mediashare/internal/api"
	"github.com/joestump/mediashare/internal/auth"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	// RequestTimeout bounds every request; zero disables the limit.
	RequestTimeout time.Duration
	Sessions       *scs.SessionManager
	// OIDC is nil when single sign-on is not configured.
	OIDC *auth.Handlers
	DB   Pinger
	API  api.Deps
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if deps.RequestTimeout > 0 {
		r.Use(middleware.Timeout(deps.RequestTimeout))
	}

	health := NewHealthHandler(deps.DB)
	r.Get("/healthz", health.Show)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI, no auth required.
	r.Get("/api/docs/*", httpSwagger.WrapHandler)

	if deps.OIDC != nil {
		r.Group(func(r chi.Router) {
			if deps.Sessions != nil {
				r.Use(deps.Sessions.LoadAndSave)
			}
			r.Get("/auth/oidc/login", deps.OIDC.Login)
			r.Get("/auth/oidc/callback", deps.OIDC.Callback)
		})
	}

	if deps.API.Sessions == nil {
		deps.API.Sessions = deps.Sessions
	}
	r.Mount("/api/v1", api.NewAPIRouter(deps.API))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"route not found","code":"NOT_FOUND"}`))
	})

	return r
}
