package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/content"
	"github.com/joestump/mediashare/internal/metrics"
	"github.com/joestump/mediashare/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Auth        *auth.Middleware
	Sessions    *scs.SessionManager
	Issuer      *auth.TokenIssuer
	Revocations auth.RevocationStore
	Users       *store.UserStore
	Tags        *store.TagStore
	Stats       *store.StatsStore
	Posts       *content.PostService
	Comments    *content.CommentService
	// IsAdminEmail reports whether an address is on the admin allow-list.
	IsAdminEmail func(email string) bool
}

// NewAPIRouter creates the chi sub-router mounted at /api/v1.
// All routes return application/json.
func NewAPIRouter(deps Deps) chi.Router {
	if deps.IsAdminEmail == nil {
		deps.IsAdminEmail = func(string) bool { return false }
	}

	r := chi.NewRouter()
	r.Use(jsonContentType)
	r.Use(instrument)
	if deps.Sessions != nil {
		r.Use(deps.Sessions.LoadAndSave)
	}

	registerAuthRoutes(r, deps)
	registerPostRoutes(r, deps)
	registerCommentRoutes(r, deps)
	registerTagRoutes(r, deps.Tags)
	registerAdminRoutes(r, deps)

	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// instrument records request latency by matched route pattern.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RequestDuration.WithLabelValues(route, strconv.Itoa(status/100)+"xx").Observe(time.Since(start).Seconds())
	})
}
