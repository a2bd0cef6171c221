package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/joestump/mediashare/internal/authz"
	"github.com/joestump/mediashare/internal/metrics"
	"github.com/joestump/mediashare/internal/store"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Middleware attaches resolved identities to request contexts.
type Middleware struct {
	resolver *Resolver
}

func NewMiddleware(r *Resolver) *Middleware {
	return &Middleware{resolver: r}
}

// Optional resolves the caller when possible and otherwise lets the request
// through anonymously. A bad credential is treated the same as none.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.resolver.Resolve(r)
		if err != nil {
			if !isCredentialError(err) {
				log.Printf("auth: resolve: %v", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Require rejects the request with 401 unless it carries a valid credential
// for an active user.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.resolver.Resolve(r)
		if err != nil {
			var ce *CredentialError
			if errors.As(err, &ce) {
				metrics.AuthFailuresTotal.WithLabelValues(ce.Reason).Inc()
			} else {
				log.Printf("auth: resolve: %v", err)
			}
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireAdmin returns 403 unless the resolved principal is an admin.
// Must be used after Require.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := PrincipalFromContext(r.Context())
		if p == nil {
			writeUnauthorized(w)
			return
		}
		if !p.IsAdmin {
			writeJSONError(w, http.StatusForbidden, "admin access required", "FORBIDDEN")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity stores id on ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext returns the resolved identity, or nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}

// PrincipalFromContext returns the resolved principal, or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *authz.Principal {
	if id := IdentityFromContext(ctx); id != nil {
		return &id.Principal
	}
	return nil
}

// UserFromContext returns the authenticated user record, or nil.
func UserFromContext(ctx context.Context) *store.User {
	if id := IdentityFromContext(ctx); id != nil {
		return id.User
	}
	return nil
}

func isCredentialError(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "authentication required", "UNAUTHORIZED")
}

func writeJSONError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
