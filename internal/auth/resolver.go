package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/joestump/mediashare/internal/authz"
	"github.com/joestump/mediashare/internal/store"
)

// UserLookup loads the canonical user record for a principal.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*store.User, error)
}

// Identity is the outcome of a successful resolution.
type Identity struct {
	Principal authz.Principal
	User      *store.User
	// Claims is set when the request authenticated with a bearer token.
	Claims *jwt.RegisteredClaims
}

// Resolver turns a request's credential into an Identity. A bearer token in
// the Authorization header takes precedence over the session cookie.
type Resolver struct {
	tokens   *TokenIssuer
	revoked  RevocationStore
	sessions *scs.SessionManager
	users    UserLookup
}

// NewResolver creates a Resolver. sessions may be nil, in which case only
// bearer tokens are accepted. Otherwise requests must pass through
// sessions.LoadAndSave first.
func NewResolver(tokens *TokenIssuer, revoked RevocationStore, sessions *scs.SessionManager, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, revoked: revoked, sessions: sessions, users: users}
}

// Resolve authenticates r. It never mutates state.
func (res *Resolver) Resolve(r *http.Request) (*Identity, error) {
	ctx := r.Context()

	if header := r.Header.Get("Authorization"); header != "" {
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return nil, &CredentialError{Reason: ReasonMalformed, Err: errors.New("authorization header is not a bearer token")}
		}
		claims, err := res.tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		revoked, err := res.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, &CredentialError{Reason: ReasonRevoked}
		}
		id, err := res.load(ctx, claims.Subject)
		if err != nil {
			return nil, err
		}
		id.Claims = claims
		return id, nil
	}

	if res.sessions != nil {
		if userID := res.sessions.GetString(ctx, SessionUserIDKey); userID != "" {
			return res.load(ctx, userID)
		}
	}
	return nil, ErrNoCredential
}

func (res *Resolver) load(ctx context.Context, userID string) (*Identity, error) {
	u, err := res.users.GetByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, &CredentialError{Reason: ReasonUnknownUser, Err: err}
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, &CredentialError{Reason: ReasonInactive}
	}
	return &Identity{
		Principal: authz.Principal{ID: u.ID, Email: u.Email, IsAdmin: u.IsAdmin},
		User:      u,
	}, nil
}
