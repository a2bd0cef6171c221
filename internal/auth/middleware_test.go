package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/store"
	"github.com/joestump/mediashare/internal/testutil"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type env struct {
	users    *store.UserStore
	issuer   *auth.TokenIssuer
	revoked  *auth.SQLRevocationStore
	sessions *scs.SessionManager
	mw       *auth.Middleware
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewTestDB(t)
	e := &env{
		users:    store.NewUserStore(db),
		issuer:   auth.NewTokenIssuer(testSecret, time.Hour),
		revoked:  auth.NewSQLRevocationStore(db),
		sessions: scs.New(),
	}
	e.mw = auth.NewMiddleware(auth.NewResolver(e.issuer, e.revoked, e.sessions, e.users))
	return e
}

func (e *env) seedUser(t *testing.T, email string) *store.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), store.NewUser{Email: email, Name: email})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func (e *env) token(t *testing.T, userID string) string {
	t.Helper()
	raw, _, err := e.issuer.Issue(userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return raw
}

// principalHandler echoes the resolved principal ID, or "anonymous".
func principalHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFromContext(r.Context())
		if p == nil {
			w.Write([]byte("anonymous"))
			return
		}
		w.Write([]byte(p.ID))
	})
}

func doRequest(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", "/posts", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequire(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, "alice@example.com")
	suspended := e.seedUser(t, "bob@example.com")
	if _, err := e.users.SetActive(context.Background(), suspended.ID, false); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	revokedRaw, revokedClaims, err := e.issuer.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := e.revoked.Revoke(context.Background(), revokedClaims.ID, u.ID, revokedClaims.ExpiresAt.Time); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	h := e.sessions.LoadAndSave(e.mw.Require(principalHandler()))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + e.token(t, u.ID), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"invalid token", "Bearer nope", http.StatusUnauthorized},
		{"revoked token", "Bearer " + revokedRaw, http.StatusUnauthorized},
		{"suspended user", "Bearer " + e.token(t, suspended.ID), http.StatusUnauthorized},
		{"deleted user", "Bearer " + e.token(t, "ghost"), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, tt.header)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d; body: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status == http.StatusOK && rec.Body.String() != u.ID {
				t.Errorf("principal = %q, want %q", rec.Body.String(), u.ID)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, "alice@example.com")
	h := e.sessions.LoadAndSave(e.mw.Optional(principalHandler()))

	if rec := doRequest(h, ""); rec.Body.String() != "anonymous" {
		t.Errorf("no credential: body = %q, want anonymous", rec.Body.String())
	}
	if rec := doRequest(h, "Bearer garbage"); rec.Code != http.StatusOK || rec.Body.String() != "anonymous" {
		t.Errorf("bad credential: status %d body %q, want 200 anonymous", rec.Code, rec.Body.String())
	}
	if rec := doRequest(h, "Bearer "+e.token(t, u.ID)); rec.Body.String() != u.ID {
		t.Errorf("valid credential: body = %q, want %q", rec.Body.String(), u.ID)
	}
}

func TestRequireAdmin(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, "alice@example.com")
	admin := e.seedUser(t, "root@example.com")
	if _, err := e.users.SetAdmin(context.Background(), admin.ID, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}
	h := e.sessions.LoadAndSave(e.mw.Require(auth.RequireAdmin(principalHandler())))

	if rec := doRequest(h, "Bearer "+e.token(t, u.ID)); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", rec.Code)
	}
	if rec := doRequest(h, "Bearer "+e.token(t, admin.ID)); rec.Code != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", rec.Code)
	}
}

func TestSessionCredential(t *testing.T) {
	e := newEnv(t)
	u := e.seedUser(t, "alice@example.com")

	login := e.sessions.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		e.sessions.Put(r.Context(), auth.SessionUserIDKey, u.ID)
	}))
	rec := httptest.NewRecorder()
	login.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/login", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}

	h := e.sessions.LoadAndSave(e.mw.Require(principalHandler()))
	req := httptest.NewRequest("GET", "/auth/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != u.ID {
		t.Errorf("principal = %q, want %q", rec.Body.String(), u.ID)
	}
}

func TestEnsureAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.seedUser(t, "alice@example.com")

	got, err := auth.EnsureAdmin(ctx, e.users, u, false)
	if err != nil || got.IsAdmin {
		t.Fatalf("not allow-listed: admin=%v err=%v, want false/nil", got.IsAdmin, err)
	}
	got, err = auth.EnsureAdmin(ctx, e.users, u, true)
	if err != nil || !got.IsAdmin {
		t.Fatalf("allow-listed: admin=%v err=%v, want true/nil", got.IsAdmin, err)
	}
}
