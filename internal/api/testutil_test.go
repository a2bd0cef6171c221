package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/joestump/mediashare/internal/api"
	"github.com/joestump/mediashare/internal/auth"
	"github.com/joestump/mediashare/internal/content"
	"github.com/joestump/mediashare/internal/store"
	"github.com/joestump/mediashare/internal/testutil"
)

const testSecret = "test-secret-that-is-at-least-32-bytes-long"

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router      http.Handler
	Users       *store.UserStore
	Posts       *store.PostStore
	Comments    *store.CommentStore
	Issuer      *auth.TokenIssuer
	Revocations *auth.SQLRevocationStore
}

// newTestEnv creates an in-memory SQLite test database, runs migrations,
// and wires up the full API router with real stores.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	users := store.NewUserStore(db)
	tags := store.NewTagStore(db)
	posts := store.NewPostStore(db, tags)
	comments := store.NewCommentStore(db)
	revocations := auth.NewSQLRevocationStore(db)
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	sessions := scs.New()

	resolver := auth.NewResolver(issuer, revocations, sessions, users)

	deps := api.Deps{
		Auth:         auth.NewMiddleware(resolver),
		Sessions:     sessions,
		Issuer:       issuer,
		Revocations:  revocations,
		Users:        users,
		Tags:         tags,
		Stats:        store.NewStatsStore(db),
		Posts:        content.NewPostService(posts, comments),
		Comments:     content.NewCommentService(posts, comments),
		IsAdminEmail: func(email string) bool { return email == "boss@example.com" },
	}

	return &testEnv{
		Router:      api.NewAPIRouter(deps),
		Users:       users,
		Posts:       posts,
		Comments:    comments,
		Issuer:      issuer,
		Revocations: revocations,
	}
}

// seedUser creates a user and returns the user record.
func seedUser(t *testing.T, env *testEnv, email string, admin bool) *store.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := env.Users.Create(context.Background(), store.NewUser{
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		IsAdmin:      admin,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// seedToken issues a bearer token for a user.
func seedToken(t *testing.T, env *testEnv, userID string) string {
	t.Helper()
	token, _, err := env.Issuer.Issue(userID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// seedPost creates a public image post owned by ownerID.
func seedPost(t *testing.T, env *testEnv, ownerID, title string, tags ...string) *store.Post {
	t.Helper()
	p, err := env.Posts.Create(context.Background(), store.NewPost{
		OwnerID:   ownerID,
		Title:     title,
		MediaType: store.MediaImage,
		MediaURL:  "https://cdn.example.com/" + title + ".png",
		Tags:      tags,
	})
	if err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}

// authRequest adds a Bearer token to the request.
func authRequest(r *http.Request, token string) *http.Request {
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// do sends a request through the router. An empty token sends it anonymously.
func do(t *testing.T, env *testEnv, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		authRequest(req, token)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v; body: %s", err, rec.Body.String())
	}
	return v
}
