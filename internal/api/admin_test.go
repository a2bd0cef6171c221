package api_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/joestump/mediashare/internal/api"
	"github.com/joestump/mediashare/internal/store"
)

func TestAdmin_Forbidden_NonAdmin(t *testing.T) {
	env := newTestEnv(t)
	user := seedUser(t, env, "alice@example.com", false)
	token := seedToken(t, env, user.ID)

	for _, path := range []string{"/admin/users", "/admin/stats", "/admin/posts"} {
		rec := do(t, env, "GET", path, token, "")
		if rec.Code != http.StatusForbidden {
			t.Errorf("GET %s status = %d, want %d; body: %s", path, rec.Code, http.StatusForbidden, rec.Body.String())
		}
	}
}

func TestAdmin_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)
	rec := do(t, env, "GET", "/admin/users", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAdmin_ListUsers_OK_Admin(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	token := seedToken(t, env, admin.ID)

	// Seed a second user so there are at least 2.
	seedUser(t, env, "other@example.com", false)

	rec := do(t, env, "GET", "/admin/users", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	resp := decode[api.UserListResponse](t, rec)
	if resp.Total != 2 || len(resp.Users) != 2 {
		t.Errorf("total = %d, len(users) = %d, want 2", resp.Total, len(resp.Users))
	}

	rec = do(t, env, "GET", "/admin/users?search=OTHER", token, "")
	resp = decode[api.UserListResponse](t, rec)
	if len(resp.Users) != 1 || resp.Users[0].Email != "other@example.com" {
		t.Errorf("search returned %+v", resp.Users)
	}
}

func TestAdmin_UpdateRole_OK(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	token := seedToken(t, env, admin.ID)
	target := seedUser(t, env, "target@example.com", false)

	rec := do(t, env, "PUT", "/admin/users/"+target.ID+"/role", token, `{"role":"admin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if resp := decode[api.UserResponse](t, rec); resp.Role != "admin" {
		t.Errorf("role = %q, want %q", resp.Role, "admin")
	}
}

func TestAdmin_UpdateRole_InvalidRole(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	token := seedToken(t, env, admin.ID)
	target := seedUser(t, env, "target@example.com", false)

	rec := do(t, env, "PUT", "/admin/users/"+target.ID+"/role", token, `{"role":"superuser"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d; body: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}
}

func TestAdmin_UpdateRole_NotFound(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	token := seedToken(t, env, admin.ID)

	rec := do(t, env, "PUT", "/admin/users/nope/role", token, `{"role":"admin"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAdmin_CannotTargetSelf(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	token := seedToken(t, env, admin.ID)

	cases := []struct {
		method, path, body string
	}{
		{"PUT", "/admin/users/" + admin.ID + "/role", `{"role":"user"}`},
		{"PUT", "/admin/users/" + admin.ID + "/status", `{"status":"suspended"}`},
		{"DELETE", "/admin/users/" + admin.ID, ""},
	}
	for _, tc := range cases {
		rec := do(t, env, tc.method, tc.path, token, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %s status = %d, want %d", tc.method, tc.path, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestAdmin_SuspendBlocksAccess(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	adminToken := seedToken(t, env, admin.ID)
	target := seedUser(t, env, "target@example.com", false)
	targetToken := seedToken(t, env, target.ID)

	rec := do(t, env, "PUT", "/admin/users/"+target.ID+"/status", adminToken, `{"status":"suspended"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if resp := decode[api.UserResponse](t, rec); resp.Status != "suspended" {
		t.Errorf("status = %q, want suspended", resp.Status)
	}

	rec = do(t, env, "GET", "/auth/me", targetToken, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("suspended /auth/me status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAdmin_DeleteUser_Cascade(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	token := seedToken(t, env, admin.ID)
	target := seedUser(t, env, "target@example.com", false)
	post := seedPost(t, env, target.ID, "sunset")

	rec := do(t, env, "DELETE", "/admin/users/"+target.ID, token, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if _, err := env.Users.GetByID(context.Background(), target.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user still present: %v", err)
	}
	if _, err := env.Posts.GetByID(context.Background(), post.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("post still present: %v", err)
	}
}

func TestAdmin_PostModeration(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	adminToken := seedToken(t, env, admin.ID)
	owner := seedUser(t, env, "owner@example.com", false)
	ownerToken := seedToken(t, env, owner.ID)
	post := seedPost(t, env, owner.ID, "sunset")

	// Owners cannot change visibility.
	rec := do(t, env, "PUT", "/admin/posts/"+post.ID+"/visibility", ownerToken, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("owner toggle status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	rec = do(t, env, "PUT", "/admin/posts/"+post.ID+"/visibility", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if resp := decode[api.PostResponse](t, rec); resp.IsPublic {
		t.Error("post still public after toggle")
	}

	// Hidden from anonymous callers, listed for admins.
	rec = do(t, env, "GET", "/posts/"+post.ID, "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("anonymous get hidden post status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	rec = do(t, env, "GET", "/admin/posts", adminToken, "")
	if resp := decode[api.PostListResponse](t, rec); resp.Total != 1 {
		t.Errorf("admin list total = %d, want 1", resp.Total)
	}

	rec = do(t, env, "DELETE", "/admin/posts/"+post.ID, adminToken, "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestAdmin_Stats(t *testing.T) {
	env := newTestEnv(t)
	admin := seedUser(t, env, "admin@example.com", true)
	token := seedToken(t, env, admin.ID)
	seedPost(t, env, admin.ID, "one")
	seedPost(t, env, admin.ID, "two")

	rec := do(t, env, "GET", "/admin/stats", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	st := decode[store.DashboardStats](t, rec)
	if st.TotalUsers != 1 || st.TotalPosts != 2 || st.PublicPosts != 2 {
		t.Errorf("stats = %+v", st)
	}
}
