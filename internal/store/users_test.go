package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/joestump/mediashare/internal/store"
	"github.com/joestump/mediashare/internal/testutil"
)

type stores struct {
	users    *store.UserStore
	posts    *store.PostStore
	comments *store.CommentStore
	tags     *store.TagStore
	stats    *store.StatsStore
}

func newStores(t *testing.T) stores {
	t.Helper()
	db := testutil.NewTestDB(t)
	tags := store.NewTagStore(db)
	return stores{
		users:    store.NewUserStore(db),
		posts:    store.NewPostStore(db, tags),
		comments: store.NewCommentStore(db),
		tags:     tags,
		stats:    store.NewStatsStore(db),
	}
}

func mustUser(t *testing.T, us *store.UserStore, email string) *store.User {
	t.Helper()
	u, err := us.Create(context.Background(), store.NewUser{Email: email, Name: email, PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func TestUserCreate(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	u, err := s.users.Create(ctx, store.NewUser{Email: "  Alice@Example.com ", Name: "Alice", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", u.Email)
	}
	if u.Provider != store.ProviderLocal {
		t.Errorf("provider = %q, want %q", u.Provider, store.ProviderLocal)
	}
	if !u.IsActive || u.IsAdmin {
		t.Errorf("flags = active:%v admin:%v, want active non-admin", u.IsActive, u.IsAdmin)
	}

	_, err = s.users.Create(ctx, store.NewUser{Email: "ALICE@example.com", Name: "Other"})
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("duplicate email: err = %v, want ErrEmailTaken", err)
	}

	got, err := s.users.GetByEmail(ctx, "alice@EXAMPLE.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("GetByEmail id = %q, want %q", got.ID, u.ID)
	}
}

func TestUserGetNotFound(t *testing.T) {
	s := newStores(t)
	if _, err := s.users.GetByID(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUserUpsert(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()

	u, err := s.users.Upsert(ctx, "oidc", "sub1", "bob@example.com", "Bob", true)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if !u.IsAdmin {
		t.Error("new user should be admin when requested")
	}

	again, err := s.users.Upsert(ctx, "oidc", "sub1", "bob@example.com", "Robert", false)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != u.ID {
		t.Errorf("upsert created a second user: %q vs %q", again.ID, u.ID)
	}
	if again.Name != "Robert" {
		t.Errorf("name = %q, want refreshed to Robert", again.Name)
	}
	if !again.IsAdmin {
		t.Error("returning user lost admin flag")
	}
}

func TestUserSetFlags(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	u := mustUser(t, s.users, "carol@example.com")

	u, err := s.users.SetActive(ctx, u.ID, false)
	if err != nil {
		t.Fatalf("set active: %v", err)
	}
	if u.IsActive {
		t.Error("user still active after suspend")
	}
	u, err = s.users.SetAdmin(ctx, u.ID, true)
	if err != nil {
		t.Fatalf("set admin: %v", err)
	}
	if !u.IsAdmin {
		t.Error("user not admin after grant")
	}
	if _, err := s.users.SetActive(ctx, "missing", true); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing user: err = %v, want ErrNotFound", err)
	}
}

func TestUserList(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	mustUser(t, s.users, "dave@example.com")
	mustUser(t, s.users, "erin@example.com")
	mustUser(t, s.users, "frank@other.org")

	all, total, err := s.users.List(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("total=%d len=%d, want 3/3", total, len(all))
	}

	found, total, err := s.users.List(ctx, "EXAMPLE", 10, 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if total != 2 || len(found) != 2 {
		t.Errorf("search total=%d len=%d, want 2/2", total, len(found))
	}

	page, total, err := s.users.List(ctx, "", 1, 1)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if total != 3 || len(page) != 1 {
		t.Errorf("page total=%d len=%d, want 3/1", total, len(page))
	}
}

func TestUserDeleteCascades(t *testing.T) {
	s := newStores(t)
	ctx := context.Background()
	owner := mustUser(t, s.users, "owner@example.com")
	other := mustUser(t, s.users, "other@example.com")

	ownPost := mustPost(t, s.posts, owner.ID, "mine")
	otherPost := mustPost(t, s.posts, other.ID, "theirs")

	onOther, err := s.comments.Create(ctx, otherPost.ID, owner.ID, "nice")
	if err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, _, err := s.posts.ToggleLike(ctx, otherPost.ID, owner.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if _, err := s.comments.Create(ctx, ownPost.ID, other.ID, "hello"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	if err := s.users.Delete(ctx, owner.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := s.users.GetByID(ctx, owner.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("user still present: %v", err)
	}
	if _, err := s.posts.GetByID(ctx, ownPost.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("owned post still present: %v", err)
	}
	if _, err := s.comments.GetByID(ctx, onOther.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("comment on other post still present: %v", err)
	}
	likers, err := s.posts.Likers(ctx, otherPost.ID)
	if err != nil {
		t.Fatalf("likers: %v", err)
	}
	if len(likers) != 0 {
		t.Errorf("likers = %v, want empty", likers)
	}

	if err := s.users.Delete(ctx, owner.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}
