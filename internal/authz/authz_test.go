package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joestump/mediashare/internal/authz"
)

var (
	u1    = &authz.Principal{ID: "u1", Email: "u1@example.com"}
	u2    = &authz.Principal{ID: "u2", Email: "u2@example.com"}
	u3    = &authz.Principal{ID: "u3", Email: "u3@example.com"}
	admin = &authz.Principal{ID: "adm", Email: "admin@example.com", IsAdmin: true}
)

func TestPostMutation(t *testing.T) {
	post := authz.PostResource("u1")

	tests := []struct {
		name   string
		p      *authz.Principal
		action authz.Action
		want   bool
	}{
		{"owner updates", u1, authz.ActionUpdate, true},
		{"owner deletes", u1, authz.ActionDelete, true},
		{"stranger cannot update", u2, authz.ActionUpdate, false},
		{"stranger cannot delete", u2, authz.ActionDelete, false},
		{"admin updates", admin, authz.ActionUpdate, true},
		{"admin deletes", admin, authz.ActionDelete, true},
		{"owner likes own post", u1, authz.ActionLike, true},
		{"stranger likes", u2, authz.ActionLike, true},
		{"owner cannot toggle visibility", u1, authz.ActionToggleVisibility, false},
		{"admin toggles visibility", admin, authz.ActionToggleVisibility, true},
		{"nil principal", nil, authz.ActionLike, false},
		{"empty principal", &authz.Principal{}, authz.ActionDelete, false},
		{"unknown action", u1, authz.Action("archive"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.CanMutate(tt.p, post, tt.action))
		})
	}
}

func TestCommentMutation(t *testing.T) {
	// u2 commented on u1's post.
	comment := authz.CommentResource("u2", "u1")

	tests := []struct {
		name   string
		p      *authz.Principal
		action authz.Action
		want   bool
	}{
		{"author updates", u2, authz.ActionUpdate, true},
		{"author deletes", u2, authz.ActionDelete, true},
		{"post owner deletes", u1, authz.ActionDelete, true},
		{"post owner cannot update", u1, authz.ActionUpdate, false},
		{"third user cannot delete", u3, authz.ActionDelete, false},
		{"third user cannot update", u3, authz.ActionUpdate, false},
		{"admin updates", admin, authz.ActionUpdate, true},
		{"admin deletes", admin, authz.ActionDelete, true},
		{"anyone likes", u3, authz.ActionLike, true},
		{"visibility does not apply", admin, authz.ActionToggleVisibility, false},
		{"nil principal", nil, authz.ActionDelete, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.CanMutate(tt.p, comment, tt.action))
		})
	}
}

func TestCommentUpdateNarrowerThanDelete(t *testing.T) {
	principals := []*authz.Principal{u1, u2, u3, admin}
	owners := []string{"u1", "u2", "u3", "adm"}

	for _, p := range principals {
		for _, author := range owners {
			for _, postOwner := range owners {
				r := authz.CommentResource(author, postOwner)
				if authz.CanMutate(p, r, authz.ActionUpdate) && !authz.CanMutate(p, r, authz.ActionDelete) {
					t.Errorf("%s may update but not delete comment by %s on post of %s", p.ID, author, postOwner)
				}
			}
		}
	}

	// The post owner is the witness that delete is strictly broader.
	r := authz.CommentResource("u2", "u1")
	assert.True(t, authz.CanMutate(u1, r, authz.ActionDelete))
	assert.False(t, authz.CanMutate(u1, r, authz.ActionUpdate))
}

func TestAdminRequiresFlag(t *testing.T) {
	// An email that looks privileged grants nothing by itself.
	impostor := &authz.Principal{ID: "x", Email: "admin@example.com"}
	assert.False(t, authz.CanMutate(impostor, authz.PostResource("u1"), authz.ActionDelete))
	assert.False(t, authz.CanMutate(impostor, authz.CommentResource("u2", "u1"), authz.ActionDelete))
}

func TestCommentWithoutParentOwner(t *testing.T) {
	r := authz.CommentResource("u2", "")
	assert.False(t, authz.CanMutate(&authz.Principal{ID: "u3"}, r, authz.ActionDelete))
	assert.True(t, authz.CanMutate(u2, r, authz.ActionDelete))
}

func TestCanView(t *testing.T) {
	assert.True(t, authz.CanView(nil, "u1", true))
	assert.False(t, authz.CanView(nil, "u1", false))
	assert.True(t, authz.CanView(u1, "u1", false))
	assert.False(t, authz.CanView(u2, "u1", false))
	assert.True(t, authz.CanView(admin, "u1", false))
}
