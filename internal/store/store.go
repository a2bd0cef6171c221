// Package store holds the sqlx-backed persistence for users, posts,
// comments, tags and their like/view sets. No handler queries the database
// directly; all access goes through the stores in this package.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when an account with the same email exists.
	ErrEmailTaken = errors.New("email is already registered")
)

// PostStoreIface exposes the post operations the content services rely on.
type PostStoreIface interface {
	Create(ctx context.Context, p NewPost) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	GetSummary(ctx context.Context, id string) (*PostSummary, error)
	List(ctx context.Context, f PostFilter) ([]*PostSummary, int, error)
	Update(ctx context.Context, id string, u PostUpdate) (*Post, error)
	SetVisibility(ctx context.Context, id string, public bool) (*Post, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, postID, userID string) (bool, int, error)
	Likers(ctx context.Context, postID string) ([]string, error)
	RecordView(ctx context.Context, postID, viewerKey string) (bool, int64, error)
	ListTags(ctx context.Context, postID string) ([]string, error)
}

// CommentStoreIface exposes the comment operations the content services rely on.
type CommentStoreIface interface {
	Create(ctx context.Context, postID, authorID, content string) (*Comment, error)
	GetByID(ctx context.Context, id string) (*Comment, error)
	GetView(ctx context.Context, id string) (*CommentView, error)
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]*CommentView, int, error)
	IDsByPost(ctx context.Context, postID string) ([]string, error)
	Update(ctx context.Context, id, content string) (*Comment, error)
	Delete(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, commentID, userID string) (bool, int, error)
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
// Works across SQLite, PostgreSQL, and MySQL.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
