package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Comment struct {
	ID        string    `db:"id"`
	PostID    string    `db:"post_id"`
	AuthorID  string    `db:"author_id"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CommentView is a comment joined with its author's name and like count.
type CommentView struct {
	Comment
	AuthorName string `db:"author_name"`
	LikeCount  int    `db:"like_count"`
}

type CommentStore struct {
	db *sqlx.DB
}

func NewCommentStore(db *sqlx.DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) q(query string) string { return s.db.Rebind(query) }

const commentViewSelect = `
	SELECT c.*, COALESCE(u.name, '') AS author_name,
		(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = c.id) AS like_count
	FROM comments c
	LEFT JOIN users u ON u.id = c.author_id`

// Create adds a comment to postID. Returns ErrNotFound if the post does not exist.
func (s *CommentStore) Create(ctx context.Context, postID, authorID, content string) (*Comment, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var n int
	if err := tx.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM posts WHERE id = ?`), postID); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO comments (id, post_id, author_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), id, postID, authorID, content, now, now)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &Comment{ID: id, PostID: postID, AuthorID: authorID, Content: content, CreatedAt: now, UpdatedAt: now}, nil
}

// GetByID returns the comment matching id, or ErrNotFound.
func (s *CommentStore) GetByID(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	err := s.db.GetContext(ctx, &c, s.q(`SELECT * FROM comments WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetView returns the comment with author name and like count, or ErrNotFound.
func (s *CommentStore) GetView(ctx context.Context, id string) (*CommentView, error) {
	var c CommentView
	err := s.db.GetContext(ctx, &c, s.q(commentViewSelect+` WHERE c.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByPost returns a page of a post's comments, newest first, and the total.
func (s *CommentStore) ListByPost(ctx context.Context, postID string, limit, offset int) ([]*CommentView, int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, s.q(`SELECT COUNT(*) FROM comments WHERE post_id = ?`), postID); err != nil {
		return nil, 0, err
	}
	comments := []*CommentView{}
	err := s.db.SelectContext(ctx, &comments, s.q(commentViewSelect+`
		WHERE c.post_id = ?
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT ? OFFSET ?`), postID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// IDsByPost returns the IDs of a post's comments in creation order.
func (s *CommentStore) IDsByPost(ctx context.Context, postID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, s.q(`SELECT id FROM comments WHERE post_id = ? ORDER BY created_at ASC, id ASC`), postID)
	return ids, err
}

// Update replaces the comment's content and returns the updated comment.
func (s *CommentStore) Update(ctx context.Context, id, content string) (*Comment, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`),
		content, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the comment and its likes.
func (s *CommentStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM comment_likes WHERE comment_id = ?`), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM comments WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

// ToggleLike flips userID's like on the comment. Returns the new state and like count.
func (s *CommentStore) ToggleLike(ctx context.Context, commentID, userID string) (bool, int, error) {
	return commentLikes.toggle(ctx, s.db, commentID, userID)
}
