package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Media types accepted for a post.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

type Post struct {
	ID           string    `db:"id"`
	OwnerID      string    `db:"owner_id"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	MediaType    string    `db:"media_type"`
	MediaURL     string    `db:"media_url"`
	ThumbnailURL string    `db:"thumbnail_url"`
	IsPublic     bool      `db:"is_public"`
	ViewCount    int64     `db:"view_count"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// PostSummary is a post joined with its owner's name and aggregate counts.
type PostSummary struct {
	Post
	OwnerName    string `db:"owner_name"`
	LikeCount    int    `db:"like_count"`
	CommentCount int    `db:"comment_count"`
}

type NewPost struct {
	OwnerID      string
	Title        string
	Description  string
	MediaType    string
	MediaURL     string
	ThumbnailURL string
	Tags         []string
}

// PostUpdate carries owner-editable fields. A nil Tags leaves tags unchanged.
type PostUpdate struct {
	Title        string
	Description  string
	ThumbnailURL string
	Tags         []string
}

// PostFilter narrows List. Non-public posts are only included when
// IncludeHidden is set or they belong to ViewerID.
type PostFilter struct {
	Search        string
	OwnerID       string
	TagSlug       string
	MediaType     string
	ViewerID      string
	IncludeHidden bool
	Limit         int
	Offset        int
}

type PostStore struct {
	db   *sqlx.DB
	tags *TagStore
}

func NewPostStore(db *sqlx.DB, tags *TagStore) *PostStore {
	return &PostStore{db: db, tags: tags}
}

func (s *PostStore) q(query string) string { return s.db.Rebind(query) }

const postSummarySelect = `
	SELECT p.*, COALESCE(u.name, '') AS owner_name,
		(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id) AS like_count,
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count
	FROM posts p
	LEFT JOIN users u ON u.id = p.owner_id`

// Create inserts a post and its tags in a single transaction.
func (s *PostStore) Create(ctx context.Context, np NewPost) (*Post, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO posts (id, owner_id, title, description, media_type, media_url, thumbnail_url, is_public, view_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`), id, np.OwnerID, np.Title, np.Description, np.MediaType, np.MediaURL, np.ThumbnailURL, true, now, now)
	if err != nil {
		return nil, err
	}
	if err := s.tags.setPostTagsTx(ctx, tx, id, np.Tags); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the post matching id, or ErrNotFound.
func (s *PostStore) GetByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	err := s.db.GetContext(ctx, &p, s.q(`SELECT * FROM posts WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSummary returns the post with owner name and counts, or ErrNotFound.
func (s *PostStore) GetSummary(ctx context.Context, id string) (*PostSummary, error) {
	var p PostSummary
	err := s.db.GetContext(ctx, &p, s.q(postSummarySelect+` WHERE p.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns a page of posts, newest first, and the total number of
// posts matching the filter.
func (s *PostStore) List(ctx context.Context, f PostFilter) ([]*PostSummary, int, error) {
	var conds []string
	var args []any

	if !f.IncludeHidden {
		if f.ViewerID != "" {
			conds = append(conds, `(p.is_public = ? OR p.owner_id = ?)`)
			args = append(args, true, f.ViewerID)
		} else {
			conds = append(conds, `p.is_public = ?`)
			args = append(args, true)
		}
	}
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		conds = append(conds, `(LOWER(p.title) LIKE ? OR LOWER(p.description) LIKE ?)`)
		args = append(args, pattern, pattern)
	}
	if f.OwnerID != "" {
		conds = append(conds, `p.owner_id = ?`)
		args = append(args, f.OwnerID)
	}
	if f.MediaType != "" {
		conds = append(conds, `p.media_type = ?`)
		args = append(args, f.MediaType)
	}
	if f.TagSlug != "" {
		conds = append(conds, `EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id AND t.slug = ?)`)
		args = append(args, f.TagSlug)
	}

	where := ""
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, ` AND `)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.q(`SELECT COUNT(*) FROM posts p`+where), args...); err != nil {
		return nil, 0, err
	}

	posts := []*PostSummary{}
	err := s.db.SelectContext(ctx, &posts, s.q(postSummarySelect+where+` ORDER BY p.created_at DESC, p.id DESC LIMIT ? OFFSET ?`),
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Update applies owner edits and returns the updated post.
func (s *PostStore) Update(ctx context.Context, id string, u PostUpdate) (*Post, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.q(`
		UPDATE posts SET title = ?, description = ?, thumbnail_url = ?, updated_at = ? WHERE id = ?
	`), u.Title, u.Description, u.ThumbnailURL, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	if u.Tags != nil {
		if err := s.tags.setPostTagsTx(ctx, tx, id, u.Tags); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// SetVisibility sets the public flag and returns the updated post.
func (s *PostStore) SetVisibility(ctx context.Context, id string, public bool) (*Post, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE posts SET is_public = ?, updated_at = ? WHERE id = ?`),
		public, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a post and everything hanging off it: comments, comment
// likes, post likes, view records and tag links.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	found, err := deletePostTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return tx.Commit()
}

func deletePostTx(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	stmts := []string{
		`DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)`,
		`DELETE FROM comments WHERE post_id = ?`,
		`DELETE FROM post_likes WHERE post_id = ?`,
		`DELETE FROM post_views WHERE post_id = ?`,
		`DELETE FROM post_tags WHERE post_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return false, err
		}
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ToggleLike flips userID's like on the post. Returns the new state and like count.
func (s *PostStore) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	return postLikes.toggle(ctx, s.db, postID, userID)
}

// Likers returns the IDs of users who like the post.
func (s *PostStore) Likers(ctx context.Context, postID string) ([]string, error) {
	return postLikes.members(ctx, s.db, postID)
}

// ListTags returns the tag names attached to the post.
func (s *PostStore) ListTags(ctx context.Context, postID string) ([]string, error) {
	return s.tags.ListForPost(ctx, postID)
}

// RecordView registers viewerKey against the post. The first view per key
// increments the counter; repeats leave it untouched. Returns whether the
// key had already been recorded and the post's view count afterwards.
func (s *PostStore) RecordView(ctx context.Context, postID, viewerKey string) (bool, int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.q(`INSERT INTO post_views (post_id, viewer_key, viewed_at) VALUES (?, ?, ?)`),
		postID, viewerKey, time.Now().UTC())
	if isUniqueConstraintError(err) {
		_ = tx.Rollback()
		views, err := s.viewCount(ctx, postID)
		return true, views, err
	}
	if err != nil {
		return false, 0, err
	}

	res, err := tx.ExecContext(ctx, s.q(`UPDATE posts SET view_count = view_count + 1 WHERE id = ?`), postID)
	if err != nil {
		return false, 0, err
	}
	if err := requireRow(res); err != nil {
		return false, 0, err
	}

	var views int64
	if err := tx.GetContext(ctx, &views, s.q(`SELECT view_count FROM posts WHERE id = ?`), postID); err != nil {
		return false, 0, err
	}
	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return false, views, nil
}

func (s *PostStore) viewCount(ctx context.Context, postID string) (int64, error) {
	var views int64
	err := s.db.GetContext(ctx, &views, s.q(`SELECT view_count FROM posts WHERE id = ?`), postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return views, err
}
