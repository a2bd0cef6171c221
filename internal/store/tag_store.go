package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joestump/mediashare/internal/slug"
)

// Tag represents a row in the tags table.
type Tag struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Slug      string    `db:"slug"`
	CreatedAt time.Time `db:"created_at"`
}

// TagWithCount is a tag plus the number of public posts carrying it.
type TagWithCount struct {
	Tag
	PostCount int `db:"post_count"`
}

type TagStore struct {
	db *sqlx.DB
}

func NewTagStore(db *sqlx.DB) *TagStore {
	return &TagStore{db: db}
}

func (s *TagStore) q(query string) string { return s.db.Rebind(query) }

// DeriveTagSlug derives the slug a tag name is stored under.
func DeriveTagSlug(name string) string { return slug.Derive(name) }

// upsertTx returns the tag for name, creating it inside tx when missing.
func (s *TagStore) upsertTx(ctx context.Context, tx *sqlx.Tx, name string) (*Tag, error) {
	key := DeriveTagSlug(name)

	var existing Tag
	err := tx.GetContext(ctx, &existing, s.q(`SELECT * FROM tags WHERE slug = ?`), key)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, s.q(`
		INSERT INTO tags (id, name, slug, created_at) VALUES (?, ?, ?, ?)
	`), id, strings.TrimSpace(name), key, now)
	if err != nil {
		return nil, err
	}
	return &Tag{ID: id, Name: strings.TrimSpace(name), Slug: key, CreatedAt: now}, nil
}

// setPostTagsTx replaces the tag set of a post. Names that derive to an
// empty slug are skipped and duplicate slugs collapse to one link.
func (s *TagStore) setPostTagsTx(ctx context.Context, tx *sqlx.Tx, postID string, names []string) error {
	if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM post_tags WHERE post_id = ?`), postID); err != nil {
		return err
	}
	seen := map[string]bool{}
	for _, name := range names {
		key := DeriveTagSlug(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		tag, err := s.upsertTx(ctx, tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)`), postID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}

// GetBySlug returns the tag stored under key, or ErrNotFound.
func (s *TagStore) GetBySlug(ctx context.Context, key string) (*Tag, error) {
	var t Tag
	err := s.db.GetContext(ctx, &t, s.q(`SELECT * FROM tags WHERE slug = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListForPost returns the tag names of a post ordered by name.
func (s *TagStore) ListForPost(ctx context.Context, postID string) ([]string, error) {
	names := []string{}
	err := s.db.SelectContext(ctx, &names, s.q(`
		SELECT t.name FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.name ASC
	`), postID)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// ListWithCounts returns tags that appear on at least one public post,
// most used first.
func (s *TagStore) ListWithCounts(ctx context.Context) ([]*TagWithCount, error) {
	tags := []*TagWithCount{}
	err := s.db.SelectContext(ctx, &tags, s.q(`
		SELECT t.id, t.name, t.slug, t.created_at, COUNT(p.id) AS post_count
		FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		JOIN posts p ON p.id = pt.post_id AND p.is_public = ?
		GROUP BY t.id, t.name, t.slug, t.created_at
		ORDER BY post_count DESC, t.name ASC
	`), true)
	if err != nil {
		return nil, err
	}
	return tags, nil
}
