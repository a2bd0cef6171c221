package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// DashboardStats is the aggregate view served to administrators.
type DashboardStats struct {
	TotalUsers    int   `db:"total_users" json:"total_users"`
	ActiveUsers   int   `db:"active_users" json:"active_users"`
	NewUsers      int   `db:"new_users" json:"new_users_30d"`
	TotalPosts    int   `db:"total_posts" json:"total_posts"`
	PublicPosts   int   `db:"public_posts" json:"public_posts"`
	NewPosts      int   `db:"new_posts" json:"new_posts_30d"`
	TotalComments int   `db:"total_comments" json:"total_comments"`
	TotalViews    int64 `db:"total_views" json:"total_views"`
}

// StatsStore runs read-only aggregate queries.
type StatsStore struct {
	db *sqlx.DB
}

func NewStatsStore(db *sqlx.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) q(query string) string { return s.db.Rebind(query) }

// Dashboard returns site-wide totals. "New" counts cover the 30 days before now.
func (s *StatsStore) Dashboard(ctx context.Context, now time.Time) (*DashboardStats, error) {
	since := now.UTC().AddDate(0, 0, -30)
	var st DashboardStats
	err := s.db.GetContext(ctx, &st, s.q(`
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM users WHERE is_active = ?) AS active_users,
			(SELECT COUNT(*) FROM users WHERE created_at >= ?) AS new_users,
			(SELECT COUNT(*) FROM posts) AS total_posts,
			(SELECT COUNT(*) FROM posts WHERE is_public = ?) AS public_posts,
			(SELECT COUNT(*) FROM posts WHERE created_at >= ?) AS new_posts,
			(SELECT COUNT(*) FROM comments) AS total_comments,
			(SELECT COALESCE(SUM(view_count), 0) FROM posts) AS total_views
	`), true, since, true, since)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Totals returns the number of posts and users, for gauges.
func (s *StatsStore) Totals(ctx context.Context) (posts, users int, err error) {
	if err = s.db.GetContext(ctx, &posts, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, 0, err
	}
	if err = s.db.GetContext(ctx, &users, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, 0, err
	}
	return posts, users, nil
}
