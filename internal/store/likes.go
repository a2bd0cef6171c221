package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// likeSet names a (resource, user) membership table.
type likeSet struct {
	table  string
	keyCol string
}

var (
	postLikes    = likeSet{table: "post_likes", keyCol: "post_id"}
	commentLikes = likeSet{table: "comment_likes", keyCol: "comment_id"}
)

// toggle flips userID's membership in the set for id and returns the new
// state and the resulting count. The delete-else-insert runs in one
// transaction so a concurrent duplicate insert surfaces as a unique
// violation, which is reported as "liked".
func (ls likeSet) toggle(ctx context.Context, db *sqlx.DB, id, userID string) (bool, int, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM `+ls.table+` WHERE `+ls.keyCol+` = ? AND user_id = ?`), id, userID)
	if err != nil {
		return false, 0, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	liked := removed == 0
	if liked {
		_, err = tx.ExecContext(ctx, tx.Rebind(`INSERT INTO `+ls.table+` (`+ls.keyCol+`, user_id, created_at) VALUES (?, ?, ?)`), id, userID, time.Now().UTC())
		if isUniqueConstraintError(err) {
			_ = tx.Rollback()
			n, cerr := ls.count(ctx, db, id)
			return true, n, cerr
		}
		if err != nil {
			return false, 0, err
		}
	}

	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(`SELECT COUNT(*) FROM `+ls.table+` WHERE `+ls.keyCol+` = ?`), id); err != nil {
		return false, 0, err
	}
	if err := tx.Commit(); err != nil {
		return false, 0, err
	}
	return liked, n, nil
}

func (ls likeSet) count(ctx context.Context, db *sqlx.DB, id string) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, db.Rebind(`SELECT COUNT(*) FROM `+ls.table+` WHERE `+ls.keyCol+` = ?`), id)
	return n, err
}

// members returns the user IDs in the set for id, earliest first.
func (ls likeSet) members(ctx context.Context, db *sqlx.DB, id string) ([]string, error) {
	ids := []string{}
	err := db.SelectContext(ctx, &ids, db.Rebind(`SELECT user_id FROM `+ls.table+` WHERE `+ls.keyCol+` = ? ORDER BY created_at ASC, user_id ASC`), id)
	return ids, err
}
