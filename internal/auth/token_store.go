package auth

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// RevocationStore records bearer tokens invalidated before their expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// SQLRevocationStore is the sqlx-backed implementation of RevocationStore.
type SQLRevocationStore struct {
	db *sqlx.DB
}

func NewSQLRevocationStore(db *sqlx.DB) *SQLRevocationStore {
	return &SQLRevocationStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *SQLRevocationStore) q(query string) string { return s.db.Rebind(query) }

// Revoke marks the token identified by jti as unusable. Revoking the same
// token twice is not an error.
func (s *SQLRevocationStore) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`), jti); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at) VALUES (?, ?, ?, ?)
	`), jti, userID, expiresAt.UTC(), time.Now().UTC())
	return err
}

// IsRevoked reports whether jti has been revoked.
func (s *SQLRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`), jti)
	return n > 0, err
}

// PurgeExpired drops revocation rows for tokens that have expired anyway.
func (s *SQLRevocationStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM revoked_tokens WHERE expires_at < ?`), now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
