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

// ProviderLocal marks accounts registered with an email and password.
const ProviderLocal = "local"

type User struct {
	ID           string    `db:"id"`
	Provider     string    `db:"provider"`
	Subject      string    `db:"subject"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	PasswordHash string    `db:"password_hash"`
	AvatarURL    string    `db:"avatar_url"`
	IsAdmin      bool      `db:"is_admin"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// NewUser holds the fields for a locally registered account.
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
	IsAdmin      bool
}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// q rebinds ? placeholders to the driver's native format ($1,$2,... for PostgreSQL).
func (s *UserStore) q(query string) string { return s.db.Rebind(query) }

// Create inserts a local account. Emails are stored lowercased.
// Returns ErrEmailTaken if the email is already registered.
func (s *UserStore) Create(ctx context.Context, nu NewUser) (*User, error) {
	email := normalizeEmail(nu.Email)
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, provider, subject, email, name, password_hash, is_admin, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, ProviderLocal, email, email, strings.TrimSpace(nu.Name), nu.PasswordHash, nu.IsAdmin, true, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Upsert creates or refreshes a user record on single sign-on.
// admin only applies when the record is first created; returning users keep
// whatever flag they have.
func (s *UserStore) Upsert(ctx context.Context, provider, subject, email, name string, admin bool) (*User, error) {
	email = normalizeEmail(email)
	now := time.Now().UTC()

	var existing User
	err := s.db.GetContext(ctx, &existing, s.q(`SELECT * FROM users WHERE provider = ? AND subject = ?`), provider, subject)
	switch {
	case err == nil:
		_, err = s.db.ExecContext(ctx, s.q(`
			UPDATE users SET email = ?, name = ?, updated_at = ? WHERE id = ?
		`), email, name, now, existing.ID)
		if err != nil {
			if isUniqueConstraintError(err) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		return s.GetByID(ctx, existing.ID)
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (id, provider, subject, email, name, is_admin, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), id, provider, subject, email, name, admin, true, now, now)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID returns the user matching id, or ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns the user matching email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.q(`SELECT * FROM users WHERE email = ?`), normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List returns a page of users, newest first, optionally filtered by a
// case-insensitive match on name or email, together with the total count.
func (s *UserStore) List(ctx context.Context, search string, limit, offset int) ([]*User, int, error) {
	where := ""
	var args []any
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		where = ` WHERE LOWER(name) LIKE ? OR LOWER(email) LIKE ?`
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.GetContext(ctx, &total, s.q(`SELECT COUNT(*) FROM users`+where), args...); err != nil {
		return nil, 0, err
	}

	users := []*User{}
	err := s.db.SelectContext(ctx, &users, s.q(`SELECT * FROM users`+where+` ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?`),
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetActive suspends or reactivates an account and returns the updated record.
func (s *UserStore) SetActive(ctx context.Context, id string, active bool) (*User, error) {
	return s.setFlag(ctx, id, "is_active", active)
}

// SetAdmin grants or removes admin rights and returns the updated record.
func (s *UserStore) SetAdmin(ctx context.Context, id string, admin bool) (*User, error) {
	return s.setFlag(ctx, id, "is_admin", admin)
}

// SetPassword replaces the stored password hash.
func (s *UserStore) SetPassword(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`),
		hash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *UserStore) setFlag(ctx context.Context, id, column string, value bool) (*User, error) {
	res, err := s.db.ExecContext(ctx, s.q(`UPDATE users SET `+column+` = ?, updated_at = ? WHERE id = ?`),
		value, time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a user together with everything they own: their posts (and
// the comments, likes, views and tag links on those posts), their comments on
// other posts, and their likes.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var postIDs []string
	if err := tx.SelectContext(ctx, &postIDs, s.q(`SELECT id FROM posts WHERE owner_id = ?`), id); err != nil {
		return err
	}
	for _, pid := range postIDs {
		if _, err := deletePostTx(ctx, tx, pid); err != nil {
			return err
		}
	}

	stmts := []string{
		`DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE author_id = ?)`,
		`DELETE FROM comments WHERE author_id = ?`,
		`DELETE FROM comment_likes WHERE user_id = ?`,
		`DELETE FROM post_likes WHERE user_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), id); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// requireRow maps a zero-row write to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
