package migrations

// The sessions table backs the scs session stores. Each store adapter expects
// its own column types, so the DDL is chosen per dialect at migration time.

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

var sessionsDDL = map[string]string{
	"postgres": `CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   BYTEA NOT NULL,
    expiry TIMESTAMPTZ NOT NULL
)`,
	"mysql": `CREATE TABLE IF NOT EXISTS sessions (
    token  CHAR(43) PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry TIMESTAMP(6) NOT NULL
)`,
	"sqlite3": `CREATE TABLE IF NOT EXISTS sessions (
    token  TEXT PRIMARY KEY,
    data   BLOB NOT NULL,
    expiry REAL NOT NULL
)`,
}

func init() {
	goose.AddMigrationContext(upSessions, downSessions)
}

func upSessions(ctx context.Context, tx *sql.Tx) error {
	ddl, err := forDialect(sessionsDDL)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create sessions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE INDEX sessions_expiry_idx ON sessions (expiry)`); err != nil {
		return fmt.Errorf("index sessions: %w", err)
	}
	return nil
}

func downSessions(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions`)
	return err
}
