// Package migrations contains dialect-aware Go database migrations that cannot
// be expressed as a single cross-database SQL statement.
package migrations

import "fmt"

// dialect is set by the parent db package before migrations are applied.
var dialect string

// SetDialect configures the SQL dialect for Go migrations.
// Must be called before goose.Up. Valid values: "sqlite3", "postgres", "mysql".
func SetDialect(d string) {
	dialect = d
}

// forDialect picks the statement written for the active dialect, falling
// back to the sqlite3 entry.
func forDialect(stmts map[string]string) (string, error) {
	if s, ok := stmts[dialect]; ok {
		return s, nil
	}
	if s, ok := stmts["sqlite3"]; ok {
		return s, nil
	}
	return "", fmt.Errorf("no statement for dialect %q", dialect)
}
