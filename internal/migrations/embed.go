// Package migrations holds the catalog schema and applies it at startup.
package migrations

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed sql/001_initial.sql
var InitialSQL string

// SchemaVersion is stamped into PRAGMA user_version once the schema is in place.
const SchemaVersion = 1

// ErrNewerSchema is returned for a database written by a later release.
var ErrNewerSchema = errors.New("database schema is newer than this build")

// Apply creates any missing tables and stamps SchemaVersion. It is safe to
// run on every start.
func Apply(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("%w: found %d, want %d", ErrNewerSchema, version, SchemaVersion)
	}
	if _, err := db.ExecContext(ctx, InitialSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("stamp schema version: %w", err)
	}
	return nil
}
