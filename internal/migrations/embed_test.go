package migrations

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestApply(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	require.NoError(t, Apply(ctx, db))
	require.NoError(t, Apply(ctx, db), "second run is a no-op")

	var version int
	require.NoError(t, db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, SchemaVersion, version)

	for _, table := range []string{"assets", "events"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestApply_NewerSchema(t *testing.T) {
	db := openMemory(t)
	_, err := db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)

	err = Apply(context.Background(), db)
	require.ErrorIs(t, err, ErrNewerSchema)
	assert.Contains(t, err.Error(), "found 99")
}
