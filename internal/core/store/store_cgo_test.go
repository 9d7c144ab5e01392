//go:build cgo

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/config"
)

func TestOpenAndMigrateMemoryStore(t *testing.T) {
	ctx := context.Background()

	db, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Equal(t, "libsql", db.Driver())
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	require.NoError(t, db.Migrate(ctx))

	// Both cache tables must exist and start empty.
	for _, table := range []string{"query_cache", "resolve_cache"} {
		var count int
		require.NoError(t, db.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count))
		require.Zero(t, count, "table %s should start empty", table)
	}

	// Migrate must be safe to run twice.
	require.NoError(t, db.Migrate(ctx))
}
