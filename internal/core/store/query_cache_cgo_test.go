//go:build cgo

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/worklane/worklane-cli/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	cfg := config.StoreConfig{
		Driver: "libsql",
		Path:   ":memory:",
	}

	store, err := Open(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	t.Cleanup(func() { _ = store.Close() })

	return store
}

// insertResponse writes a row directly so tests can control timestamps.
func insertResponse(t *testing.T, s *Store, key, endpoint string, size int, createdAt, expiresAt int64) {
	t.Helper()

	body := make([]byte, size)
	_, err := s.DB.Exec(`
		INSERT INTO query_cache (key, endpoint, body, size_bytes, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key, endpoint, body, size, createdAt, expiresAt)
	require.NoError(t, err)
}

func TestQueryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	body := []byte(`{"data":[{"id":"1","type":"projects"}]}`)
	require.NoError(t, store.SetQueryCache(ctx, "abc123def456abcd", "/projects", body, time.Hour))

	entry, err := store.GetQueryCache(ctx, "abc123def456abcd")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, "/projects", entry.Endpoint)
	require.Equal(t, body, entry.Body)
	require.True(t, entry.ExpiresAt.After(entry.CreatedAt))

	missing, err := store.GetQueryCache(ctx, "0000000000000000")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestQueryCacheExpiredIsMiss(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	past := time.Now().UTC().Add(-time.Hour).Unix()
	insertResponse(t, store, "expiredkey000000", "/projects", 16, past, past+1)

	entry, err := store.GetQueryCache(ctx, "expiredkey000000")
	require.NoError(t, err)
	require.Nil(t, entry)

	// The stale row is dropped on first read; a repeated read stays a miss.
	var count int
	require.NoError(t, store.DB.QueryRow(`SELECT COUNT(*) FROM query_cache`).Scan(&count))
	require.Equal(t, 0, count)

	entry, err = store.GetQueryCache(ctx, "expiredkey000000")
	require.NoError(t, err)
	require.Nil(t, entry)
}

func TestQueryCacheUpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.SetQueryCache(ctx, "samekey000000000", "/tasks", []byte("first"), time.Hour))
	require.NoError(t, store.SetQueryCache(ctx, "samekey000000000", "/tasks", []byte("second"), time.Hour))

	entry, err := store.GetQueryCache(ctx, "samekey000000000")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, []byte("second"), entry.Body)

	var count int
	require.NoError(t, store.DB.QueryRow(`SELECT COUNT(*) FROM query_cache`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestInvalidateQueryCache(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Now().UTC().Unix()
	insertResponse(t, store, "key1000000000000", "/projects", 8, now, now+3600)
	insertResponse(t, store, "key2000000000000", "/projects/42/tasks", 8, now, now+3600)
	insertResponse(t, store, "key3000000000000", "/time_entries", 8, now, now+3600)

	// Pattern matching is substring, so nested endpoints are covered too.
	removed, err := store.InvalidateQueryCache(ctx, "/projects")
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	entry, err := store.GetQueryCache(ctx, "key3000000000000")
	require.NoError(t, err)
	require.NotNil(t, entry)

	removed, err = store.InvalidateQueryCache(ctx, "time_entries")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	removed, err = store.InvalidateQueryCache(ctx, "*")
	require.NoError(t, err)
	require.Equal(t, int64(0), removed)
}

func TestSweepQueryCacheDropsExpiredFirst(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Now().UTC().Unix()
	insertResponse(t, store, "deadkey000000000", "/projects", 8, now-7200, now-3600)
	insertResponse(t, store, "livekey000000000", "/projects", 8, now, now+3600)

	removed, err := store.SweepQueryCache(ctx, 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	entry, err := store.GetQueryCache(ctx, "livekey000000000")
	require.NoError(t, err)
	require.NotNil(t, entry)
}

func TestSweepQueryCacheTrimsOldestByCount(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Now().UTC().Unix()
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key%d000000000000", i)
		insertResponse(t, store, key, "/projects", 10, now+int64(i), now+3600)
	}

	removed, err := store.SweepQueryCache(ctx, 0, 3)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	// The two oldest rows are gone; the newest three remain.
	for i, wantGone := range []bool{true, true, false, false, false} {
		key := fmt.Sprintf("key%d000000000000", i)
		entry, err := store.GetQueryCache(ctx, key)
		require.NoError(t, err)
		if wantGone {
			require.Nil(t, entry, "key %s should have been trimmed", key)
		} else {
			require.NotNil(t, entry, "key %s should have survived", key)
		}
	}
}

func TestSweepQueryCacheTrimsOldestByBytes(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Now().UTC().Unix()
	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("key%d000000000000", i)
		insertResponse(t, store, key, "/projects", 100, now+int64(i), now+3600)
	}

	// 500 bytes stored; trimming oldest-first to 250 leaves the newest two.
	removed, err := store.SweepQueryCache(ctx, 250, 0)
	require.NoError(t, err)
	require.Equal(t, int64(3), removed)

	var count int
	require.NoError(t, store.DB.QueryRow(`SELECT COUNT(*) FROM query_cache`).Scan(&count))
	require.Equal(t, 2, count)
}

func TestGetCacheStats(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	now := time.Now().UTC().Unix()
	insertResponse(t, store, "live100000000000", "/projects", 40, now, now+3600)
	insertResponse(t, store, "dead100000000000", "/tasks", 60, now-7200, now-3600)

	require.NoError(t, store.SetResolveCache(ctx, "555001", &testResolution, time.Hour))

	stats, err := store.GetCacheStats(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, stats.ResponseEntries)
	require.Equal(t, int64(100), stats.ResponseBytes)
	require.Equal(t, 1, stats.ResponseExpired)
	require.Equal(t, 1, stats.ResolveEntries)
	require.Equal(t, 0, stats.ResolveExpired)
}
