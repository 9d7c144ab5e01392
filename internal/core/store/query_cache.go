package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/worklane/worklane-cli/internal/core"
)

// GetQueryCache returns a cached API response if it is still valid.
func (s *Store) GetQueryCache(ctx context.Context, key string) (*core.CachedResponse, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("cache key is required")
	}

	var (
		endpoint  string
		body      []byte
		createdAt int64
		expiresAt int64
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT endpoint, body, created_at, expires_at
		FROM query_cache
		WHERE key = ?
	`, key)

	if err := row.Scan(&endpoint, &body, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached response: %w", err)
	}

	if time.Now().UTC().Unix() >= expiresAt {
		// Stale rows are dropped on read so repeated gets stay cheap.
		_, _ = s.DB.ExecContext(ctx, `DELETE FROM query_cache WHERE key = ? AND expires_at = ?`, key, expiresAt)
		return nil, nil
	}

	return &core.CachedResponse{
		Key:       key,
		Endpoint:  endpoint,
		Body:      body,
		CreatedAt: time.Unix(createdAt, 0).UTC(),
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}, nil
}

// SetQueryCache stores an API response body with a TTL.
func (s *Store) SetQueryCache(ctx context.Context, key, endpoint string, body []byte, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if ttl <= 0 || len(body) == 0 {
		return nil
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key is required")
	}

	now := time.Now().UTC()
	expires := now.Add(ttl)

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO query_cache (key, endpoint, body, size_bytes, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			endpoint = excluded.endpoint,
			body = excluded.body,
			size_bytes = excluded.size_bytes,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, key, strings.TrimSpace(endpoint), body, len(body), now.Unix(), expires.Unix())
	if err != nil {
		return fmt.Errorf("store cached response: %w", err)
	}

	return nil
}

// InvalidateQueryCache removes cached responses whose stored endpoint
// contains the given pattern. An empty or "*" pattern clears the whole
// response cache. It reports the number of rows removed.
func (s *Store) InvalidateQueryCache(ctx context.Context, pattern string) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		result sql.Result
		err    error
	)

	pattern = strings.TrimSpace(pattern)
	if pattern == "" || pattern == "*" {
		result, err = s.DB.ExecContext(ctx, `DELETE FROM query_cache`)
	} else {
		result, err = s.DB.ExecContext(ctx, `DELETE FROM query_cache WHERE endpoint LIKE ?`, "%"+pattern+"%")
	}
	if err != nil {
		return 0, fmt.Errorf("invalidate response cache: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("invalidate response cache: %w", err)
	}
	return affected, nil
}

// SweepQueryCache deletes expired rows from both caches, then trims the
// oldest responses until the response cache fits maxBytes and maxEntries.
// A zero budget disables that dimension. It reports total rows removed.
func (s *Store) SweepQueryCache(ctx context.Context, maxBytes int64, maxEntries int) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Unix()

	var removed int64
	result, err := s.DB.ExecContext(ctx, `DELETE FROM query_cache WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("sweep expired responses: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil {
		removed += n
	}

	result, err = s.DB.ExecContext(ctx, `DELETE FROM resolve_cache WHERE expires_at <= ?`, now)
	if err != nil {
		return removed, fmt.Errorf("sweep expired resolutions: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil {
		removed += n
	}

	if maxBytes <= 0 && maxEntries <= 0 {
		return removed, nil
	}

	var (
		count int
		total int64
	)
	row := s.DB.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(size_bytes), 0) FROM query_cache`)
	if err := row.Scan(&count, &total); err != nil {
		return removed, fmt.Errorf("measure response cache: %w", err)
	}

	overCount := 0
	if maxEntries > 0 && count > maxEntries {
		overCount = count - maxEntries
	}
	if overCount == 0 && (maxBytes <= 0 || total <= maxBytes) {
		return removed, nil
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT size_bytes FROM query_cache ORDER BY created_at ASC, key ASC`)
	if err != nil {
		return removed, fmt.Errorf("trim response cache: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	drop := 0
	for rows.Next() {
		var size int64
		if err := rows.Scan(&size); err != nil {
			return removed, fmt.Errorf("trim response cache: %w", err)
		}
		if drop >= overCount && (maxBytes <= 0 || total <= maxBytes) {
			break
		}
		drop++
		total -= size
	}
	if err := rows.Err(); err != nil {
		return removed, fmt.Errorf("trim response cache: %w", err)
	}
	if drop == 0 {
		return removed, nil
	}

	result, err = s.DB.ExecContext(ctx, `
		DELETE FROM query_cache WHERE key IN (
			SELECT key FROM query_cache ORDER BY created_at ASC, key ASC LIMIT ?
		)
	`, drop)
	if err != nil {
		return removed, fmt.Errorf("trim response cache: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil {
		removed += n
	}

	return removed, nil
}

// CacheStats summarizes both cache tables.
type CacheStats struct {
	ResponseEntries int   `json:"response_entries"`
	ResponseBytes   int64 `json:"response_bytes"`
	ResponseExpired int   `json:"response_expired"`
	ResolveEntries  int   `json:"resolve_entries"`
	ResolveExpired  int   `json:"resolve_expired"`
}

// GetCacheStats reports entry counts and sizes for both caches.
func (s *Store) GetCacheStats(ctx context.Context) (*CacheStats, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now().UTC().Unix()
	stats := &CacheStats{}

	row := s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(size_bytes), 0),
		       COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM query_cache
	`, now)
	if err := row.Scan(&stats.ResponseEntries, &stats.ResponseBytes, &stats.ResponseExpired); err != nil {
		return nil, fmt.Errorf("measure response cache: %w", err)
	}

	row = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM resolve_cache
	`, now)
	if err := row.Scan(&stats.ResolveEntries, &stats.ResolveExpired); err != nil {
		return nil, fmt.Errorf("measure resolve cache: %w", err)
	}

	return stats, nil
}
