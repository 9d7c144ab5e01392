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

// GetResolveCache returns a cached resolution for a tenant query if it has
// not expired.
func (s *Store) GetResolveCache(ctx context.Context, tenant string, resourceType core.ResourceType, query string) (*core.Resolution, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("resolve query is required")
	}

	var (
		resourceID string
		label      string
		exact      int
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT resource_id, label, exact
		FROM resolve_cache
		WHERE tenant = ? AND resource_type = ? AND query = ? AND expires_at > ?
	`, strings.TrimSpace(tenant), string(resourceType), query, time.Now().UTC().Unix())

	if err := row.Scan(&resourceID, &label, &exact); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached resolution: %w", err)
	}

	return &core.Resolution{
		ID:    resourceID,
		Type:  resourceType,
		Label: label,
		Query: query,
		Exact: exact == 1,
	}, nil
}

// SetResolveCache stores a single-match resolution with a TTL.
func (s *Store) SetResolveCache(ctx context.Context, tenant string, res *core.Resolution, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if ttl <= 0 || res == nil {
		return nil
	}

	query := strings.TrimSpace(res.Query)
	if query == "" || strings.TrimSpace(res.ID) == "" {
		return errors.New("resolution query and id are required")
	}

	exact := 0
	if res.Exact {
		exact = 1
	}

	now := time.Now().UTC()
	expires := now.Add(ttl)

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO resolve_cache (tenant, resource_type, query, resource_id, label, exact, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tenant, resource_type, query) DO UPDATE SET
			resource_id = excluded.resource_id,
			label = excluded.label,
			exact = excluded.exact,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`, strings.TrimSpace(tenant), string(res.Type), query, strings.TrimSpace(res.ID), res.Label, exact, now.Unix(), expires.Unix())
	if err != nil {
		return fmt.Errorf("store cached resolution: %w", err)
	}

	return nil
}

// PurgeResolveCache removes cached resolutions. A non-empty tenant limits
// the purge to that tenant. It reports the number of rows removed.
func (s *Store) PurgeResolveCache(ctx context.Context, tenant string) (int64, error) {
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

	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		result, err = s.DB.ExecContext(ctx, `DELETE FROM resolve_cache`)
	} else {
		result, err = s.DB.ExecContext(ctx, `DELETE FROM resolve_cache WHERE tenant = ?`, tenant)
	}
	if err != nil {
		return 0, fmt.Errorf("purge resolve cache: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge resolve cache: %w", err)
	}
	return affected, nil
}
