package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// schemaStatements builds the two cache tables: query_cache keyed by the
// canonical request key, and resolve_cache keyed by tenant, resource type,
// and query. CREATE IF NOT EXISTS keeps reruns harmless.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS query_cache (
		key TEXT PRIMARY KEY,
		endpoint TEXT NOT NULL,
		body BLOB NOT NULL,
		size_bytes INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_query_cache_expires ON query_cache(expires_at);`,
	`CREATE INDEX IF NOT EXISTS idx_query_cache_endpoint ON query_cache(endpoint);`,
	`CREATE INDEX IF NOT EXISTS idx_query_cache_created ON query_cache(created_at);`,
	`CREATE TABLE IF NOT EXISTS resolve_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant TEXT NOT NULL,
		resource_type TEXT NOT NULL,
		query TEXT NOT NULL,
		resource_id TEXT NOT NULL,
		label TEXT NOT NULL,
		exact INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		UNIQUE(tenant, resource_type, query)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_resolve_cache_expires ON resolve_cache(expires_at);`,
}

// Migrate creates any missing tables and indexes. Every statement is
// idempotent, so callers run it on each open.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply store schema: %w", err)
		}
	}

	// size_bytes arrived with the cache budget sweep; older databases lack it.
	return s.ensureColumn(ctx, "query_cache", "size_bytes", "INTEGER NOT NULL DEFAULT 0")
}

func (s *Store) ensureColumn(ctx context.Context, table, column, definition string) error {
	exists, err := s.columnExists(ctx, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := s.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("add %s.%s column: %w", table, column, err)
	}
	return nil
}

func (s *Store) columnExists(ctx context.Context, table, column string) (bool, error) {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, fmt.Errorf("inspect %s schema: %w", table, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, fmt.Errorf("inspect %s columns: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("inspect %s columns: %w", table, err)
	}

	return false, nil
}
