package db

import (
	"context"
	"time"
)

// CacheGet returns the cached payload for key, or ok=false when the
// key is absent or expired. Expired rows are removed on the way out.
func (d *DB) CacheGet(ctx context.Context, key string) ([]byte, bool) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT data, expires_at FROM lookup_cache WHERE cache_key=?`, key)
	var data, expires string
	if err := row.Scan(&data, &expires); err != nil {
		return nil, false
	}
	exp, err := time.Parse(time.RFC3339Nano, expires)
	if err != nil || time.Now().UTC().After(exp) {
		_ = d.Exec(ctx, `DELETE FROM lookup_cache WHERE cache_key=?`, key)
		return nil, false
	}
	return []byte(data), true
}

// CachePut upserts a payload with the given lifetime.
func (d *DB) CachePut(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	exp := time.Now().UTC().Add(ttl).Format(time.RFC3339Nano)
	return d.Exec(ctx, `
INSERT INTO lookup_cache (cache_key, data, expires_at) VALUES (?, ?, ?)
ON CONFLICT(cache_key) DO UPDATE SET data=excluded.data, expires_at=excluded.expires_at, created_at=CURRENT_TIMESTAMP`,
		key, string(payload), exp)
}

// PruneCache drops every expired row. Called opportunistically at
// startup.
func (d *DB) PruneCache(ctx context.Context) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := d.sql.ExecContext(ctx, `DELETE FROM lookup_cache WHERE expires_at < ?`, now)
	return err
}
