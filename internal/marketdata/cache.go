// Package marketdata serves spot prices and option chains, backed by a
// SQLite TTL cache so repeated analysis of the same underlying does not
// hammer the upstream data source.
package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/options-trader/internal/database"
)

// Cache stores fetched market data keyed by request, msgpack-encoded.
type Cache struct {
	db  *database.DB
	log zerolog.Logger
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS quotes (
	cache_key TEXT PRIMARY KEY,
	payload   BLOB NOT NULL,
	cached_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_cached_at ON quotes(cached_at);
`

// NewCache creates the market data cache and its schema.
func NewCache(db *database.DB, log zerolog.Logger) (*Cache, error) {
	if _, err := db.Exec(cacheSchema); err != nil {
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &Cache{
		db:  db,
		log: log.With().Str("component", "marketdata_cache").Logger(),
	}, nil
}

// Get loads a cached entry into dest. It reports false when the key is
// absent or older than ttl; decode failures are treated as misses.
func (c *Cache) Get(ctx context.Context, key string, ttl time.Duration, dest interface{}) bool {
	query := `SELECT payload, cached_at FROM quotes WHERE cache_key = ?`

	var payload []byte
	var cachedAt time.Time
	err := c.db.QueryRowContext(ctx, query, key).Scan(&payload, &cachedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			c.log.Error().Err(err).Str("key", key).Msg("Failed to read cached value")
		}
		return false
	}

	if time.Since(cachedAt) > ttl {
		return false
	}

	if err := msgpack.Unmarshal(payload, dest); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Failed to decode cached value")
		return false
	}

	return true
}

// Set stores a value under key, replacing any previous entry. Failures are
// logged and swallowed: the cache never blocks a fetch.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Failed to encode value for cache")
		return
	}

	query := `
		INSERT INTO quotes (cache_key, payload, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key)
		DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at
	`

	if _, err := c.db.ExecContext(ctx, query, key, payload, time.Now().UTC()); err != nil {
		c.log.Error().Err(err).Str("key", key).Msg("Failed to cache value")
	}
}

// Purge removes entries older than the given age and returns how many were
// deleted.
func (c *Cache) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	res, err := c.db.ExecContext(ctx, `DELETE FROM quotes WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}

	if removed > 0 {
		c.log.Info().Int64("removed", removed).Msg("Purged stale cache entries")
	}

	return removed, nil
}
