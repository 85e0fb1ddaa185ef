package discogs

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/franz/discogs-tagger/internal/util"
)

// Fetcher retrieves raw release snapshots from the remote catalog
type Fetcher interface {
	GetRelease(ctx context.Context, id int) (*Release, []byte, error)
}

// ReleaseSource provides decoded release snapshots
type ReleaseSource interface {
	GetRelease(ctx context.Context, id int) (*Release, error)
}

// Cache provides database-backed caching of release snapshots
type Cache struct {
	db      *sql.DB
	fetcher Fetcher
	maxAge  time.Duration
}

// CacheStats summarises the cache contents
type CacheStats struct {
	Entries   int
	TotalHits int64
	Bytes     int64
}

// NewCache creates a new cache instance.
// Entries older than maxAge are refetched; zero means entries never expire.
func NewCache(db *sql.DB, fetcher Fetcher, maxAge time.Duration) *Cache {
	return &Cache{
		db:      db,
		fetcher: fetcher,
		maxAge:  maxAge,
	}
}

// EnsureSchema creates the cache table if it doesn't exist
func (c *Cache) EnsureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS release_cache (
		release_id INTEGER PRIMARY KEY,
		title TEXT,
		payload BLOB NOT NULL,
		fetched_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		hit_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_release_cache_fetched ON release_cache(fetched_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create release_cache table: %w", err)
	}
	return nil
}

// GetRelease returns release id from the cache, falling back to the catalog
func (c *Cache) GetRelease(ctx context.Context, id int) (*Release, error) {
	rel, err := c.getFromCache(id)
	if err != nil {
		util.WarnLog("Release cache read failed for %d: %v", id, err)
	}
	if rel != nil {
		util.DebugLog("Release cache hit: %d '%s'", id, rel.Title)
		c.incrementHitCount(id)
		return rel, nil
	}

	util.DebugLog("Release cache miss: %d, querying API", id)
	return c.Refresh(ctx, id)
}

// Refresh fetches release id from the catalog and replaces the cached copy
func (c *Cache) Refresh(ctx context.Context, id int) (*Release, error) {
	if c.fetcher == nil {
		return nil, fmt.Errorf("release %d not cached and no catalog client configured: %w", id, util.ErrNotFound)
	}

	rel, payload, err := c.fetcher.GetRelease(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.storeInCache(rel, payload); err != nil {
		// Don't fail the operation if caching fails
		util.WarnLog("Failed to cache release %d: %v", id, err)
	}
	return rel, nil
}

func (c *Cache) getFromCache(id int) (*Release, error) {
	var payload []byte
	var fetchedAt time.Time

	err := c.db.QueryRow(
		`SELECT payload, fetched_at FROM release_cache WHERE release_id = ?`, id,
	).Scan(&payload, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	if c.maxAge > 0 && time.Since(fetchedAt) > c.maxAge {
		util.DebugLog("Release cache entry %d expired (fetched %s)", id, fetchedAt.Format(time.RFC3339))
		return nil, nil
	}

	return DecodeRelease(payload)
}

func (c *Cache) storeInCache(rel *Release, payload []byte) error {
	query := `
		INSERT OR REPLACE INTO release_cache
		(release_id, title, payload, fetched_at, hit_count)
		VALUES (?, ?, ?, ?, COALESCE((SELECT hit_count FROM release_cache WHERE release_id = ?), 0))
	`
	if _, err := c.db.Exec(query, rel.ID, rel.Title, payload, time.Now(), rel.ID); err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

func (c *Cache) incrementHitCount(id int) {
	_, err := c.db.Exec(`UPDATE release_cache SET hit_count = hit_count + 1 WHERE release_id = ?`, id)
	if err != nil {
		util.DebugLog("Failed to increment hit count: %v", err)
	}
}

// GetStats returns cache statistics
func (c *Cache) GetStats() (CacheStats, error) {
	var stats CacheStats
	err := c.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(hit_count), 0), COALESCE(SUM(LENGTH(payload)), 0) FROM release_cache`,
	).Scan(&stats.Entries, &stats.TotalHits, &stats.Bytes)
	return stats, err
}

// ClearCache removes all cached entries
func (c *Cache) ClearCache() (int, error) {
	result, err := c.db.Exec("DELETE FROM release_cache")
	if err != nil {
		return 0, err
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// ClearOldEntries removes cache entries older than the specified duration
func (c *Cache) ClearOldEntries(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	result, err := c.db.Exec("DELETE FROM release_cache WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, err
	}

	rows, _ := result.RowsAffected()
	return int(rows), nil
}
