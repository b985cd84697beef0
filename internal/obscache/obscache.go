// internal/obscache/obscache.go
// Optional result cache for read-only engine calls, which execute against
// a consistent version snapshot, so caching their output for a short TTL is
// safe. engine.Engine caches VerifyDay/VerifyFull reports through it;
// SnapshotKey and ProjectionKey build keys for snapshot and projection
// results, which no engine method caches. Adapted from the teacher's services.CacheService, which wraps the
// same go-redis client for the same get/set-with-expiration shape.
package obscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a redis client; a nil *Cache is a valid no-op cache so callers
// can run without Redis configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New builds a Cache. Pass enabled=false (or a nil client) for a no-op.
func New(addr, password string, db int, ttl time.Duration, enabled bool) *Cache {
	if !enabled {
		return &Cache{}
	}
	return &Cache{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl:    ttl,
	}
}

// Set stores a value under key for the cache's configured TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// Get retrieves a cached value into dest. Returns ok=false on any miss or
// when caching is disabled, never an error the caller must handle specially
// (a cache miss just means "go compute it").
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (ok bool) {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false
	}
	return true
}

// Invalidate removes a cached key, e.g. after a placement or finalize
// mutates the version a snapshot key was derived from.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, key)
}

// SnapshotKey builds the cache key for a version snapshot.
func SnapshotKey(versionID int64) string {
	return fmt.Sprintf("snapshot_v%d", versionID)
}

// ProjectionKey builds the cache key for a WF->pool projection.
func ProjectionKey(eventID int64) string {
	return fmt.Sprintf("projection_e%d", eventID)
}
