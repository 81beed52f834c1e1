// Package cache stores rendered scenes and artifacts.
//
// # Backends
//
//   - [FileCache]: sharded files under a directory, zstd-compressed (CLI)
//   - [RedisCache]: a shared Redis instance (HTTP server, multiple replicas)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: stores nothing (--no-cache, tests)
//
// # Keys
//
// Keys are built by a [Keyer] from content hashes and the options that
// influence the cached value, so a change to any option is a cache miss
// rather than a stale hit. [NewScopedKeyer] prefixes keys for isolation.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A missing or expired entry is reported
	// as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	// TTLScene is how long a computed scene snapshot is kept.
	TTLScene = 7 * 24 * time.Hour

	// TTLArtifact is how long a rendered artifact is kept.
	TTLArtifact = 30 * 24 * time.Hour
)

// Describe returns a short human-readable name for c, such as
// "file (/home/me/.cache/spidermap)" or "none (--no-cache)".
// Connection strings are never included.
func Describe(c Cache) string {
	switch c := c.(type) {
	case *FileCache:
		return "file (" + c.Dir() + ")"
	case *NullCache:
		if c.Reason == "" {
			return "none"
		}
		return "none (" + c.Reason + ")"
	case *RedisCache:
		return "redis"
	case *MongoCache:
		return "mongo"
	default:
		return "custom"
	}
}
