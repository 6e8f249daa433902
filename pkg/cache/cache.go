// Package cache stores engine results between runs.
//
// A [Cache] is a byte-oriented key/value store with per-entry TTLs. Backends:
//
//   - [NullCache]: stores nothing (the default)
//   - [FileCache]: one JSON file per entry under a directory
//   - [RedisCache]: a Redis server via go-redis
//   - [MongoCache]: a MongoDB collection via the official driver
//
// Keys are produced by a [Keyer] so that every backend lays out its
// namespace the same way.
package cache

import (
	"context"
	"time"
)

// Cache is the storage contract shared by every backend.
type Cache interface {
	// Get returns the stored value and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// TTLLayout is the default lifetime of a cached engine result.
const TTLLayout = 7 * 24 * time.Hour

// Backend names accepted by configuration.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)
