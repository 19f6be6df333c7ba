// Package cache provides storage backends for forge API responses and a
// run-scoped memo for values that must be computed at most once per run.
//
// # Backends
//
// [Cache] is a byte-oriented key/value store with per-entry TTL. Three
// implementations are provided:
//
//   - [FileCache]: JSON files under a directory, for single-user CLI runs
//   - [RedisCache]: a shared Redis instance, for the HTTP server or cron hosts
//   - [NullCache]: stores nothing, used when caching is disabled
//
// Keys are produced by a [Keyer] so that callers never build key strings by
// hand. [NewScopedKeyer] prefixes every key, which lets several archlog
// instances share one Redis database.
//
// # Run-scoped memo
//
// [Memo] deduplicates work inside a single run: source references and tag
// lists are resolved once per project path, even when several workers ask for
// the same key at the same moment.
package cache

import (
	"context"
	"time"
)

// Default TTLs for persistent entries. Tag lists move quickly on active
// projects so they are kept short; packaging metadata changes only on
// repository sync.
const (
	TTLHTTP     = 30 * time.Minute
	TTLTags     = 30 * time.Minute
	TTLMetadata = time.Hour
)

// Cache is a key/value store for serialized data.
//
// Implementations must be safe for concurrent use. A TTL of zero means the
// entry never expires.
type Cache interface {
	// Get returns the stored bytes and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key for ttl.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
// The `archlog cache clear` command uses it.
type Clearer interface {
	Clear(ctx context.Context) error
}
