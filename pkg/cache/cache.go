// Package cache provides result caching for the serving layer.
//
// The engine itself is stateless and rebuilds its interval index per
// request; caching lives entirely outside it. A serving frontend hashes
// the incoming batch together with the policy that shaped the result
// (geometry for layouts, thresholds for conflict reports) and memoizes
// the serialized response, so repeated identical requests skip the
// computation.
//
// # Backends
//
//   - NullCache: caching disabled
//   - MemoryCache: in-process, for single-instance servers and tests
//   - FileCache: on-disk, for CLI invocations across runs
//   - RedisCache: shared, for multi-instance deployments
//
// All backends store opaque byte slices and treat expired or corrupt
// entries as misses.
package cache

import (
	"context"
	"time"
)

// Default TTLs per result kind. Layouts depend only on their inputs so
// they could live forever; bounded TTLs keep backends from filling up.
const (
	DefaultLayoutTTL   = 24 * time.Hour
	DefaultConflictTTL = 24 * time.Hour
	DefaultFeedTTL     = 15 * time.Minute
)

// Cache is the storage interface shared by all backends.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss;
	// misses are not errors.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
