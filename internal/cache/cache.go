// Package cache defines the key/value cache consumed by the credential
// store. Cache unavailability must never fail a read: Get and Set swallow
// their errors and report a miss instead. Del reports failure, because a
// caller evicting a credential needs to know the stale copy may still be
// live.
package cache

import "context"

// Cache is the minimal surface the framework needs from a cache store.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a value under key.
	Set(ctx context.Context, key, value string)

	// Del removes a key.
	Del(ctx context.Context, key string) error

	// FlushAll empties the cache. Intended for tests and tooling.
	FlushAll(ctx context.Context)

	// Close releases resources.
	Close() error
}
