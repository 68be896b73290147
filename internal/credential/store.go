// Package credential is the single source of truth for API key and session
// validity. Lookups run cache-first with database fallback and write-through
// population; the database row is always authoritative, the cached copy a
// read-through replica.
package credential

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/cache"
	"github.com/gateline/gateline/internal/storage"
	"github.com/gateline/gateline/pkg/apierr"
)

// Cache key prefixes. One namespace per credential type.
const (
	apiKeyPrefix  = "APIKey:"
	sessionPrefix = "sessionToken:"
)

// Store resolves and manages API keys and sessions. No other component
// writes these entities to the cache or the database.
type Store struct {
	cache  cache.Cache
	db     storage.Store
	logger *zap.Logger
}

// NewStore creates a credential store over the given cache and database.
func NewStore(c cache.Cache, db storage.Store, logger *zap.Logger) *Store {
	return &Store{
		cache:  c,
		db:     db,
		logger: logger.Named("credential"),
	}
}

// lookup is the shared cache-then-database chain: check the cache; on miss,
// fetch from the database; on a database hit, write the encoded value back
// to the cache and return it. A double miss reports found=false with no
// error. Write-through is idempotent, so concurrent populations of the same
// key degrade to redundant writes.
func lookup[T any](
	ctx context.Context,
	c cache.Cache,
	key string,
	decode func(cached string) (T, bool),
	fetch func(ctx context.Context) (T, string, error),
) (value T, found bool, err error) {
	if cached, ok := c.Get(ctx, key); ok {
		if v, ok := decode(cached); ok {
			return v, true, nil
		}
		// Undecodable entries are dropped so the next lookup repopulates.
		c.Del(ctx, key)
	}

	v, encoded, err := fetch(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return value, false, nil
	}
	if err != nil {
		return value, false, apierr.Make(apierr.ModelError, err.Error())
	}

	c.Set(ctx, key, encoded)
	return v, true, nil
}
