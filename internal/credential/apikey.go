package credential

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/storage"
	"github.com/gateline/gateline/pkg/apierr"
)

// secretFor runs the shared chain for a key: the cache holds the raw secret
// under APIKey:<key>; the database fallback only matches enabled rows.
func (s *Store) secretFor(ctx context.Context, key string) (string, bool, error) {
	return lookup(ctx, s.cache, apiKeyPrefix+key,
		func(cached string) (string, bool) { return cached, cached != "" },
		func(ctx context.Context) (string, string, error) {
			pair, err := s.db.APIKeys().GetEnabled(ctx, key)
			if err != nil {
				return "", "", err
			}
			return pair.Secret, pair.Secret, nil
		})
}

// ResolveAPIKey reports whether the key exists and is enabled. Presence of
// any cached value is sufficient; no secret comparison happens here.
func (s *Store) ResolveAPIKey(ctx context.Context, key string) error {
	_, found, err := s.secretFor(ctx, key)
	if err != nil {
		return err
	}
	if !found {
		return apierr.Make(apierr.InvalidAPIKey, nil)
	}
	return nil
}

// SecretFor returns the raw signing secret for a key, for signature
// verification.
func (s *Store) SecretFor(ctx context.Context, key string) (string, error) {
	secret, found, err := s.secretFor(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return "", apierr.Make(apierr.NoSecret, nil)
	}
	return secret, nil
}

// CreateKeyPair generates and persists a new enabled key pair.
func (s *Store) CreateKeyPair(ctx context.Context) (*domain.APIKeyPair, error) {
	pair := domain.NewAPIKeyPair()
	if err := s.db.APIKeys().Create(ctx, pair); err != nil {
		return nil, apierr.Make(apierr.ModelError, err.Error())
	}
	s.logger.Info("api key pair created", zap.String("key", pair.Key))
	return pair, nil
}

// EnableKey restores a disabled key. storage.ErrNotFound passes through so
// callers can distinguish a missing key from a database failure.
func (s *Store) EnableKey(ctx context.Context, key string) error {
	if err := s.db.APIKeys().SetEnabled(ctx, key, true); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return apierr.Make(apierr.ModelError, err.Error())
	}
	return nil
}

// DisableKey soft-deletes a key. The cached copy is evicted before the
// database row flips, so a disabled key cannot keep resolving from cache.
// If the eviction fails the flip does not happen.
func (s *Store) DisableKey(ctx context.Context, key string) error {
	if err := s.cache.Del(ctx, apiKeyPrefix+key); err != nil {
		return apierr.Make(apierr.ModelError, err.Error())
	}
	if err := s.db.APIKeys().SetEnabled(ctx, key, false); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return apierr.Make(apierr.ModelError, err.Error())
	}
	return nil
}

// DeleteKey removes a key pair entirely. Deletion is idempotent.
func (s *Store) DeleteKey(ctx context.Context, key string) error {
	if err := s.cache.Del(ctx, apiKeyPrefix+key); err != nil {
		return apierr.Make(apierr.ModelError, err.Error())
	}
	if err := s.db.APIKeys().Delete(ctx, key); err != nil {
		return apierr.Make(apierr.ModelError, err.Error())
	}
	return nil
}
