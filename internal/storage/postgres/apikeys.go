package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/storage"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// APIKeyStore implements storage.APIKeyStore on PostgreSQL.
type APIKeyStore struct {
	db *sqlx.DB
}

func (s *APIKeyStore) Create(ctx context.Context, pair *domain.APIKeyPair) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO api_keys (key, secret, enabled) VALUES ($1, $2, $3)`,
		pair.Key, pair.Secret, pair.Enabled)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	return nil
}

func (s *APIKeyStore) GetEnabled(ctx context.Context, key string) (*domain.APIKeyPair, error) {
	var pair domain.APIKeyPair
	err := s.db.GetContext(ctx, &pair,
		`SELECT key, secret, enabled, created_at FROM api_keys WHERE key = $1 AND enabled = TRUE`,
		key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	return &pair, nil
}

func (s *APIKeyStore) SetEnabled(ctx context.Context, key string, enabled bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET enabled = $2 WHERE key = $1`,
		key, enabled)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *APIKeyStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM api_keys WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	return nil
}

func (s *APIKeyStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM api_keys`); err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrDatabase, err)
	}
	return n, nil
}
