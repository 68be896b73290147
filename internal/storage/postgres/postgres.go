// Package postgres implements storage on PostgreSQL via sqlx. Schema
// migrations are embedded and run at startup, outside the request path.
package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/storage"
)

// Config configures the PostgreSQL connection.
type Config struct {
	DSN          string
	MaxOpenConns int
	Migrate      bool
}

// Store implements storage.Store on PostgreSQL.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger

	apiKeys  *APIKeyStore
	sessions *SessionStore
	users    *UserStore
}

// NewStore connects, optionally migrates, and returns the store.
func NewStore(cfg *Config, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.Migrate {
		if err := Migrate(db.DB, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return newStoreWithDB(db, logger), nil
}

func newStoreWithDB(db *sqlx.DB, logger *zap.Logger) *Store {
	logger = logger.Named("postgres")
	return &Store{
		db:       db,
		logger:   logger,
		apiKeys:  &APIKeyStore{db: db},
		sessions: &SessionStore{db: db},
		users:    &UserStore{db: db},
	}
}

func (s *Store) APIKeys() storage.APIKeyStore   { return s.apiKeys }
func (s *Store) Sessions() storage.SessionStore { return s.sessions }
func (s *Store) Users() storage.UserStore       { return s.users }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }
