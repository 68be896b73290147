package storage

import (
	"context"
	"errors"

	"github.com/gateline/gateline/internal/domain"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrDatabase      = errors.New("database error")
)

// APIKeyStore defines API key persistence. The database row is the
// authoritative copy; the credential store layers a cache on top.
type APIKeyStore interface {
	// Create inserts a new key pair.
	Create(ctx context.Context, pair *domain.APIKeyPair) error

	// GetEnabled retrieves a key pair by key, only if it is enabled.
	GetEnabled(ctx context.Context, key string) (*domain.APIKeyPair, error)

	// SetEnabled toggles a key's enabled flag.
	SetEnabled(ctx context.Context, key string, enabled bool) error

	// Delete removes a key pair entirely. Deleting an absent key is not
	// an error; production callers usually disable instead.
	Delete(ctx context.Context, key string) error

	// Count reports how many key pairs exist, enabled or not. Startup
	// uses it to decide whether to mint an initial pair.
	Count(ctx context.Context) (int, error)
}

// SessionStore defines session persistence.
type SessionStore interface {
	// Create inserts a new session row.
	Create(ctx context.Context, session *domain.Session) error

	// GetByToken retrieves a session by token, including its free-form
	// options and the owning user's identity.
	GetByToken(ctx context.Context, token string) (*domain.Session, error)

	// UpdateOptions replaces a session's free-form options.
	UpdateOptions(ctx context.Context, token string, options map[string]any) error

	// Delete removes a session by token. Deleting an absent session is not
	// an error.
	Delete(ctx context.Context, token string) error
}

// UserStore defines user persistence.
type UserStore interface {
	// Create inserts a new user and assigns its ID.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user with credentials by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// Store aggregates all storage interfaces
type Store interface {
	APIKeys() APIKeyStore
	Sessions() SessionStore
	Users() UserStore

	// Close closes the storage connection
	Close() error

	// Ping checks if the storage is alive
	Ping(ctx context.Context) error
}
