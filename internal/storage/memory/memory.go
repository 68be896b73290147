// Package memory implements storage on in-process maps, for development and
// tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/storage"
)

// Store implements an in-memory storage
type Store struct {
	apiKeys  *APIKeyStore
	sessions *SessionStore
	users    *UserStore
}

// NewStore creates a new in-memory store
func NewStore() *Store {
	return &Store{
		apiKeys:  &APIKeyStore{data: make(map[string]*domain.APIKeyPair)},
		sessions: &SessionStore{data: make(map[string]*domain.Session)},
		users:    &UserStore{data: make(map[int64]*domain.User)},
	}
}

func (s *Store) APIKeys() storage.APIKeyStore   { return s.apiKeys }
func (s *Store) Sessions() storage.SessionStore { return s.sessions }
func (s *Store) Users() storage.UserStore       { return s.users }
func (s *Store) Close() error                   { return nil }
func (s *Store) Ping(ctx context.Context) error { return nil }

// APIKeyStore is the in-memory API key store.
type APIKeyStore struct {
	mu   sync.RWMutex
	data map[string]*domain.APIKeyPair

	// reads counts GetEnabled calls, so tests can assert cache behavior.
	reads int
}

func (s *APIKeyStore) Create(ctx context.Context, pair *domain.APIKeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[pair.Key]; exists {
		return storage.ErrAlreadyExists
	}
	cp := *pair
	s.data[pair.Key] = &cp
	return nil
}

func (s *APIKeyStore) GetEnabled(ctx context.Context, key string) (*domain.APIKeyPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	pair, ok := s.data[key]
	if !ok || !pair.Enabled {
		return nil, storage.ErrNotFound
	}
	cp := *pair
	return &cp, nil
}

func (s *APIKeyStore) SetEnabled(ctx context.Context, key string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.data[key]
	if !ok {
		return storage.ErrNotFound
	}
	pair.Enabled = enabled
	return nil
}

func (s *APIKeyStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *APIKeyStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}

// Reads reports how many database reads have happened.
func (s *APIKeyStore) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}

// SessionStore is the in-memory session store.
type SessionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Session

	// FailCreate makes Create fail, for durability tests.
	FailCreate bool
}

func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreate {
		return storage.ErrDatabase
	}
	if _, exists := s.data[session.Token]; exists {
		return storage.ErrAlreadyExists
	}
	if session.Start.IsZero() {
		session.Start = time.Now()
	}
	cp := *session
	s.data[session.Token] = &cp
	return nil
}

func (s *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.data[token]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (s *SessionStore) UpdateOptions(ctx context.Context, token string, options map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.data[token]
	if !ok {
		return storage.ErrNotFound
	}
	session.Extend(options)
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token) // idempotent
	return nil
}

// UserStore is the in-memory user store.
type UserStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.User
	nextID int64
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data {
		if existing.Username == user.Username {
			return storage.ErrAlreadyExists
		}
	}
	s.nextID++
	user.ID = s.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	cp := *user
	s.data[user.ID] = &cp
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.data {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}
