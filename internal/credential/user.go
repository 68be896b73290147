package credential

import (
	"context"

	"github.com/gateline/gateline/internal/domain"
)

// CreateUser hashes the password and stores a new user. Uniqueness is
// enforced by the user store; storage.ErrAlreadyExists passes through so
// callers can report the conflict.
func (s *Store) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Username: username, PasswordHash: hash}
	if err := s.db.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
