package credential

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/storage"
	"github.com/gateline/gateline/pkg/apierr"
)

// ResolveSession returns the session for a token, cache-first. Only the
// core identity fields are replicated into the cache; free-form options
// stay in the database copy.
func (s *Store) ResolveSession(ctx context.Context, token string) (*domain.Session, error) {
	session, found, err := lookup(ctx, s.cache, sessionPrefix+token,
		decodeSession,
		func(ctx context.Context) (*domain.Session, string, error) {
			dbSession, err := s.db.Sessions().GetByToken(ctx, token)
			if err != nil {
				return nil, "", err
			}
			return dbSession, encodeSession(dbSession.CacheCopy()), nil
		})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apierr.Make(apierr.InvalidSession, nil)
	}
	return session, nil
}

// CreateSession mints a session for a user: database first, cache second.
// A session is never cached unless it has been durably persisted.
func (s *Store) CreateSession(ctx context.Context, userID int64) (*domain.Session, error) {
	session := &domain.Session{
		UserID: userID,
		Token:  domain.NewSessionToken(),
	}
	if err := s.db.Sessions().Create(ctx, session); err != nil {
		return nil, apierr.Make(apierr.SessionCreationError, err.Error())
	}

	s.cache.Set(ctx, sessionPrefix+session.Token, encodeSession(session.CacheCopy()))
	s.logger.Debug("session created", zap.Int64("user_id", userID))
	return session, nil
}

// ExtendSession merges free-form metadata into both copies of a session,
// without re-authenticating. The cache copy is only touched if present.
func (s *Store) ExtendSession(ctx context.Context, token string, options map[string]any) error {
	key := sessionPrefix + token
	if cached, ok := s.cache.Get(ctx, key); ok {
		if session, ok := decodeSession(cached); ok {
			session.Extend(options)
			s.cache.Set(ctx, key, encodeSessionWithOptions(session))
		}
	}

	if err := s.db.Sessions().UpdateOptions(ctx, token, options); err != nil {
		return apierr.Make(apierr.SessionWriteError, err.Error())
	}
	return nil
}

// DestroySession removes both copies of a session. The two deletions run
// concurrently and independently; there is no transaction spanning cache
// and database, so one side can fail with the other already gone. That
// partial state is reported, not hidden: the database copy is
// authoritative and a later destroy retry converges.
func (s *Store) DestroySession(ctx context.Context, token string) error {
	var wg sync.WaitGroup
	var dbErr, cacheErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		dbErr = s.db.Sessions().Delete(ctx, token)
	}()
	go func() {
		defer wg.Done()
		cacheErr = s.cache.Del(ctx, sessionPrefix+token)
	}()
	wg.Wait()

	if dbErr != nil {
		return apierr.Make(apierr.ModelError, dbErr.Error())
	}
	if cacheErr != nil {
		return apierr.Make(apierr.SessionFlushError, cacheErr.Error())
	}
	return nil
}

// CheckCredentials verifies a username/password pair and returns the user
// ID. Unknown user and wrong password are indistinguishable to the caller.
func (s *Store) CheckCredentials(ctx context.Context, username, password string) (int64, error) {
	user, err := s.db.Users().GetByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, apierr.Make(apierr.InvalidCredentials, nil)
	}
	if err != nil {
		return 0, apierr.Make(apierr.ModelError, err.Error())
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return 0, apierr.Make(apierr.InvalidCredentials, nil)
	}
	return user.ID, nil
}

// HashPassword produces a bcrypt hash for storage alongside a user.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func encodeSession(session *domain.Session) string {
	encoded, _ := json.Marshal(session)
	return string(encoded)
}

// encodeSessionWithOptions keeps extended metadata in the cached copy.
func encodeSessionWithOptions(session *domain.Session) string {
	merged := map[string]any{
		"userId":       session.UserID,
		"sessionToken": session.Token,
		"sessionStart": session.Start,
	}
	for k, v := range session.Options {
		merged[k] = v
	}
	encoded, _ := json.Marshal(merged)
	return string(encoded)
}

func decodeSession(cached string) (*domain.Session, bool) {
	var session domain.Session
	if err := json.Unmarshal([]byte(cached), &session); err != nil || session.Token == "" {
		return nil, false
	}
	var extras map[string]any
	if json.Unmarshal([]byte(cached), &extras) == nil {
		delete(extras, "userId")
		delete(extras, "sessionToken")
		delete(extras, "sessionStart")
		if len(extras) > 0 {
			session.Options = extras
		}
	}
	return &session, true
}
