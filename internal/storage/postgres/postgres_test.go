package postgres

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/storage"
)

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return newStoreWithDB(sqlx.NewDb(db, "sqlmock"), zap.NewNop()), mock
}

func TestAPIKeyGetEnabledHit(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectQuery(`SELECT key, secret, enabled, created_at FROM api_keys`).
		WithArgs("abc.key").
		WillReturnRows(sqlmock.NewRows([]string{"key", "secret", "enabled", "created_at"}).
			AddRow("abc.key", "abc.secret", true, time.Now()))

	pair, err := store.APIKeys().GetEnabled(t.Context(), "abc.key")
	require.NoError(t, err)
	assert.Equal(t, "abc.secret", pair.Secret)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyGetEnabledMiss(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectQuery(`SELECT key, secret, enabled, created_at FROM api_keys`).
		WithArgs("gone.key").
		WillReturnRows(sqlmock.NewRows([]string{"key", "secret", "enabled", "created_at"}))

	_, err := store.APIKeys().GetEnabled(t.Context(), "gone.key")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAPIKeyCreateDuplicate(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectExec(`INSERT INTO api_keys`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := store.APIKeys().Create(t.Context(), domain.NewAPIKeyPair())
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestAPIKeySetEnabledUnknownKey(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectExec(`UPDATE api_keys SET enabled`).
		WithArgs("nope.key", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.APIKeys().SetEnabled(t.Context(), "nope.key", false)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSessionGetByTokenJoinsUser(t *testing.T) {
	store, mock := mockStore(t)
	start := time.Now()

	mock.ExpectQuery(`SELECT s.token, s.user_id, s.session_start, s.options`).
		WithArgs("tok123").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "session_start", "options"}).
			AddRow("tok123", int64(7), start, []byte(`{"role":"admin"}`)))

	session, err := store.Sessions().GetByToken(t.Context(), "tok123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), session.UserID)
	assert.Equal(t, "admin", session.Options["role"])
}

func TestSessionCreateSetsStart(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectExec(`INSERT INTO user_sessions`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &domain.Session{UserID: 7, Token: "tok123"}
	require.NoError(t, store.Sessions().Create(t.Context(), session))
	assert.False(t, session.Start.IsZero())
}

func TestUserCreateReturnsID(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	user := &domain.User{Username: "jon", PasswordHash: "hash"}
	require.NoError(t, store.Users().Create(t.Context(), user))
	assert.Equal(t, int64(42), user.ID)
}
