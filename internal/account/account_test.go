package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/cache"
	"github.com/gateline/gateline/internal/contract"
	"github.com/gateline/gateline/internal/credential"
	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/storage/memory"
	"github.com/gateline/gateline/pkg/apierr"
)

type fixture struct {
	creds *credential.Store
	svc   contract.Service
	user  *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewStore()
	creds := credential.NewStore(cache.NewMemory(), db, zap.NewNop())

	hash, err := credential.HashPassword("hunter22")
	require.NoError(t, err)
	user := &domain.User{Username: "ripley", PasswordHash: hash}
	require.NoError(t, db.Users().Create(t.Context(), user))

	return &fixture{
		creds: creds,
		svc:   Service(creds, zap.NewNop()),
		user:  user,
	}
}

func (f *fixture) call(t *testing.T, handler string, req *contract.Request) (any, error) {
	t.Helper()
	h, ok := f.svc.Handlers[handler]
	require.True(t, ok, "no handler %q", handler)
	return h(context.Background(), req)
}

func TestServiceContractsResolve(t *testing.T) {
	f := newFixture(t)
	reg := contract.NewRegistry(zap.NewNop())
	require.NoError(t, reg.RegisterService(f.svc))

	for _, name := range []string{"account.login", "account.logout", "account.extend"} {
		assert.True(t, reg.Exists(name), name)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	out, err := f.call(t, "login", &contract.Request{
		Args: map[string]any{"username": "ripley", "password": "hunter22"},
	})
	require.NoError(t, err)

	session, ok := out.(*domain.Session)
	require.True(t, ok)
	assert.Equal(t, f.user.ID, session.UserID)
	assert.NotEmpty(t, session.Token)

	resolved, err := f.creds.ResolveSession(t.Context(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, resolved.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	_, err := f.call(t, "login", &contract.Request{
		Args: map[string]any{"username": "ripley", "password": "nope"},
	})
	require.Error(t, err)
	assert.Equal(t, "invalidCredentials", err.(*apierr.Error).Kind)
}

func TestLoginUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.call(t, "login", &contract.Request{
		Args: map[string]any{"username": "ghost", "password": "hunter22"},
	})
	require.Error(t, err)
	assert.Equal(t, "invalidCredentials", err.(*apierr.Error).Kind)
}

func TestLogout(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	session, err := f.creds.CreateSession(ctx, f.user.ID)
	require.NoError(t, err)

	out, err := f.call(t, "logout", &contract.Request{Session: session})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"logged_out": true}, out)

	_, err = f.creds.ResolveSession(ctx, session.Token)
	require.Error(t, err)
	assert.Equal(t, "invalidSession", err.(*apierr.Error).Kind)
}

func TestExtend(t *testing.T) {
	ctx := t.Context()
	f := newFixture(t)
	session, err := f.creds.CreateSession(ctx, f.user.ID)
	require.NoError(t, err)

	out, err := f.call(t, "extend", &contract.Request{
		Session: session,
		Args:    map[string]any{"options": map[string]any{"theme": "dark"}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"extended": true}, out)
}
