package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateline/gateline/internal/domain"
)

func TestAdminRequiresToken(t *testing.T) {
	h := NewTestHarness(t)

	resp, err := h.Client.Post(h.Admin.URL+"/admin/keys", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminKeyLifecycle(t *testing.T) {
	h := NewTestHarness(t)

	resp, err := h.AdminRequest(http.MethodPost, "/admin/keys", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var pair domain.APIKeyPair
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
	require.NotEmpty(t, pair.Key)

	resp, err = h.AdminRequest(http.MethodPost, "/admin/keys/"+pair.Key+"/disable", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Error(t, h.Creds.ResolveAPIKey(t.Context(), pair.Key))

	resp, err = h.AdminRequest(http.MethodPost, "/admin/keys/"+pair.Key+"/enable", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, h.Creds.ResolveAPIKey(t.Context(), pair.Key))
}

func TestAdminCreateUserThenLogin(t *testing.T) {
	h := NewTestHarness(t)

	resp, err := h.AdminRequest(http.MethodPost, "/admin/users", map[string]any{
		"username": "dallas",
		"password": "nostromo1",
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	env := h.SignedRPC("account.login", map[string]any{
		"username": "dallas",
		"password": "nostromo1",
	}, "")
	require.True(t, env.Success, "login failed: %+v", env.Error)
}

func TestAdminListContracts(t *testing.T) {
	h := NewTestHarness(t)

	resp, err := h.AdminRequest(http.MethodGet, "/admin/contracts", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Contracts []struct {
			Name string `json:"json_api"`
		} `json:"contracts"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	names := make([]string, 0, len(body.Contracts))
	for _, c := range body.Contracts {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "account.login")
	assert.Contains(t, names, "account.logout")
	assert.Contains(t, names, "account.extend")
}
