// Package integration exercises the full request path: HTTP transport,
// gate chain, credential store, and contract handlers wired together the
// same way cmd/server wires them, over in-memory storage and cache.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/account"
	"github.com/gateline/gateline/internal/admin"
	"github.com/gateline/gateline/internal/cache"
	"github.com/gateline/gateline/internal/contract"
	"github.com/gateline/gateline/internal/credential"
	"github.com/gateline/gateline/internal/dispatch"
	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/gate"
	"github.com/gateline/gateline/internal/signing"
	"github.com/gateline/gateline/internal/storage"
	"github.com/gateline/gateline/internal/storage/memory"
	"github.com/gateline/gateline/pkg/apierr"
	"github.com/gateline/gateline/pkg/middleware"
)

// AdminSecret signs admin bearer tokens in tests.
const AdminSecret = "integration-test-secret"

// Envelope mirrors the wire response shape.
type Envelope struct {
	Requested string         `json:"requested"`
	Success   bool           `json:"success"`
	Error     *apierr.Error  `json:"error"`
	Data      map[string]any `json:"data"`
}

// TestHarness provides a complete test environment with an HTTP server,
// a wired credential store, and helper methods for making API requests.
type TestHarness struct {
	T       *testing.T
	Server  *httptest.Server
	Admin   *httptest.Server
	Storage storage.Store
	Creds   *credential.Store
	Key     *domain.APIKeyPair

	Client *http.Client
}

// NewTestHarness creates a new test harness with running test servers. The
// extra services register alongside the built-in account service.
func NewTestHarness(t *testing.T, services ...contract.Service) *TestHarness {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := memory.NewStore()
	creds := credential.NewStore(cache.NewMemory(), store, logger)

	key, err := creds.CreateKeyPair(t.Context())
	if err != nil {
		t.Fatalf("create key pair: %v", err)
	}

	registry := contract.NewRegistry(logger)
	if err := registry.RegisterService(account.Service(creds, logger)); err != nil {
		t.Fatalf("register account service: %v", err)
	}
	for _, svc := range services {
		if err := registry.RegisterService(svc); err != nil {
			t.Fatalf("register service %s: %v", svc.Name, err)
		}
	}

	dispatcher := dispatch.New(registry, gate.NewChain(creds, logger), "json-api", true, logger)
	router := gin.New()
	dispatcher.RegisterRoutes(router)

	adminRouter := gin.New()
	adminRouter.Use(middleware.AdminAuth(AdminSecret, logger))
	admin.NewHandlers(creds, registry, logger).RegisterAdminRoutes(adminRouter)

	h := &TestHarness{
		T:       t,
		Server:  httptest.NewServer(router),
		Admin:   httptest.NewServer(adminRouter),
		Storage: store,
		Creds:   creds,
		Key:     key,
		Client:  &http.Client{},
	}
	t.Cleanup(h.Server.Close)
	t.Cleanup(h.Admin.Close)
	return h
}

// CreateUser inserts a user with a hashed password.
func (h *TestHarness) CreateUser(username, password string) *domain.User {
	h.T.Helper()
	hash, err := credential.HashPassword(password)
	if err != nil {
		h.T.Fatalf("hash password: %v", err)
	}
	user := &domain.User{Username: username, PasswordHash: hash}
	if err := h.Storage.Users().Create(h.T.Context(), user); err != nil {
		h.T.Fatalf("create user: %v", err)
	}
	return user
}

// RPC posts a body to the RPC endpoint and decodes the envelope.
func (h *TestHarness) RPC(body map[string]any) *Envelope {
	h.T.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		h.T.Fatalf("marshal body: %v", err)
	}
	resp, err := h.Client.Post(h.Server.URL+"/json-api", "application/json", bytes.NewReader(raw))
	if err != nil {
		h.T.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.T.Fatalf("unexpected transport status %d", resp.StatusCode)
	}
	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		h.T.Fatalf("decode envelope: %v", err)
	}
	return &env
}

// SignedRPC signs the body with the harness key pair and posts it. The
// method and args ride in the same body the signature covers.
func (h *TestHarness) SignedRPC(method string, args map[string]any, sessionToken string) *Envelope {
	h.T.Helper()
	body := map[string]any{
		"method":  method,
		"args":    args,
		"api_key": h.Key.Key,
	}
	if sessionToken != "" {
		body["session_token"] = sessionToken
	}
	return h.RPC(signing.Sign(body, h.Key.Secret))
}

// AdminRequest calls the admin API with a freshly minted bearer token.
func (h *TestHarness) AdminRequest(method, path string, body map[string]any) (*http.Response, error) {
	h.T.Helper()
	token, err := middleware.MintAdminToken(AdminSecret, "gateline", "tests", time.Hour)
	if err != nil {
		h.T.Fatalf("mint token: %v", err)
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			h.T.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, h.Admin.URL+path, reader)
	if err != nil {
		h.T.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	return h.Client.Do(req)
}
