// Package gate runs the fixed pre-handler check sequence: API key,
// request signature, session token, parameter validation. The chain
// short-circuits on the first failing gate; only parameter validation
// aggregates multiple violations, and only within itself.
package gate

import (
	"context"

	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/contract"
	"github.com/gateline/gateline/internal/credential"
	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/signing"
	"github.com/gateline/gateline/internal/validate"
	"github.com/gateline/gateline/pkg/apierr"
)

// Payload keys carrying credentials. Authentication rides embedded in the
// JSON body, the same convention the signature covers.
const (
	APIKeyField       = "api_key"
	SessionTokenField = "session_token"
)

// Result is what a fully passed chain yields to the handler.
type Result struct {
	Data    map[string]any
	Session *domain.Session
}

// Chain validates requests against their contract before dispatch.
type Chain struct {
	creds  *credential.Store
	logger *zap.Logger
}

// NewChain creates a gate chain over a credential store.
func NewChain(creds *credential.Store, logger *zap.Logger) *Chain {
	return &Chain{
		creds:  creds,
		logger: logger.Named("gates"),
	}
}

// Run applies every gate the contract demands, in fixed order. payload is
// the full request body (where credentials and the signature live); args is
// the argument bag the parameter rules apply to. For REST requests the two
// are the same map.
func (c *Chain) Run(ctx context.Context, payload, args map[string]any, ct *contract.Contract) (*Result, error) {
	if ct.Auth.APIKey {
		key, err := c.apiKeyGate(ctx, payload)
		if err != nil {
			return nil, err
		}
		if err := c.signatureGate(ctx, payload, key); err != nil {
			return nil, err
		}
	}

	var session *domain.Session
	if ct.Auth.SessionToken {
		var err error
		session, err = c.sessionGate(ctx, payload)
		if err != nil {
			return nil, err
		}
	}

	data, err := validate.Params(args, ct.Params)
	if err != nil {
		return nil, err
	}

	return &Result{Data: data, Session: session}, nil
}

// apiKeyGate checks that an API key is present and resolvable.
func (c *Chain) apiKeyGate(ctx context.Context, payload map[string]any) (string, error) {
	key, _ := payload[APIKeyField].(string)
	if key == "" {
		return "", apierr.Make(apierr.NoAPIKey, nil)
	}
	if err := c.creds.ResolveAPIKey(ctx, key); err != nil {
		return "", err
	}
	return key, nil
}

// signatureGate verifies the payload was signed by the key holder.
func (c *Chain) signatureGate(ctx context.Context, payload map[string]any, key string) error {
	secret, err := c.creds.SecretFor(ctx, key)
	if err != nil {
		return err
	}
	if !signing.Verify(payload, secret) {
		c.logger.Debug("signature mismatch", zap.String("api_key", key))
		return apierr.Make(apierr.InvalidSignature, nil)
	}
	return nil
}

// sessionGate resolves the session the token names.
func (c *Chain) sessionGate(ctx context.Context, payload map[string]any) (*domain.Session, error) {
	token, _ := payload[SessionTokenField].(string)
	if token == "" {
		return nil, apierr.Make(apierr.NoSessionToken, nil)
	}
	return c.creds.ResolveSession(ctx, token)
}
