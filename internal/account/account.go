// Package account is the framework's built-in authentication service. It
// registers through the same contract machinery as user services and covers
// the session lifecycle: login, logout, extend.
package account

import (
	"context"

	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/contract"
	"github.com/gateline/gateline/internal/credential"
	"github.com/gateline/gateline/internal/validate"
)

type service struct {
	creds  *credential.Store
	logger *zap.Logger
}

// Service builds the account service over a credential store.
func Service(creds *credential.Store, logger *zap.Logger) contract.Service {
	s := &service{
		creds:  creds,
		logger: logger.Named("account"),
	}

	return contract.Service{
		Name: "account",
		Endpoints: []contract.Definition{
			{
				Name:        "account.login",
				Method:      "post",
				Path:        "/account/login",
				Desc:        "Exchange username and password for a session token.",
				HandlerName: "login",
				Auth:        contract.Auth{APIKey: true},
				Params: []validate.ParamRule{
					{Param: "username", Required: true, Validation: map[string]any{validate.RuleIsType: "string"}},
					{Param: "password", Required: true, Validation: map[string]any{validate.RuleIsType: "string"}},
				},
				Returns: []contract.Return{
					{Fields: map[string]any{"userId": "number", "sessionToken": "string", "sessionStart": "string"}},
				},
			},
			{
				Name:        "account.logout",
				Desc:        "Destroy the calling session.",
				HandlerName: "logout",
				Auth:        contract.Auth{APIKey: true, SessionToken: true},
				Returns: []contract.Return{
					{Fields: map[string]any{"logged_out": "bool"}},
				},
			},
			{
				Name:        "account.extend",
				Desc:        "Merge options into the calling session.",
				HandlerName: "extend",
				Auth:        contract.Auth{APIKey: true, SessionToken: true},
				Params: []validate.ParamRule{
					{Param: "options", Required: true},
				},
				Returns: []contract.Return{
					{Fields: map[string]any{"extended": "bool"}},
				},
			},
		},
		Handlers: map[string]contract.Handler{
			"login":  s.login,
			"logout": s.logout,
			"extend": s.extend,
		},
	}
}

func (s *service) login(ctx context.Context, req *contract.Request) (any, error) {
	username, _ := req.Args["username"].(string)
	password, _ := req.Args["password"].(string)

	userID, err := s.creds.CheckCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	session, err := s.creds.CreateSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session opened", zap.Int64("user_id", userID))
	return session, nil
}

func (s *service) logout(ctx context.Context, req *contract.Request) (any, error) {
	if err := s.creds.DestroySession(ctx, req.Session.Token); err != nil {
		return nil, err
	}
	s.logger.Info("session closed", zap.Int64("user_id", req.Session.UserID))
	return map[string]any{"logged_out": true}, nil
}

func (s *service) extend(ctx context.Context, req *contract.Request) (any, error) {
	options, _ := req.Args["options"].(map[string]any)
	if err := s.creds.ExtendSession(ctx, req.Session.Token, options); err != nil {
		return nil, err
	}
	return map[string]any{"extended": true}, nil
}
