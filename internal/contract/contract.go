// Package contract defines the declarative endpoint description the rest of
// the framework compiles into live routes, and the registry services feed
// their definitions into at startup.
package contract

import (
	"context"

	"github.com/gateline/gateline/internal/domain"
	"github.com/gateline/gateline/internal/validate"
)

// Request is what a handler receives after the gate chain has passed:
// the validated argument bag plus the resolved session, when the contract
// required one.
type Request struct {
	Args    map[string]any
	Session *domain.Session
}

// Handler executes an endpoint's domain logic. An error carrying an
// apierr.Error passes to the client verbatim; anything else renders as a
// generic server error.
type Handler func(ctx context.Context, req *Request) (any, error)

// Auth names which credentials a contract demands.
type Auth struct {
	APIKey       bool `json:"api_key"`
	SessionToken bool `json:"session_token"`
}

// Contract is the compiled description of one endpoint. Contracts are built
// once at startup and never mutated afterwards, so concurrent requests share
// them freely.
type Contract struct {
	// Method and Path bind a REST route when both are set.
	Method string `json:"method,omitempty"`
	Path   string `json:"RESTUrl,omitempty"`

	// Name is the logical method name used for RPC dispatch. Globally
	// unique across all registered services.
	Name string `json:"json_api"`

	Service string              `json:"service"`
	Desc    string              `json:"desc"`
	Auth    Auth                `json:"authentication"`
	Params  []validate.ParamRule `json:"params"`
	Returns []Return            `json:"returns"`

	Handler Handler `json:"-"`
}

// Return documents one element of an endpoint's response shape, surfaced by
// the RPC hint mechanism in debug mode.
type Return struct {
	Message string         `json:"message,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// Definition is the declarative form a service supplies. HandlerName is
// resolved against the service's handler table at registration.
type Definition struct {
	Method      string               `json:"method" yaml:"method"`
	Path        string               `json:"RESTUrl" yaml:"rest_url"`
	Name        string               `json:"json_api" yaml:"json_api"`
	Desc        string               `json:"desc" yaml:"desc"`
	HandlerName string               `json:"handler" yaml:"handler"`
	Auth        Auth                 `json:"authentication" yaml:"authentication"`
	Params      []validate.ParamRule `json:"params" yaml:"params"`
	Returns     []Return             `json:"returns" yaml:"returns"`
}

// Service bundles a named set of endpoint definitions with the handler
// table their HandlerNames resolve against.
type Service struct {
	Name      string
	Endpoints []Definition
	Handlers  map[string]Handler
}

// prototype supplies the documented defaults merged under every definition,
// so every compiled contract has complete, predictable fields.
var prototype = Contract{
	Method: "post",
	Desc:   "No description available for this endpoint",
	Returns: []Return{
		{Message: "The return schema for this method has not been described."},
	},
}

// compile merges a definition over the prototype into a full contract.
func compile(service string, def Definition) *Contract {
	c := prototype
	c.Service = service
	c.Name = def.Name
	c.Auth = def.Auth
	c.Params = def.Params
	c.Path = def.Path
	if def.Method != "" {
		c.Method = def.Method
	}
	if def.Desc != "" {
		c.Desc = def.Desc
	}
	if def.Returns != nil {
		c.Returns = def.Returns
	}
	return &c
}
