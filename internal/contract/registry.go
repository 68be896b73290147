package contract

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/validate"
	"github.com/gateline/gateline/pkg/apierr"
)

// Registry accumulates every service's contracts into one global mapping
// from logical method name to contract. Write-once at startup, read-many
// thereafter; no locking is needed because registration finishes before the
// first request is served.
type Registry struct {
	contracts map[string]*Contract
	names     map[string]struct{}
	logger    *zap.Logger
}

// NewRegistry creates an empty contract registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		contracts: make(map[string]*Contract),
		names:     make(map[string]struct{}),
		logger:    logger.Named("registry"),
	}
}

// RegisterService compiles and accumulates a service's endpoint contracts.
//
// Handler resolution is fail-safe: an endpoint whose handler name is missing
// or unresolvable binds a default handler that always fails with a generic
// server error, so one misconfigured endpoint cannot keep the rest of the
// service (or other services) from registering. Structural problems are
// fail-fast: a logical-name collision, an unknown validation kind, or an
// uncompilable regex pattern is a contract error reported at startup. All
// endpoints are still visited so a single bad endpoint does not hide errors
// in the ones after it.
func (r *Registry) RegisterService(svc Service) error {
	var errs []error

	for _, def := range svc.Endpoints {
		if def.Name == "" {
			errs = append(errs, fmt.Errorf("service %s: endpoint missing logical name", svc.Name))
			continue
		}
		if _, taken := r.names[def.Name]; taken {
			errs = append(errs, fmt.Errorf("service %s: logical name %q already registered", svc.Name, def.Name))
			continue
		}
		if err := checkRules(def); err != nil {
			errs = append(errs, fmt.Errorf("service %s: endpoint %s: %w", svc.Name, def.Name, err))
			continue
		}

		c := compile(svc.Name, def)
		if handler, ok := svc.Handlers[def.HandlerName]; ok && handler != nil {
			c.Handler = handler
		} else {
			r.logger.Warn("handler not resolved, binding default failing handler",
				zap.String("service", svc.Name),
				zap.String("endpoint", def.Name),
				zap.String("handler", def.HandlerName))
			c.Handler = defaultHandler
		}

		r.contracts[c.Name] = c
		r.names[c.Name] = struct{}{}
	}

	return errors.Join(errs...)
}

// Lookup returns the contract for a logical method name.
func (r *Registry) Lookup(name string) (*Contract, bool) {
	c, ok := r.contracts[name]
	return c, ok
}

// Exists reports whether a logical method name is registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.names[name]
	return ok
}

// All returns every contract, ordered by logical name.
func (r *Registry) All() []*Contract {
	out := make([]*Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// REST returns the contracts that bind a REST route.
func (r *Registry) REST() []*Contract {
	var out []*Contract
	for _, c := range r.All() {
		if c.Method != "" && c.Path != "" {
			out = append(out, c)
		}
	}
	return out
}

// checkRules rejects unknown validation kinds and bad regex patterns at
// registration time, so they can never surface mid-request.
func checkRules(def Definition) error {
	for _, rule := range def.Params {
		for kind, comp := range rule.Validation {
			if !validate.KnownRule(kind) {
				return fmt.Errorf("param %s: unknown validation kind %q", rule.Param, kind)
			}
			if kind == validate.RuleRegex {
				if err := validate.CompilePattern(comp); err != nil {
					return fmt.Errorf("param %s: %w", rule.Param, err)
				}
			}
		}
	}
	return nil
}

// defaultHandler stands in for unresolvable handlers.
func defaultHandler(ctx context.Context, req *Request) (any, error) {
	return nil, apierr.Make(apierr.ServerError, nil)
}
