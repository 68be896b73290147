// Package dispatch binds compiled contracts onto live HTTP routes. The same
// contract serves both transports: REST routes take the whole body as the
// argument bag, the RPC endpoint multiplexes every method through one POST
// route with the arguments nested under "args". Credentials and the request
// signature always ride at the top level of the body, which is what the
// signature covers.
package dispatch

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/contract"
	"github.com/gateline/gateline/internal/gate"
	"github.com/gateline/gateline/internal/respond"
	"github.com/gateline/gateline/pkg/apierr"
	"github.com/gateline/gateline/pkg/middleware"
)

// RPC request body keys.
const (
	methodField = "method"
	argsField   = "args"
	hintField   = "hint"
)

// apiExpectsField wraps the contract echoed back by a debug hint.
const apiExpectsField = "api_expects"

// Dispatcher routes requests through the gate chain to contract handlers.
type Dispatcher struct {
	registry *contract.Registry
	chain    *gate.Chain
	logger   *zap.Logger
	endpoint string
	debug    bool
}

// New creates a dispatcher over a registry and gate chain. endpoint is the
// path the RPC multiplexer answers on.
func New(reg *contract.Registry, chain *gate.Chain, endpoint string, debug bool, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		chain:    chain,
		logger:   logger.Named("dispatch"),
		endpoint: "/" + strings.TrimPrefix(endpoint, "/"),
		debug:    debug,
	}
}

// Name identifies the dispatcher in server logs.
func (d *Dispatcher) Name() string { return "dispatch" }

// RegisterRoutes binds the RPC multiplexer and every REST contract.
func (d *Dispatcher) RegisterRoutes(router *gin.Engine) {
	d.BindRPC(router)
	d.BindREST(router)
}

// BindREST registers a route for every contract that declares a method and
// path. Contracts without both are RPC-only and are skipped.
func (d *Dispatcher) BindREST(r gin.IRouter) {
	for _, ct := range d.registry.REST() {
		handler := d.restHandler(ct)
		switch strings.ToLower(ct.Method) {
		case "get":
			r.GET(ct.Path, handler)
		case "post":
			r.POST(ct.Path, handler)
		case "put":
			r.PUT(ct.Path, handler)
		case "delete":
			r.DELETE(ct.Path, handler)
		default:
			d.logger.Warn("unsupported REST method, endpoint not bound",
				zap.String("endpoint", ct.Name),
				zap.String("method", ct.Method))
		}
	}
}

// BindRPC registers the single POST route every RPC method shares.
func (d *Dispatcher) BindRPC(r gin.IRouter) {
	r.POST(d.endpoint, d.rpcHandler)
}

// restHandler serves one REST contract. The requested name reported back to
// the client is the route path.
func (d *Dispatcher) restHandler(ct *contract.Contract) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readBody(c)
		if err != nil {
			respond.Failure(c, ct.Path, apierr.Make(apierr.MalformedJSON, nil), nil, d.debug)
			return
		}
		d.execute(c, ct.Path, body, body, ct)
	}
}

// rpcHandler resolves the logical method named in the body, then hands off
// to the shared execution path. Method resolution failures are reported
// before argument presence is considered, so an unknown method never reads
// as a missing-args problem.
func (d *Dispatcher) rpcHandler(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		respond.Failure(c, "", apierr.Make(apierr.MalformedJSON, nil), nil, d.debug)
		return
	}

	method, _ := body[methodField].(string)
	if method == "" {
		respond.Failure(c, "", apierr.Make(apierr.NoMethodSupplied, nil), body, d.debug)
		return
	}
	ct, ok := d.registry.Lookup(method)
	if !ok {
		respond.Failure(c, method, apierr.Make(apierr.NoMethodFound, method), body, d.debug)
		return
	}

	if args, ok := body[argsField].(map[string]any); ok {
		d.execute(c, method, body, args, ct)
		return
	}
	if truthy(body[hintField]) && d.debug {
		respond.Success(c, method, gin.H{apiExpectsField: ct})
		return
	}
	respond.Failure(c, method, apierr.Make(apierr.NoArgsSupplied, nil), body, d.debug)
}

// execute runs the gate chain and, when it passes, the contract's handler.
// Gate failures echo the full body in debug mode; handler failures echo the
// validated argument bag, which is what the handler actually saw.
func (d *Dispatcher) execute(c *gin.Context, requested string, payload, args map[string]any, ct *contract.Contract) {
	c.Set(middleware.RequestedKey, requested)
	ctx := c.Request.Context()

	result, err := d.chain.Run(ctx, payload, args, ct)
	if err != nil {
		respond.Failure(c, requested, err, payload, d.debug)
		return
	}

	out, err := ct.Handler(ctx, &contract.Request{Args: result.Data, Session: result.Session})
	if err != nil {
		d.logger.Error("handler failed",
			zap.String("requested", requested),
			zap.Error(err))
		respond.Failure(c, requested, err, result.Data, d.debug)
		return
	}
	respond.Success(c, requested, out)
}

// readBody parses the request body as a JSON object. An empty body reads as
// an empty argument bag, which matters for GET routes.
func readBody(c *gin.Context) (map[string]any, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	if body == nil {
		body = map[string]any{}
	}
	return body, nil
}

// truthy mirrors loose boolean coercion for the hint flag, so clients may
// send true, 1, or any non-empty marker.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
