package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gateline/gateline/internal/validate"
	"github.com/gateline/gateline/pkg/apierr"
)

func echoHandler(ctx context.Context, req *Request) (any, error) {
	return req.Args, nil
}

func testService() Service {
	return Service{
		Name: "user",
		Endpoints: []Definition{
			{
				Name:        "user.create",
				Method:      "post",
				Path:        "/user",
				HandlerName: "create",
				Auth:        Auth{APIKey: true},
				Params: []validate.ParamRule{
					{Param: "username", Required: true, Validation: map[string]any{validate.RuleValidEmail: true}},
				},
			},
			{
				Name:        "user.get",
				HandlerName: "get",
			},
		},
		Handlers: map[string]Handler{
			"create": echoHandler,
			"get":    echoHandler,
		},
	}
}

func TestRegisterService(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.RegisterService(testService()))

	c, ok := r.Lookup("user.create")
	require.True(t, ok)
	assert.Equal(t, "user", c.Service)
	assert.Equal(t, "/user", c.Path)
	assert.True(t, c.Auth.APIKey)
	assert.True(t, r.Exists("user.get"))
	assert.False(t, r.Exists("user.nope"))
}

func TestPrototypeDefaults(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.RegisterService(testService()))

	c, _ := r.Lookup("user.get")
	assert.Equal(t, "post", c.Method)
	assert.Equal(t, "No description available for this endpoint", c.Desc)
	require.Len(t, c.Returns, 1)
	assert.Contains(t, c.Returns[0].Message, "not been described")
}

func TestLogicalNameCollision(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.RegisterService(testService()))

	err := r.RegisterService(Service{
		Name: "other",
		Endpoints: []Definition{
			{Name: "user.create", HandlerName: "x"},
			{Name: "other.fine", HandlerName: "x"},
		},
		Handlers: map[string]Handler{"x": echoHandler},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.create")

	// The colliding contract kept its original binding and the healthy
	// endpoint still registered.
	c, _ := r.Lookup("user.create")
	assert.Equal(t, "user", c.Service)
	assert.True(t, r.Exists("other.fine"))
}

func TestUnknownValidationKindFailsFast(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	err := r.RegisterService(Service{
		Name: "bad",
		Endpoints: []Definition{{
			Name:        "bad.endpoint",
			HandlerName: "x",
			Params: []validate.ParamRule{
				{Param: "v", Validation: map[string]any{"is_palindrome": true}},
			},
		}},
		Handlers: map[string]Handler{"x": echoHandler},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is_palindrome")
	assert.False(t, r.Exists("bad.endpoint"))
}

func TestBadRegexPatternFailsFast(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	err := r.RegisterService(Service{
		Name: "bad",
		Endpoints: []Definition{{
			Name:        "bad.regex",
			HandlerName: "x",
			Params: []validate.ParamRule{
				{Param: "v", Validation: map[string]any{validate.RuleRegex: "("}},
			},
		}},
		Handlers: map[string]Handler{"x": echoHandler},
	})

	assert.Error(t, err)
}

func TestMissingHandlerBindsDefault(t *testing.T) {
	r := NewRegistry(zap.NewNop())

	require.NoError(t, r.RegisterService(Service{
		Name:      "ghost",
		Endpoints: []Definition{{Name: "ghost.walk", HandlerName: "undefined"}},
		Handlers:  map[string]Handler{},
	}))

	c, ok := r.Lookup("ghost.walk")
	require.True(t, ok)
	require.NotNil(t, c.Handler)

	_, err := c.Handler(t.Context(), &Request{})
	e, ok := err.(*apierr.Error)
	require.True(t, ok)
	assert.Equal(t, "internal_error", e.Kind)
}

func TestRESTSelectsRoutableContracts(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.RegisterService(testService()))

	rest := r.REST()
	require.Len(t, rest, 1)
	assert.Equal(t, "user.create", rest[0].Name)
}

func TestAllSorted(t *testing.T) {
	r := NewRegistry(zap.NewNop())
	require.NoError(t, r.RegisterService(testService()))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "user.create", all[0].Name)
	assert.Equal(t, "user.get", all[1].Name)
}
