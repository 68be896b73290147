package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateline/gateline/pkg/apierr"
)

func passwordRules() []ParamRule {
	return []ParamRule{
		{
			Param:    "username",
			Required: true,
			Validation: map[string]any{
				RuleIsType:     "string",
				RuleValidEmail: true,
			},
		},
		{
			Param:    "password",
			Required: true,
			Validation: map[string]any{
				RuleIsType:    "string",
				RuleMinLength: float64(6),
			},
		},
	}
}

func aggregateOf(t *testing.T, err error) []Issue {
	t.Helper()
	var e *apierr.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, "malformed", e.Kind)
	issues, ok := e.Detail.([]Issue)
	require.True(t, ok)
	return issues
}

func TestParamsPassThrough(t *testing.T) {
	data := map[string]any{
		"username": "jon@gateline.dev",
		"password": "s3cret-enough",
	}

	out, err := Params(data, passwordRules())
	require.NoError(t, err)

	// Pass-through, not a copy.
	out["marker"] = true
	assert.True(t, data["marker"].(bool))
}

func TestParamsShortPassword(t *testing.T) {
	data := map[string]any{
		"username": "x@x.com",
		"password": "abc",
	}

	_, err := Params(data, passwordRules())
	issues := aggregateOf(t, err)

	require.Len(t, issues, 1)
	assert.Equal(t, CodeMinLength, issues[0].Code)
	assert.Equal(t, "password", issues[0].Param)
	assert.Equal(t, map[string]any{"min": 6, "sent": 3}, issues[0].OptDesc)
}

func TestParamsMissingRequired(t *testing.T) {
	_, err := Params(map[string]any{}, passwordRules())
	issues := aggregateOf(t, err)

	require.Len(t, issues, 2)
	for _, issue := range issues {
		assert.Equal(t, CodeMissingArg, issue.Code)
	}
	assert.Equal(t, "username", issues[0].Param)
	assert.Equal(t, "password", issues[1].Param)
}

func TestParamsMissingOptionalIsFine(t *testing.T) {
	rules := []ParamRule{{Param: "nickname", Required: false, Validation: map[string]any{RuleMinLength: 2}}}
	_, err := Params(map[string]any{}, rules)
	assert.NoError(t, err)
}

func TestParamsAggregatesPerParameter(t *testing.T) {
	rules := []ParamRule{{
		Param:    "handle",
		Required: true,
		Validation: map[string]any{
			RuleMinLength: 10,
			RuleIsType:    "string",
		},
	}}

	_, err := Params(map[string]any{"handle": float64(12)}, rules)
	issues := aggregateOf(t, err)

	// Both the type and the length rules fire for the same parameter.
	require.Len(t, issues, 2)
	assert.Equal(t, CodeTypeMismatch, issues[0].Code)
	assert.Equal(t, CodeMinLength, issues[1].Code)
}

func TestCheckEmail(t *testing.T) {
	cases := []struct {
		value any
		valid bool
	}{
		{"jon@gateline.dev", true},
		{"first.last@sub.example.co", true},
		{"not-an-email", false},
		{"missing@tld", false},
		{float64(42), false},
	}
	for _, tc := range cases {
		issue := Check(tc.value, RuleValidEmail, true, "email")
		if tc.valid {
			assert.Nil(t, issue, "value %v", tc.value)
		} else {
			require.NotNil(t, issue, "value %v", tc.value)
			assert.Equal(t, CodeInvalidEmail, issue.Code)
		}
	}
}

func TestCheckTypeDateIsLoose(t *testing.T) {
	// Any value that parses as a date passes regardless of its JSON type.
	assert.Nil(t, Check("2024-03-01", RuleIsType, "date", "when"))
	assert.Nil(t, Check("2024-03-01T10:00:00Z", RuleIsType, "date", "when"))
	assert.Nil(t, Check(float64(1709251200), RuleIsType, "date", "when"))

	issue := Check("not a date", RuleIsType, "date", "when")
	require.NotNil(t, issue)
	assert.Equal(t, CodeTypeMismatch, issue.Code)
}

func TestCheckTypeStrict(t *testing.T) {
	issue := Check(float64(1), RuleIsType, "string", "name")
	require.NotNil(t, issue)
	assert.Equal(t, map[string]any{"expected_type": "string", "provided_type": "number"}, issue.OptDesc)

	assert.Nil(t, Check(true, RuleIsType, "boolean", "flag"))
	assert.Nil(t, Check(float64(3.14), RuleIsType, "number", "ratio"))
}

func TestCheckInSet(t *testing.T) {
	set := []any{"red", "green", "blue"}
	assert.Nil(t, Check("green", RuleInSet, set, "color"))

	issue := Check("mauve", RuleInSet, set, "color")
	require.NotNil(t, issue)
	assert.Equal(t, CodeOutOfRange, issue.Code)
	assert.Equal(t, map[string]any{"acceptable_set": set, "sent": "mauve"}, issue.OptDesc)
}

func TestCheckLengthCountsCodePoints(t *testing.T) {
	// Four runes, more than four bytes.
	assert.Nil(t, Check("héllo"[:6], RuleMaxLength, 5, "word"))
	assert.Nil(t, Check("日本語五", RuleMaxLength, 4, "word"))

	issue := Check("日本語五", RuleMinLength, 5, "word")
	require.NotNil(t, issue)
	assert.Equal(t, map[string]any{"min": 5, "sent": 4}, issue.OptDesc)
}

func TestCheckURL(t *testing.T) {
	assert.Nil(t, Check("https://gateline.dev/docs", RuleIsURL, true, "site"))
	assert.Nil(t, Check("example.com", RuleIsURL, true, "site"))

	issue := Check("not a url", RuleIsURL, true, "site")
	require.NotNil(t, issue)
	assert.Equal(t, CodeNotURL, issue.Code)
}

func TestCheckJSON(t *testing.T) {
	assert.Nil(t, Check(`{"a":1}`, RuleIsJSON, true, "blob"))

	issue := Check(`{"a":`, RuleIsJSON, true, "blob")
	require.NotNil(t, issue)
	assert.Equal(t, CodeNotJSON, issue.Code)
}

func TestCheckArray(t *testing.T) {
	assert.Nil(t, Check([]any{1, 2}, RuleIsArray, true, "ids"))

	issue := Check("nope", RuleIsArray, true, "ids")
	require.NotNil(t, issue)
	assert.Equal(t, CodeNotArray, issue.Code)
}

func TestCheckRegex(t *testing.T) {
	assert.Nil(t, Check("ABC-123", RuleRegex, `^[A-Z]{3}-\d{3}$`, "sku"))

	issue := Check("abc123", RuleRegex, `^[A-Z]{3}-\d{3}$`, "sku")
	require.NotNil(t, issue)
	assert.Equal(t, CodeBadPattern, issue.Code)
}

func TestKnownRule(t *testing.T) {
	for _, kind := range []string{RuleMaxLength, RuleMinLength, RuleValidEmail, RuleIsType, RuleInSet, RuleIsURL, RuleIsJSON, RuleIsArray, RuleRegex} {
		assert.True(t, KnownRule(kind), kind)
	}
	assert.False(t, KnownRule("is_palindrome"))
}
