// Package validate implements the rule-based parameter checker applied to
// every request before its handler runs. Checks are pure: a value and a rule
// set go in, a list of violations comes out.
package validate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gateline/gateline/pkg/apierr"
)

// Rule kinds supported by the engine. Contracts using any other kind are
// rejected at registration time, not at request time.
const (
	RuleMaxLength  = "max_length"
	RuleMinLength  = "min_length"
	RuleValidEmail = "valid_email"
	RuleIsType     = "is_type"
	RuleInSet      = "in_set"
	RuleIsURL      = "is_url"
	RuleIsJSON     = "is_json"
	RuleIsArray    = "is_array"
	RuleRegex      = "regex"
)

// Violation codes carried in the aggregate error detail.
const (
	CodeMissingArg   = "missing_arg"
	CodeMaxLength    = "max_length_exceeded"
	CodeMinLength    = "min_length_not_met"
	CodeInvalidEmail = "invalid_email"
	CodeTypeMismatch = "argument_type_mismatch"
	CodeOutOfRange   = "argument_out_of_range"
	CodeNotURL       = "argument_not_url"
	CodeNotJSON      = "argument_not_json"
	CodeNotArray     = "argument_not_an_array"
	CodeBadPattern   = "argument_invalid_pattern"
)

// ParamRule describes the validation contract for one request parameter.
type ParamRule struct {
	Param      string         `json:"param" yaml:"param"`
	Required   bool           `json:"required" yaml:"required"`
	Validation map[string]any `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// Issue is a single violation within the aggregate validation error.
type Issue struct {
	Code    string `json:"code"`
	Param   string `json:"param"`
	OptDesc any    `json:"opt_desc"`
}

type checker func(arg, comp any, param string) *Issue

var checkers = map[string]checker{
	RuleMaxLength:  checkMaxLength,
	RuleMinLength:  checkMinLength,
	RuleValidEmail: checkEmail,
	RuleIsType:     checkType,
	RuleInSet:      checkInSet,
	RuleIsURL:      checkURL,
	RuleIsJSON:     checkJSON,
	RuleIsArray:    checkArray,
	RuleRegex:      checkRegex,
}

// KnownRule reports whether kind names a supported validation.
func KnownRule(kind string) bool {
	_, ok := checkers[kind]
	return ok
}

// Check runs a single validation kind against a value. A nil return means
// the value passed. Unknown kinds never reach here in normal operation; they
// are filtered at contract registration.
func Check(arg any, kind string, comp any, param string) *Issue {
	c, ok := checkers[kind]
	if !ok {
		return &Issue{Code: CodeBadPattern, Param: param, OptDesc: fmt.Sprintf("unknown validation kind %q", kind)}
	}
	return c(arg, comp, param)
}

// Params enforces the rule set against a request's argument bag. Every
// configured validation runs for every present parameter; violations are
// aggregated rather than short-circuited. A missing required parameter
// contributes exactly one missing_arg issue and skips its other rules.
// On success the original data is returned unchanged (a pass-through, not a
// copy). On failure the aggregate renders as a single malformed error whose
// detail carries the full violation list.
func Params(data map[string]any, rules []ParamRule) (map[string]any, error) {
	var issues []Issue

	for _, rule := range rules {
		arg, present := data[rule.Param]
		if !present {
			if rule.Required {
				issues = append(issues, Issue{Code: CodeMissingArg, Param: rule.Param, OptDesc: nil})
			}
			continue
		}
		for _, kind := range sortedKinds(rule.Validation) {
			if issue := Check(arg, kind, rule.Validation[kind], rule.Param); issue != nil {
				issues = append(issues, *issue)
			}
		}
	}

	if len(issues) > 0 {
		return nil, apierr.Make(apierr.Malformed, issues)
	}
	return data, nil
}

// sortedKinds keeps violation ordering deterministic across runs.
func sortedKinds(validation map[string]any) []string {
	kinds := make([]string, 0, len(validation))
	for kind := range validation {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func checkMaxLength(arg, comp any, param string) *Issue {
	bound := toInt(comp)
	sent := runeLength(arg)
	if sent <= bound {
		return nil
	}
	return &Issue{Code: CodeMaxLength, Param: param, OptDesc: map[string]any{"max": bound, "sent": sent}}
}

func checkMinLength(arg, comp any, param string) *Issue {
	bound := toInt(comp)
	sent := runeLength(arg)
	if sent >= bound {
		return nil
	}
	return &Issue{Code: CodeMinLength, Param: param, OptDesc: map[string]any{"min": bound, "sent": sent}}
}

// emailPattern is an RFC-approximate shape check, not a full RFC 5322 parse.
var emailPattern = regexp.MustCompile(`^[^@\s]+(\.[^@\s]+)*@((\[[0-9]{1,3}(\.[0-9]{1,3}){3}\])|(([a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}))$`)

func checkEmail(arg, _ any, param string) *Issue {
	s, ok := arg.(string)
	if ok && emailPattern.MatchString(s) {
		return nil
	}
	return &Issue{Code: CodeInvalidEmail, Param: param, OptDesc: arg}
}

// checkType compares the JSON type of the value against the expected name.
// The "date" case is deliberately looser: any value whose string form parses
// as a date passes, regardless of its original type. Callers relying on
// strict typing should pair it with an explicit is_type check.
func checkType(arg, comp any, param string) *Issue {
	expected, _ := comp.(string)
	ok := false
	switch expected {
	case "string":
		_, ok = arg.(string)
	case "number":
		ok = isNumber(arg)
	case "boolean":
		_, ok = arg.(bool)
	case "date":
		ok = parsesAsDate(arg)
	}
	if ok {
		return nil
	}
	return &Issue{Code: CodeTypeMismatch, Param: param, OptDesc: map[string]any{
		"expected_type": expected,
		"provided_type": jsonTypeOf(arg),
	}}
}

func checkInSet(arg, comp any, param string) *Issue {
	set, _ := comp.([]any)
	for _, member := range set {
		if reflect.DeepEqual(arg, member) {
			return nil
		}
	}
	return &Issue{Code: CodeOutOfRange, Param: param, OptDesc: map[string]any{
		"acceptable_set": set,
		"sent":           arg,
	}}
}

// urlPattern is a shape check covering scheme-optional host/path URLs.
var urlPattern = regexp.MustCompile(`^(?:(?:https?|ftp)://)?(?:[a-zA-Z0-9\x{00a1}-\x{ffff}](?:[a-zA-Z0-9\x{00a1}-\x{ffff}-]*[a-zA-Z0-9\x{00a1}-\x{ffff}])?)(?:\.[a-zA-Z0-9\x{00a1}-\x{ffff}](?:[a-zA-Z0-9\x{00a1}-\x{ffff}-]*[a-zA-Z0-9\x{00a1}-\x{ffff}])?)*(?:\.[a-zA-Z\x{00a1}-\x{ffff}]{2,})(?::\d{2,5})?(?:/\S*)?$`)

func checkURL(arg, _ any, param string) *Issue {
	s, ok := arg.(string)
	if ok && urlPattern.MatchString(s) {
		return nil
	}
	return &Issue{Code: CodeNotURL, Param: param, OptDesc: arg}
}

func checkJSON(arg, _ any, param string) *Issue {
	s, ok := arg.(string)
	if ok {
		var v any
		if json.Unmarshal([]byte(s), &v) == nil {
			return nil
		}
	}
	return &Issue{Code: CodeNotJSON, Param: param, OptDesc: arg}
}

func checkArray(arg, _ any, param string) *Issue {
	if _, ok := arg.([]any); ok {
		return nil
	}
	return &Issue{Code: CodeNotArray, Param: param, OptDesc: arg}
}

func checkRegex(arg, comp any, param string) *Issue {
	pattern, _ := comp.(string)
	re, err := regexp.Compile(pattern)
	if err == nil && re.MatchString(fmt.Sprint(arg)) {
		return nil
	}
	return &Issue{Code: CodeBadPattern, Param: param, OptDesc: map[string]any{
		"expected_pattern": pattern,
		"provided":         arg,
	}}
}

// CompilePattern reports whether a regex rule's pattern is valid. Used by
// the registry to reject bad patterns at registration time.
func CompilePattern(comp any) error {
	pattern, ok := comp.(string)
	if !ok {
		return fmt.Errorf("regex rule requires a string pattern, got %T", comp)
	}
	_, err := regexp.Compile(pattern)
	return err
}

// runeLength counts code points, so multi-byte characters count once.
func runeLength(arg any) int {
	s, ok := arg.(string)
	if !ok {
		s = fmt.Sprint(arg)
	}
	return utf8.RuneCountInString(s)
}

func toInt(comp any) int {
	switch v := comp.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func isNumber(arg any) bool {
	switch arg.(type) {
	case float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	time.RFC1123,
	time.RFC1123Z,
}

func parsesAsDate(arg any) bool {
	if isNumber(arg) {
		// Numeric values are treated as epoch timestamps.
		return true
	}
	s, ok := arg.(string)
	if !ok {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func jsonTypeOf(arg any) string {
	switch arg.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		if isNumber(arg) {
			return "number"
		}
		return fmt.Sprintf("%T", arg)
	}
}
