package testkit

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode fails when the scenario's expected code differs.
func AssertStatusCode(t *testing.T, s *Scenario, actual int, body []byte) {
	t.Helper()
	assert.Equal(t, s.ExpectedCode, actual,
		"[%s] %s %s status mismatch\nbody: %s", s.Name, s.RequestMethod, s.RequestURL, string(body))
}

// AssertJSONSubset fails unless every key and value in expected also
// appears in actual. Arrays must match in length.
func AssertJSONSubset(t *testing.T, name string, expected, actual []byte) {
	t.Helper()

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", name)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", name, string(actual)) {
		return
	}

	if diffs := DiffJSON("", expVal, actVal); len(diffs) > 0 {
		t.Errorf("[%s] response body mismatch:\n%s\nbody: %s", name, strings.Join(diffs, "\n"), string(actual))
	}
}

// DiffJSON returns human-readable differences between two decoded JSON
// values. Object keys only present in actual are ignored.
func DiffJSON(path string, expected, actual interface{}) []string {
	var diffs []string
	switch exp := expected.(type) {
	case map[string]interface{}:
		act, ok := actual.(map[string]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected object, got %T", keyPath(path), actual))
		}
		for k, ev := range exp {
			p := keyPath(path) + "." + k
			av, exists := act[k]
			if !exists {
				diffs = append(diffs, fmt.Sprintf("  %s: missing in actual", p))
				continue
			}
			diffs = append(diffs, DiffJSON(p, ev, av)...)
		}
	case []interface{}:
		act, ok := actual.([]interface{})
		if !ok {
			return append(diffs, fmt.Sprintf("  %s: expected array, got %T", keyPath(path), actual))
		}
		if len(exp) != len(act) {
			diffs = append(diffs, fmt.Sprintf("  %s: array length expected=%d actual=%d", keyPath(path), len(exp), len(act)))
		}
		for i := 0; i < len(exp) && i < len(act); i++ {
			diffs = append(diffs, DiffJSON(fmt.Sprintf("%s[%d]", keyPath(path), i), exp[i], act[i])...)
		}
	default:
		if fmt.Sprintf("%v", expected) != fmt.Sprintf("%v", actual) {
			diffs = append(diffs, fmt.Sprintf("  %s:\n    - %v\n    + %v", keyPath(path), expected, actual))
		}
	}
	return diffs
}

func keyPath(path string) string {
	if path == "" {
		return "root"
	}
	return strings.TrimPrefix(path, ".")
}
