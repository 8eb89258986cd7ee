package testkit

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// Vars are substituted into scenario URLs and headers as {{name}}, so a
// scenario can reference a token minted by the test.
type Vars map[string]string

func (v Vars) expand(s string) string {
	for k, val := range v {
		s = strings.ReplaceAll(s, "{{"+k+"}}", val)
	}
	return s
}

// RunDir runs every scenario in dir as a subtest, in file name order.
func RunDir(t *testing.T, handler http.Handler, dir string, vars Vars) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("testkit: read dir %q: %v", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && isScenarioFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		t.Fatalf("testkit: no scenarios in %q", dir)
	}

	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}
		t.Run(s.Name, func(t *testing.T) {
			Run(t, handler, s, vars)
		})
	}
}

// Run fires one scenario against handler and asserts on the result.
func Run(t *testing.T, handler http.Handler, s *Scenario, vars Vars) {
	t.Helper()

	var body io.Reader
	if p := s.RequestBodyPath(); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatalf("[%s] read request file %q: %v", s.Name, p, err)
		}
		body = bytes.NewReader([]byte(vars.expand(string(data))))
	}

	method := strings.ToUpper(s.RequestMethod)
	if method == "" {
		method = http.MethodGet
	}

	req := httptest.NewRequest(method, vars.expand(s.RequestURL), body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range s.Headers {
		req.Header.Set(k, vars.expand(v))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	AssertStatusCode(t, s, rec.Code, rec.Body.Bytes())

	if p := s.ResponseBodyPath(); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", s.Name, p, err)
			return
		}
		AssertJSONSubset(t, s.Name, expected, rec.Body.Bytes())
	}
}
