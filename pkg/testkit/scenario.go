// Package testkit drives the HTTP API from tests, either call by call
// through a Client or from JSON scenario files.
//
// Scenario files live next to the *_test.go files that run them:
//
//	testdata/scenarios/
//	  show_missing_product.json       ← scenario
//	  register_bad_role_req.json      ← request body
//	  register_bad_role_res.json      ← expected response (subset match)
//
//	func TestScenarios(t *testing.T) {
//	    testkit.RunDir(t, k.Handler(), "testdata/scenarios", testkit.Vars{"seller": token})
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scenario describes a single request and what it should produce.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	RequestMethod   string            `json:"requestMethod"`
	RequestURL      string            `json:"requestUrl"`
	RequestFileName string            `json:"requestFileName"`
	Headers         map[string]string `json:"headers"`

	// ResponseFileName holds JSON that must be contained in the response
	// body. Keys absent from the file are not compared.
	ResponseFileName string `json:"responseFileName"`
	ExpectedCode     int    `json:"expectedCode"`

	dir string
}

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(abs), ".json")
	}
	if s.RequestURL == "" {
		return nil, fmt.Errorf("testkit: %q: requestUrl is required", abs)
	}
	if s.ExpectedCode == 0 {
		return nil, fmt.Errorf("testkit: %q: expectedCode is required", abs)
	}
	s.dir = filepath.Dir(abs)
	return &s, nil
}

// RequestBodyPath returns the absolute request body path, or "".
func (s *Scenario) RequestBodyPath() string {
	return s.resolve(s.RequestFileName)
}

// ResponseBodyPath returns the absolute expected response path, or "".
func (s *Scenario) ResponseBodyPath() string {
	return s.resolve(s.ResponseFileName)
}

func (s *Scenario) resolve(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// isScenarioFile skips request and response fixtures sharing the directory.
func isScenarioFile(name string) bool {
	if filepath.Ext(name) != ".json" {
		return false
	}
	base := strings.TrimSuffix(name, ".json")
	return !strings.HasSuffix(base, "_req") && !strings.HasSuffix(base, "_res")
}
