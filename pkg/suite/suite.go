// Package suite loads and runs declarative YAML test suites. A suite is a
// named, ordered list of cases; each case issues an HTTP request and/or a
// database check and verifies the outcome with the harness assertion helpers.
package suite

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cposada23/qaharness/pkg/env"
	"gopkg.in/yaml.v3"
)

// Suite is one YAML test file.
type Suite struct {
	Name string   `yaml:"name"`
	Env  *env.Env `yaml:"env"`
	// StopOnFailure aborts the remaining cases after the first failure.
	// Default: each case fails independently.
	StopOnFailure bool   `yaml:"stop_on_failure"`
	Cases         []Case `yaml:"cases"`
}

// Case is a single verification step. Request and DB may both be present;
// the request runs first.
type Case struct {
	Name     string        `yaml:"name"`
	Request  *RequestSpec  `yaml:"request"`
	Response *ResponseSpec `yaml:"response"`
	DB       *DBSpec       `yaml:"db"`
}

// decodeYAMLTo is an internal helper to unmarshal YAML into the provided Suite.
func (s *Suite) decodeYAMLTo(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	var tmp Suite
	if err := dec.Decode(&tmp); err != nil {
		return fmt.Errorf("failed to decode YAML suite: %w", err)
	}
	*s = tmp
	return nil
}

// LoadFromFile loads a Suite from a YAML file path into the receiver.
func (s *Suite) LoadFromFile(path string) error {
	clean := filepath.Clean(path)
	// #nosec G304 -- path comes from the configured suite directory listing
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := s.decodeYAMLTo(f); err != nil {
		return err
	}
	if strings.TrimSpace(s.Name) == "" {
		s.Name = strings.TrimSuffix(filepath.Base(clean), filepath.Ext(clean))
	}
	return nil
}

// DecodeYAML decodes a Suite from the provided reader into the receiver.
func (s *Suite) DecodeYAML(r io.Reader) error {
	return s.decodeYAMLTo(r)
}

// LoadDir loads every .yaml/.yml suite in dir, sorted by filename so
// execution order is stable.
func LoadDir(dir string) ([]*Suite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var out []*Suite
	for _, p := range paths {
		var s Suite
		if err := s.LoadFromFile(p); err != nil {
			return nil, fmt.Errorf("suite %s: %w", p, err)
		}
		out = append(out, &s)
	}
	return out, nil
}
