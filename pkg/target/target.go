package target

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cposada23/qaharness/internal/common"
	"gopkg.in/yaml.v3"
)

// EnvVar is the process environment variable that selects the deployment target.
const EnvVar = "QAHARNESS_ENV"

// DefaultName is used when no target is selected anywhere.
const DefaultName = "dev"

// Environment describes one named deployment target.
type Environment struct {
	BaseURL string            `yaml:"base_url" mapstructure:"base_url"`
	Name    string            `yaml:"environment" mapstructure:"environment"`
	Vars    map[string]string `yaml:"vars" mapstructure:"vars"`
}

// Default is the fallback configuration used when a target cannot be resolved.
// Resolution is never fatal: tests still run, possibly against the wrong host,
// and the downgrade is reported as a warning.
var Default = Environment{
	BaseURL: "https://example.cypress.io",
	Name:    DefaultName,
}

// builtin is the static table of known deployment targets. A per-environment
// YAML artifact, when present, overrides the table entry.
var builtin = map[string]Environment{
	"dev":     {BaseURL: "https://dev.example.com", Name: "dev"},
	"qa":      {BaseURL: "https://qa.example.com", Name: "qa"},
	"staging": {BaseURL: "https://staging.example.com", Name: "staging"},
	"prod":    {BaseURL: "https://www.example.com", Name: "prod"},
}

// Names returns the names in the static table, for CLI help and validation output.
func Names() []string {
	out := make([]string, 0, len(builtin))
	for k := range builtin {
		out = append(out, k)
	}
	return out
}

// FromProcessEnv returns the selected target name: QAHARNESS_ENV or "dev".
func FromProcessEnv() string {
	if v := strings.TrimSpace(os.Getenv(EnvVar)); v != "" {
		return v
	}
	return DefaultName
}

// Resolve returns the configuration for the named target from the static
// table. An empty name falls back to FromProcessEnv. Unknown names degrade to
// Default with a warning.
func Resolve(name string) Environment {
	if strings.TrimSpace(name) == "" {
		name = FromProcessEnv()
	}
	key := strings.ToLower(strings.TrimSpace(name))
	if e, ok := builtin[key]; ok {
		return e
	}
	common.GetLogger().WithComponent("target").Warn(
		"unknown environment, using default", "environment", name, "base_url", Default.BaseURL)
	return Default
}

// ResolveDir resolves the named target, preferring a YAML artifact
// <dir>/<name>.yaml over the static table. Any load failure (missing file,
// malformed YAML, empty base_url) is logged and falls through to Resolve.
func ResolveDir(name, dir string) Environment {
	if strings.TrimSpace(name) == "" {
		name = FromProcessEnv()
	}
	if strings.TrimSpace(dir) == "" {
		return Resolve(name)
	}
	logger := common.GetLogger().WithComponent("target")
	key := strings.ToLower(strings.TrimSpace(name))
	path := filepath.Join(dir, key+".yaml")
	e, err := loadArtifact(path)
	if err != nil {
		logger.Warn("environment artifact not usable, falling back",
			"environment", name, "path", path, "error", err)
		return Resolve(name)
	}
	if e.Name == "" {
		e.Name = key
	}
	logger.Debug("environment resolved from artifact", "environment", e.Name, "base_url", e.BaseURL)
	return e
}

func loadArtifact(path string) (Environment, error) {
	clean := filepath.Clean(path)
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return Environment{}, statErr
		}
		return Environment{}, fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- artifact path is derived from the configured environments dir
	f, err := os.Open(clean)
	if err != nil {
		return Environment{}, err
	}
	defer func() { _ = f.Close() }()
	var e Environment
	if err := yaml.NewDecoder(f).Decode(&e); err != nil {
		return Environment{}, err
	}
	if strings.TrimSpace(e.BaseURL) == "" {
		return Environment{}, fmt.Errorf("artifact %s: missing base_url", clean)
	}
	return e, nil
}
