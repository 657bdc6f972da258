package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cposada23/qaharness"
	"github.com/cposada23/qaharness/internal/httpc"
	"github.com/cposada23/qaharness/pkg/auth"
	"github.com/cposada23/qaharness/pkg/db"
	"github.com/cposada23/qaharness/pkg/env"
	"github.com/cposada23/qaharness/pkg/target"
	"gopkg.in/yaml.v3"
)

type AuthConfig struct {
	// Provider type key ("basic", "bearer", "oauth2")
	Type string `mapstructure:"type" yaml:"type"`
	// Logical name under which the acquired value is stored ({{.auth.<name>}})
	Name string `mapstructure:"name" yaml:"name"`
	// Provider-specific configuration
	Config map[string]interface{} `mapstructure:"config" yaml:"config"`
}

type EnvConfig struct {
	Name         string `mapstructure:"name" yaml:"name"`
	Value        string `mapstructure:"value" yaml:"value"`
	ValueFromEnv string `mapstructure:"valueFromEnv" yaml:"valueFromEnv"`
}

type LoggingConfig struct {
	Level         string `mapstructure:"level" yaml:"level"`                   // error, warn, info, debug
	Format        string `mapstructure:"format" yaml:"format"`                 // text, json, color
	MaskSensitive *bool  `mapstructure:"mask_sensitive" yaml:"mask_sensitive"` // enable/disable credential masking
	Color         *bool  `mapstructure:"color" yaml:"color"`
}

type ClientConfig struct {
	Insecure      bool   `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string `mapstructure:"max_tls_version" yaml:"max_tls_version"`
}

type WaitConfig struct {
	URL      string `mapstructure:"url" yaml:"url"`
	Method   string `mapstructure:"method" yaml:"method"`
	Status   int    `mapstructure:"status" yaml:"status"`
	Timeout  string `mapstructure:"timeout" yaml:"timeout"`
	Interval string `mapstructure:"interval" yaml:"interval"`
}

type ReportConfig struct {
	// HTML is the report output path; empty disables the HTML report.
	HTML    string `mapstructure:"html" yaml:"html"`
	NoColor bool   `mapstructure:"no_color" yaml:"no_color"`
}

type ConfigDoc struct {
	// Environment overrides QAHARNESS_ENV when set.
	Environment     string `mapstructure:"environment" yaml:"environment"`
	EnvironmentsDir string `mapstructure:"environments_dir" yaml:"environments_dir"`
	SuitesDir       string `mapstructure:"suites_dir" yaml:"suites_dir"`
	// Database is the inline config mapping, decoded through db.FromMap;
	// DatabaseFile points at a user-supplied YAML kept out of version
	// control. The file wins when both are set.
	Database     map[string]interface{} `mapstructure:"database" yaml:"database"`
	DatabaseFile string                 `mapstructure:"database_file" yaml:"database_file"`
	Auth         []AuthConfig           `mapstructure:"auth" yaml:"auth"`
	Env          []EnvConfig            `mapstructure:"env" yaml:"env"`
	Client       ClientConfig           `mapstructure:"client" yaml:"client"`
	Wait         WaitConfig             `mapstructure:"wait" yaml:"wait"`
	Logging      LoggingConfig          `mapstructure:"logging" yaml:"logging"`
	Report       ReportConfig           `mapstructure:"report" yaml:"report"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user/CI
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	return dec.Decode(c)
}

// ResolveTarget picks the deployment target: explicit name wins, then the
// config file, then QAHARNESS_ENV, then "dev".
func (c *ConfigDoc) ResolveTarget(name string) target.Environment {
	if strings.TrimSpace(name) == "" {
		name = c.Environment
	}
	return target.ResolveDir(name, c.EnvironmentsDir)
}

// GetEnv builds the base environment: target variables plus declared env
// entries (valueFromEnv pulls from the process environment).
func (c *ConfigDoc) GetEnv(t target.Environment) (*env.Env, error) {
	base := env.New()
	_ = base.SetString("global", "base_url", t.BaseURL)
	_ = base.SetString("global", "environment", t.Name)
	for k, v := range t.Vars {
		_ = base.SetString("global", k, v)
	}

	for _, kv := range c.Env {
		if kv.Name == "" {
			continue
		}
		val := kv.Value
		if envVar := strings.TrimSpace(kv.ValueFromEnv); val == "" && envVar != "" {
			val = os.Getenv(envVar)
			if val == "" {
				slog.Warn("env variable requested but empty or not set", "name", kv.Name, "env_var", kv.ValueFromEnv)
			}
		}
		_ = base.SetString("global", kv.Name, val)
	}
	return base, nil
}

// DecodeAuth installs lazy auth values into the env: acquisition happens the
// first time a case renders {{.auth.<name>}}.
func (c *ConfigDoc) DecodeAuth(ctx context.Context, e *env.Env) error {
	if e.Auth == nil {
		e.Auth = env.Map{}
	}
	for i, a := range c.Auth {
		provider, err := auth.New(a.Type, a.Name, a.Config)
		if err != nil {
			return fmt.Errorf("auth[%d]: %w", i, err)
		}
		p := provider
		e.Auth[p.Name] = e.MakeLazy(func(_ *env.Env) (string, error) {
			cctx := ctx
			if cctx == nil {
				cctx = context.Background()
			}
			return p.AcquireValue(cctx)
		})
	}
	return nil
}

// DatabaseConfig loads the active database configuration, preferring the
// user-supplied file. Returns nil when no database is configured.
func (c *ConfigDoc) DatabaseConfig() (*db.Config, error) {
	if strings.TrimSpace(c.DatabaseFile) != "" {
		clean := filepath.Clean(c.DatabaseFile)
		// #nosec G304 -- the database config path is user-provided on purpose
		f, err := os.Open(clean)
		if err != nil {
			return nil, fmt.Errorf("database_file: %w", err)
		}
		defer func() { _ = f.Close() }()
		var cfg db.Config
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("database_file: %w", err)
		}
		return &cfg, nil
	}
	if len(c.Database) > 0 {
		return db.FromMap(c.Database)
	}
	return nil, nil
}

// TLSConfig builds the client TLS settings from the config.
func (c *ConfigDoc) TLSConfig() *tls.Config {
	minV := httpc.ParseTLSVersion(c.Client.MinTLSVersion)
	maxV := httpc.ParseTLSVersion(c.Client.MaxTLSVersion)
	// #nosec G402 -- insecure mode exists for self-signed QA environments only
	cfg := &tls.Config{MinVersion: minV, MaxVersion: maxV}
	if c.Client.Insecure {
		cfg.InsecureSkipVerify = true
	}
	return cfg
}

func (c *ConfigDoc) parseLogLevel() (qaharness.LogLevel, error) {
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	switch level {
	case "error":
		return qaharness.LogLevelError, nil
	case "warn", "warning":
		return qaharness.LogLevelWarn, nil
	case "info", "":
		return qaharness.LogLevelInfo, nil
	case "debug":
		return qaharness.LogLevelDebug, nil
	default:
		return qaharness.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings.
func (c *ConfigDoc) SetupLogging() error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}

	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	useColor := false
	if c.Logging.Color != nil {
		useColor = *c.Logging.Color
	} else if format == "color" || format == "colour" {
		useColor = true
	}

	var logger *qaharness.Logger
	switch format {
	case "json":
		logger = qaharness.NewJSONLogger(level)
	case "color", "colour":
		logger = qaharness.NewColorLogger(level)
	case "text", "":
		if useColor {
			logger = qaharness.NewColorLogger(level)
		} else {
			logger = qaharness.NewLogger(level)
		}
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json, color)", c.Logging.Format)
	}

	maskingEnabled := true
	if c.Logging.MaskSensitive != nil {
		maskingEnabled = *c.Logging.MaskSensitive
	}
	logger.EnableMasking(maskingEnabled)

	qaharness.SetDefaultLogger(logger)
	qaharness.EnableMasking(maskingEnabled)

	logger.Info("logging configured",
		"level", level.String(),
		"format", format,
		"color", useColor,
		"mask_sensitive", maskingEnabled)
	return nil
}
