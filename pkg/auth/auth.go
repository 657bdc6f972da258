// Package auth acquires header credentials for test suites. Providers are
// declared in configuration and resolved lazily: the first case rendering
// {{.auth.<name>}} triggers acquisition, and the value is cached for the run.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Method is one way of obtaining a header credential.
type Method interface {
	// Acquire returns the header name and value, e.g. ("Authorization", "Bearer x").
	Acquire(ctx context.Context) (header string, value string, err error)
}

// Provider pairs a logical name with a configured method.
type Provider struct {
	Name   string
	Method Method
}

// New builds a provider from its declared type and a raw config map.
func New(typ, name string, config map[string]interface{}) (*Provider, error) {
	t := strings.ToLower(strings.TrimSpace(typ))
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("auth: provider type=%s: missing name", typ)
	}
	var m Method
	var err error
	switch t {
	case "basic":
		m, err = decodeBasic(config)
	case "bearer":
		m, err = decodeBearer(config)
	case "oauth2", "client_credentials":
		m, err = decodeClientCredentials(config)
	default:
		return nil, fmt.Errorf("auth: unknown provider type: %s", typ)
	}
	if err != nil {
		return nil, err
	}
	return &Provider{Name: name, Method: m}, nil
}

// AcquireValue resolves the provider to the header value only, for template
// injection of {{.auth.<name>}} into an Authorization header.
func (p *Provider) AcquireValue(ctx context.Context) (string, error) {
	_, v, err := p.Method.Acquire(ctx)
	return v, err
}

func headerOrDefault(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return "Authorization"
	}
	return h
}

func decode(config map[string]interface{}, out any) error {
	if err := mapstructure.Decode(config, out); err != nil {
		return fmt.Errorf("auth: decode provider config: %w", err)
	}
	return nil
}
