package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
)

// BasicConfig holds configuration for Basic authentication.
type BasicConfig struct {
	Header   string `mapstructure:"header"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type basicMethod struct{ c BasicConfig }

func decodeBasic(config map[string]interface{}) (Method, error) {
	var c BasicConfig
	if err := decode(config, &c); err != nil {
		return nil, err
	}
	return basicMethod{c: c}, nil
}

// Acquire returns a Basic auth header value constructed from username and
// password. Header defaults to Authorization when empty.
func (m basicMethod) Acquire(_ context.Context) (string, string, error) {
	u := strings.TrimSpace(m.c.Username)
	p := strings.TrimSpace(m.c.Password)
	if u == "" || p == "" {
		return "", "", errors.New("auth: basic requires username and password")
	}
	cred := base64.StdEncoding.EncodeToString([]byte(u + ":" + p))
	return headerOrDefault(m.c.Header), "Basic " + cred, nil
}

// BearerConfig holds a static token credential.
type BearerConfig struct {
	Header string `mapstructure:"header"`
	Token  string `mapstructure:"token"`
}

type bearerMethod struct{ c BearerConfig }

func decodeBearer(config map[string]interface{}) (Method, error) {
	var c BearerConfig
	if err := decode(config, &c); err != nil {
		return nil, err
	}
	return bearerMethod{c: c}, nil
}

func (m bearerMethod) Acquire(_ context.Context) (string, string, error) {
	tok := strings.TrimSpace(m.c.Token)
	if tok == "" {
		return "", "", errors.New("auth: bearer requires token")
	}
	if !strings.HasPrefix(tok, "Bearer ") {
		tok = "Bearer " + tok
	}
	return headerOrDefault(m.c.Header), tok, nil
}
