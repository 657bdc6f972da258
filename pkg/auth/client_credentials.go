package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentialsConfig holds configuration for the OAuth2 Client
// Credentials grant.
type ClientCredentialsConfig struct {
	Header    string   `mapstructure:"header"`
	ClientID  string   `mapstructure:"client_id"`
	ClientSec string   `mapstructure:"client_secret"`
	TokenURL  string   `mapstructure:"token_url"`
	Scopes    []string `mapstructure:"scopes"`
}

type clientCredentialsMethod struct{ c ClientCredentialsConfig }

func decodeClientCredentials(config map[string]interface{}) (Method, error) {
	var c ClientCredentialsConfig
	if err := decode(config, &c); err != nil {
		return nil, err
	}
	return clientCredentialsMethod{c: c}, nil
}

func (m clientCredentialsMethod) Acquire(ctx context.Context) (string, string, error) {
	clientID := strings.TrimSpace(m.c.ClientID)
	clientSecret := strings.TrimSpace(m.c.ClientSec)
	tokenURL := strings.TrimSpace(m.c.TokenURL)
	if tokenURL == "" {
		return "", "", errors.New("auth: token_url is required for client_credentials grant")
	}
	if clientID == "" || clientSecret == "" {
		return "", "", errors.New("auth: client_id and client_secret are required for client_credentials grant")
	}
	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       m.c.Scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	tok, err := cc.Token(ctx)
	if err != nil {
		return "", "", err
	}
	if tok == nil || !tok.Valid() || strings.TrimSpace(tok.AccessToken) == "" {
		return "", "", errors.New("auth: received invalid token")
	}
	typ := strings.TrimSpace(tok.TokenType)
	if typ == "" {
		typ = "Bearer"
	}
	return headerOrDefault(m.c.Header), typ + " " + tok.AccessToken, nil
}
