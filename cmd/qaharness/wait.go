package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cposada23/qaharness"
	"github.com/cposada23/qaharness/cmd/qaharness/config"
	"github.com/cposada23/qaharness/pkg/httpx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultWaitTimeout  = 60 * time.Second
	defaultWaitInterval = 2 * time.Second
)

// waitParams holds the parsed and normalized parameters for waiting
type waitParams struct {
	url      string
	method   string
	expected int
	timeout  time.Duration
	interval time.Duration
}

// parseWaitConfig parses and normalizes wait configuration with defaults
func parseWaitConfig(wc config.WaitConfig, baseURL string) waitParams {
	url := strings.TrimSpace(wc.URL)
	if url == "" {
		url = strings.TrimSuffix(baseURL, "/") + "/healthz"
	} else if strings.HasPrefix(url, "/") {
		url = strings.TrimSuffix(baseURL, "/") + url
	}

	method := strings.ToUpper(strings.TrimSpace(wc.Method))
	if method == "" {
		method = "GET"
	}

	expected := wc.Status
	if expected == 0 {
		expected = 200
	}

	timeout := defaultWaitTimeout
	if s := strings.TrimSpace(wc.Timeout); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		}
	}

	interval := defaultWaitInterval
	if s := strings.TrimSpace(wc.Interval); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			interval = d
		}
	}

	return waitParams{url: url, method: method, expected: expected, timeout: timeout, interval: interval}
}

// waitForTarget polls until the health check returns the expected status or the
// timeout elapses. This is a readiness gate before running suites, not a
// request retry policy.
func waitForTarget(ctx context.Context, client *httpx.Client, p waitParams) error {
	logger := qaharness.GetLogger().WithComponent("wait")
	logger.Info("waiting for target", "url", p.url, "status", p.expected, "timeout", p.timeout)

	deadline := time.Now().Add(p.timeout)
	for {
		resp, err := client.Do(ctx, p.method, p.url, nil, nil)
		if err == nil && resp.StatusCode == p.expected {
			logger.Info("target ready", "url", p.url, "status_code", resp.StatusCode)
			return nil
		}
		if err != nil {
			logger.Debug("health check failed", "error", err)
		} else {
			logger.Debug("health check status mismatch", "status_code", resp.StatusCode)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("target %s not ready after %s", p.url, p.timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.interval):
		}
	}
}

// maybeWaitForTarget runs the readiness check when a wait block is
// configured. An empty config skips it entirely.
func maybeWaitForTarget(ctx context.Context, client *httpx.Client, wc config.WaitConfig, baseURL string) error {
	if wc == (config.WaitConfig{}) {
		return nil
	}
	return waitForTarget(ctx, client, parseWaitConfig(wc, baseURL))
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until the deployment target responds before running suites",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		v := viper.GetViper()

		var cfg config.ConfigDoc
		if err := cfg.Load(v.GetString("config")); err != nil {
			return err
		}
		if err := cfg.SetupLogging(); err != nil {
			return err
		}
		t := cfg.ResolveTarget(v.GetString("env"))
		client := httpx.NewWithTLS(cfg.TLSConfig())
		return waitForTarget(ctx, client, parseWaitConfig(cfg.Wait, t.BaseURL))
	},
}
