// Package httpx issues single-shot HTTP requests for verification tests.
// Non-2xx statuses are returned as values, never as errors: the caller's own
// assertions decide pass/fail. There is no retry, backoff or timeout beyond
// the transport default.
package httpx

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cposada23/qaharness/internal/common"
	"github.com/cposada23/qaharness/internal/httpc"
	"github.com/go-resty/resty/v2"
)

// Response is the value every request operation produces. It is consumed
// immediately by the verify helpers and not retained.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	Duration   time.Duration
}

// Client wraps a resty client with the harness request policy.
type Client struct {
	rc *resty.Client
}

// New returns a Client with default transport settings.
func New() *Client {
	return NewWithTLS(nil)
}

// NewWithTLS returns a Client using the provided TLS configuration.
func NewWithTLS(cfg *tls.Config) *Client {
	h := httpc.Httpc{TlsConfig: cfg, UserAgent: "qaharness"}
	return &Client{rc: h.New()}
}

// Resty exposes the underlying client for transport-level test hooks.
func (c *Client) Resty() *resty.Client {
	return c.rc
}

// Get issues a GET request. A nil header map is allowed.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, url, nil, headers)
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, url string, body any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodPost, url, body, headers)
}

// Put issues a PUT request with the given body.
func (c *Client) Put(ctx context.Context, url string, body any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodPut, url, body, headers)
}

// Patch issues a PATCH request with the given body.
func (c *Client) Patch(ctx context.Context, url string, body any, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, url, body, headers)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, url, nil, headers)
}

// Do issues a single request. The returned error is non-nil only for
// transport-level failures (connection refused, DNS, context cancellation);
// every received response, whatever its status, is a success value.
func (c *Client) Do(ctx context.Context, method, url string, body any, headers map[string]string) (*Response, error) {
	logger := common.GetLogger().WithComponent("httpx").WithRequest(method, url)

	req := c.rc.R().SetContext(ctx).SetHeaders(headers)
	setBody(req, body)

	resp, err := execByMethod(req, method, url)
	if err != nil {
		logger.Error("HTTP request failed", "error", err)
		return nil, err
	}

	out := &Response{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		Headers:    resp.Header(),
		Duration:   resp.Time(),
	}
	logger.Debug("received HTTP response",
		"status_code", out.StatusCode, "duration", out.Duration, "response_size", len(out.Body))
	return out, nil
}

// setBody attaches the body, tagging string/byte JSON payloads with the JSON
// content type the way raw bodies need it; struct and map bodies are left to
// the transport's own marshalling.
func setBody(req *resty.Request, body any) {
	switch b := body.(type) {
	case nil:
	case string:
		if strings.TrimSpace(b) == "" {
			return
		}
		if isJSON(b) {
			req.SetHeader("Content-Type", "application/json")
			req.SetBody([]byte(b))
		} else {
			req.SetBody(b)
		}
	case []byte:
		if isJSON(string(b)) {
			req.SetHeader("Content-Type", "application/json")
		}
		req.SetBody(b)
	default:
		req.SetBody(body)
	}
}

func isJSON(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if (strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")) || (strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]")) {
		var js json.RawMessage
		return json.Unmarshal([]byte(t), &js) == nil
	}
	return false
}

func execByMethod(req *resty.Request, method, url string) (*resty.Response, error) {
	switch strings.ToUpper(strings.TrimSpace(method)) {
	case http.MethodGet:
		return req.Get(url)
	case http.MethodHead:
		return req.Head(url)
	case http.MethodPost:
		return req.Post(url)
	case http.MethodPut:
		return req.Put(url)
	case http.MethodPatch:
		return req.Patch(url)
	case http.MethodDelete:
		return req.Delete(url)
	default:
		return nil, fmt.Errorf("httpx: unsupported method: %s", method)
	}
}
