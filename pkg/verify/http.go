package verify

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cposada23/qaharness/internal/common"
	"github.com/cposada23/qaharness/pkg/httpx"
	"github.com/tidwall/gjson"
)

// StatusCode asserts resp.StatusCode == code. Any integer code may be
// expected, including non-2xx values.
func StatusCode(resp *httpx.Response, code int) error {
	if resp == nil {
		return fmt.Errorf("verify: nil response")
	}
	if resp.StatusCode != code {
		return fmt.Errorf("expected status %d, got %d", code, resp.StatusCode)
	}
	return nil
}

// BodyProperty asserts the response body has a value at the given gjson path
// (a plain key for top-level properties).
func BodyProperty(resp *httpx.Response, name string) error {
	if resp == nil {
		return fmt.Errorf("verify: nil response")
	}
	if !gjson.ParseBytes(resp.Body).Get(name).Exists() {
		return fmt.Errorf("expected body property %q, not found", name)
	}
	return nil
}

// BodyPropertyValue asserts the body property at the given path strictly
// equals want: type and value must both match, so "1" does not equal 1.
func BodyPropertyValue(resp *httpx.Response, name string, want any) error {
	if resp == nil {
		return fmt.Errorf("verify: nil response")
	}
	res := gjson.ParseBytes(resp.Body).Get(name)
	if !res.Exists() {
		return fmt.Errorf("expected body property %q, not found", name)
	}
	if !strictEqual(res.Value(), want) {
		return fmt.Errorf("body property %q: expected %s, got %s",
			name, formatValue(want), formatValue(res.Value()))
	}
	return nil
}

// Header asserts the named header exists, matching the name
// case-insensitively. When want is given, the header value must contain it as
// a substring.
func Header(resp *httpx.Response, name string, want ...string) error {
	if resp == nil {
		return fmt.Errorf("verify: nil response")
	}
	val, ok := headerLookup(resp.Headers, name)
	if !ok {
		return fmt.Errorf("expected header %q, not found", name)
	}
	if len(want) > 0 && !strings.Contains(val, want[0]) {
		return fmt.Errorf("header %q: expected to contain %q, got %q", name, want[0], val)
	}
	return nil
}

// headerLookup finds a header by case-insensitive name. Canonicalized lookup
// covers normal responses; the fallback scan covers servers that emit
// non-canonical names.
func headerLookup(h http.Header, name string) (string, bool) {
	if vals, ok := h[http.CanonicalHeaderKey(name)]; ok && len(vals) > 0 {
		return vals[0], true
	}
	for k, vals := range h {
		if strings.EqualFold(k, name) && len(vals) > 0 {
			return vals[0], true
		}
	}
	return "", false
}

// ResponseTime asserts the round-trip duration was strictly below max.
func ResponseTime(resp *httpx.Response, max time.Duration) error {
	if resp == nil {
		return fmt.Errorf("verify: nil response")
	}
	if resp.Duration >= max {
		return fmt.Errorf("expected response time below %s, got %s", max, resp.Duration)
	}
	return nil
}

// BodyIsArray asserts the response body is a JSON array.
func BodyIsArray(resp *httpx.Response) error {
	if resp == nil {
		return fmt.Errorf("verify: nil response")
	}
	if !gjson.ParseBytes(resp.Body).IsArray() {
		return fmt.Errorf("expected body to be an array")
	}
	return nil
}

// ArrayLength asserts the response body is a JSON array of exactly n elements.
func ArrayLength(resp *httpx.Response, n int) error {
	if resp == nil {
		return fmt.Errorf("verify: nil response")
	}
	parsed := gjson.ParseBytes(resp.Body)
	if !parsed.IsArray() {
		return fmt.Errorf("expected body to be an array")
	}
	if got := len(parsed.Array()); got != n {
		return fmt.Errorf("expected array length %d, got %d", n, got)
	}
	return nil
}

// LogResponse emits the response status, duration and body to the harness
// log. Side effect only, never fails.
func LogResponse(resp *httpx.Response) {
	logger := common.GetLogger().WithComponent("verify")
	if resp == nil {
		logger.Warn("log response called with nil response")
		return
	}
	logger.Info("response",
		"status_code", resp.StatusCode,
		"duration", resp.Duration,
		"body", string(resp.Body))
}
