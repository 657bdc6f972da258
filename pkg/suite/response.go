package suite

import (
	"fmt"
	"strings"
	"time"

	"github.com/cposada23/qaharness/pkg/env"
	"github.com/cposada23/qaharness/pkg/httpx"
	"github.com/cposada23/qaharness/pkg/verify"
	"github.com/tidwall/gjson"
)

// ResponseSpec declares the expectations on a case's HTTP response. Every
// listed check is applied via the verify helpers; the first mismatch fails
// the case.
type ResponseSpec struct {
	// Status 0 means any status is accepted.
	Status int `yaml:"status"`
	// MaxDuration is a duration string ("500ms", "2s").
	MaxDuration string `yaml:"max_duration"`
	// BodyHas lists gjson paths that must exist in the body.
	BodyHas []string `yaml:"body_has"`
	// BodyEquals maps gjson paths to expected values (strict equality).
	BodyEquals map[string]any `yaml:"body_equals"`
	// HeaderContains maps header names (case-insensitive) to substrings.
	HeaderContains map[string]string `yaml:"header_contains"`
	BodyIsArray    bool              `yaml:"body_is_array"`
	ArrayLength    *int              `yaml:"array_length"`
	// Save maps env variable names to gjson paths extracted from the body
	// for use by later cases.
	Save map[string]string `yaml:"save"`
	// SaveMissing controls behavior when a Save path is absent:
	// "skip" (default) ignores it; "fail" fails the case.
	SaveMissing string `yaml:"save_missing"`
}

// Verify applies every declared expectation to the response.
func (r ResponseSpec) Verify(resp *httpx.Response) error {
	if r.Status != 0 {
		if err := verify.StatusCode(resp, r.Status); err != nil {
			return err
		}
	}
	if s := strings.TrimSpace(r.MaxDuration); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid max_duration %q: %w", s, err)
		}
		if err := verify.ResponseTime(resp, d); err != nil {
			return err
		}
	}
	for _, path := range r.BodyHas {
		if err := verify.BodyProperty(resp, path); err != nil {
			return err
		}
	}
	for path, want := range r.BodyEquals {
		if err := verify.BodyPropertyValue(resp, path, want); err != nil {
			return err
		}
	}
	for name, want := range r.HeaderContains {
		if err := verify.Header(resp, name, want); err != nil {
			return err
		}
	}
	if r.BodyIsArray {
		if err := verify.BodyIsArray(resp); err != nil {
			return err
		}
	}
	if r.ArrayLength != nil {
		if err := verify.ArrayLength(resp, *r.ArrayLength); err != nil {
			return err
		}
	}
	return nil
}

// Extract pulls the Save mappings out of a JSON response body. Paths are
// gjson paths. The SaveMissing policy decides whether an absent path is an
// error; values already extracted are kept either way.
func (r ResponseSpec) Extract(body []byte) (map[string]string, error) {
	extracted := map[string]string{}
	if len(r.Save) == 0 || len(body) == 0 {
		return extracted, nil
	}

	policy := strings.ToLower(strings.TrimSpace(r.SaveMissing))
	if policy == "" {
		policy = "skip"
	}

	parsed := gjson.ParseBytes(body)
	for key, path := range r.Save {
		p := strings.TrimSpace(path)
		if p == "" {
			continue
		}
		res := parsed.Get(p)
		if res.Exists() {
			extracted[key] = anyToString(res.Value())
		} else if policy == "fail" {
			return extracted, fmt.Errorf("missing save value for %q at path %q", key, p)
		}
	}
	return extracted, nil
}

// applyExtracted writes saved values into the Local layer so later cases see them.
func applyExtracted(e *env.Env, kv map[string]string) {
	for k, v := range kv {
		_ = e.SetString("local", k, v)
	}
}
