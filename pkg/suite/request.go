package suite

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cposada23/qaharness/pkg/env"
)

type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type Query struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// RequestSpec describes the HTTP request of a case. URL, headers, queries and
// body are all Go-template rendered against the layered env before sending.
type RequestSpec struct {
	Method   string   `yaml:"method"`
	URL      string   `yaml:"url"`
	Headers  []Header `yaml:"headers"`
	Queries  []Query  `yaml:"queries"`
	Body     string   `yaml:"body"`
	BodyFile string   `yaml:"body_file"`
}

// Render builds the final URL, header map and body. Relative URLs (leading
// slash) are joined to the base_url env value from the resolved target.
// Returns an error if the body template fails to parse or execute.
func (r RequestSpec) Render(e *env.Env) (string, map[string]string, string, error) {
	hdrs := renderHeaders(e, r.Headers)

	u := e.Render(strings.TrimSpace(r.URL))
	if strings.HasPrefix(u, "/") {
		if base, ok := e.Lookup("base_url"); ok {
			u = strings.TrimSuffix(base, "/") + u
		}
	}
	u, err := appendQueries(e, u, r.Queries)
	if err != nil {
		return "", nil, "", err
	}

	body, err := r.renderBody(e)
	if err != nil {
		return "", nil, "", err
	}
	return u, hdrs, body, nil
}

// renderBody resolves the body source: BodyFile if provided, otherwise Body.
func (r RequestSpec) renderBody(e *env.Env) (string, error) {
	var body string
	if strings.TrimSpace(r.BodyFile) != "" {
		path := filepath.Clean(e.Render(r.BodyFile))
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		body = string(data)
	} else {
		body = r.Body
	}
	if strings.Contains(body, "{{") {
		return e.RenderErr(body)
	}
	return body, nil
}

func renderHeaders(e *env.Env, hs []Header) map[string]string {
	hdrs := make(map[string]string)
	for _, h := range hs {
		if h.Name == "" {
			continue
		}
		val := h.Value
		if strings.Contains(val, "{{") {
			val = e.Render(val)
		}
		hdrs[h.Name] = val
	}
	return hdrs
}

func appendQueries(e *env.Env, rawURL string, qs []Query) (string, error) {
	if len(qs) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	vals := u.Query()
	for _, q := range qs {
		if q.Name == "" {
			continue
		}
		vals.Set(q.Name, e.Render(q.Value))
	}
	u.RawQuery = vals.Encode()
	return u.String(), nil
}
