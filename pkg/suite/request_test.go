package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cposada23/qaharness/pkg/env"
)

func testEnv() *env.Env {
	e := env.New()
	e.Global = env.FromStringMap(map[string]string{
		"base_url": "https://qa.example.com/",
		"user_id":  "42",
	})
	return e
}

func TestRequestRender_JoinsBaseURL(t *testing.T) {
	r := RequestSpec{Method: "GET", URL: "/users/{{.env.user_id}}"}
	u, _, _, err := r.Render(testEnv())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if u != "https://qa.example.com/users/42" {
		t.Fatalf("url=%q", u)
	}
}

func TestRequestRender_AbsoluteURLUntouched(t *testing.T) {
	r := RequestSpec{URL: "https://other.example.com/ping"}
	u, _, _, err := r.Render(testEnv())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if u != "https://other.example.com/ping" {
		t.Fatalf("url=%q", u)
	}
}

func TestRequestRender_Queries(t *testing.T) {
	r := RequestSpec{
		URL: "/search",
		Queries: []Query{
			{Name: "q", Value: "user {{.env.user_id}}"},
			{Name: "limit", Value: "10"},
		},
	}
	u, _, _, err := r.Render(testEnv())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "https://qa.example.com/search?limit=10&q=user+42"
	if u != want {
		t.Fatalf("url=%q, want %q", u, want)
	}
}

func TestRequestRender_Headers(t *testing.T) {
	r := RequestSpec{
		URL: "/users",
		Headers: []Header{
			{Name: "Authorization", Value: "Bearer tok-{{.env.user_id}}"},
			{Name: "", Value: "dropped"},
		},
	}
	_, hdrs, _, err := r.Render(testEnv())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if hdrs["Authorization"] != "Bearer tok-42" {
		t.Fatalf("headers=%v", hdrs)
	}
	if len(hdrs) != 1 {
		t.Fatalf("expected nameless header dropped, got %v", hdrs)
	}
}

func TestRequestRender_BodyTemplate(t *testing.T) {
	r := RequestSpec{URL: "/users", Body: `{"id": {{.env.user_id}}}`}
	_, _, body, err := r.Render(testEnv())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if body != `{"id": 42}` {
		t.Fatalf("body=%q", body)
	}
}

func TestRequestRender_BodyMissingKeyFails(t *testing.T) {
	r := RequestSpec{URL: "/users", Body: `{"id": {{.env.absent}}}`}
	if _, _, _, err := r.Render(testEnv()); err == nil {
		t.Fatal("expected template error")
	}
}

func TestRequestRender_BodyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.json")
	if err := os.WriteFile(path, []byte(`{"name":"{{.env.user_id}}"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	r := RequestSpec{URL: "/users", BodyFile: path}
	_, _, body, err := r.Render(testEnv())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if body != `{"name":"42"}` {
		t.Fatalf("body=%q", body)
	}

	r = RequestSpec{URL: "/users", BodyFile: filepath.Join(dir, "missing.json")}
	if _, _, _, err := r.Render(testEnv()); err == nil {
		t.Fatal("expected error for missing body file")
	}
}
