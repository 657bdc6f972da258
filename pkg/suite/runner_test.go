package suite

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cposada23/qaharness/pkg/db"
	"github.com/cposada23/qaharness/pkg/env"
	"github.com/cposada23/qaharness/pkg/httpx"
)

func newRunner(t *testing.T, handler http.Handler) (*Runner, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	e := env.New()
	_ = e.SetString("global", "base_url", srv.URL)

	return &Runner{HTTP: httpx.New(), Env: e}, srv
}

func TestRunner_SaveBetweenCases(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"token":"tok-abc","user":{"id":7}}`)
	})
	mux.HandleFunc("/users/7", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":7,"name":"ada"}`)
	})
	r, _ := newRunner(t, mux)

	s := &Suite{
		Name: "login-flow",
		Cases: []Case{
			{
				Name:    "login",
				Request: &RequestSpec{Method: "POST", URL: "/login"},
				Response: &ResponseSpec{
					Status: 200,
					Save:   map[string]string{"token": "token", "uid": "user.id"},
				},
			},
			{
				Name: "fetch profile",
				Request: &RequestSpec{
					Method:  "GET",
					URL:     "/users/{{.env.uid}}",
					Headers: []Header{{Name: "Authorization", Value: "Bearer {{.env.token}}"}},
				},
				Response: &ResponseSpec{Status: 200, BodyEquals: map[string]any{"name": "ada"}},
			},
		},
	}

	res := r.Run(context.Background(), s)
	if res.Failed != 0 {
		t.Fatalf("unexpected failures: %+v", res.Results)
	}
	if res.Passed != 2 {
		t.Fatalf("passed=%d, want 2", res.Passed)
	}
}

func TestRunner_FailuresAreIndependent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r, _ := newRunner(t, mux)

	s := &Suite{
		Name: "independent",
		Cases: []Case{
			{Name: "missing", Request: &RequestSpec{URL: "/nope"}, Response: &ResponseSpec{Status: 200}},
			{Name: "present", Request: &RequestSpec{URL: "/ok"}, Response: &ResponseSpec{Status: 200}},
		},
	}
	res := r.Run(context.Background(), s)
	if res.Failed != 1 || res.Passed != 1 {
		t.Fatalf("failed=%d passed=%d", res.Failed, res.Passed)
	}
	// The failing case still reports the observed status code.
	if res.Results[0].StatusCode != 404 {
		t.Fatalf("status=%d, want 404", res.Results[0].StatusCode)
	}
}

func TestRunner_StopOnFailure(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusTeapot)
	})
	r, _ := newRunner(t, mux)

	s := &Suite{
		Name:          "abort-early",
		StopOnFailure: true,
		Cases: []Case{
			{Name: "first", Request: &RequestSpec{URL: "/a"}, Response: &ResponseSpec{Status: 200}},
			{Name: "second", Request: &RequestSpec{URL: "/b"}, Response: &ResponseSpec{Status: 200}},
		},
	}
	res := r.Run(context.Background(), s)
	if len(res.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(res.Results))
	}
	if hits != 1 {
		t.Fatalf("expected 1 request, got %d", hits)
	}
}

func TestRunner_SuiteEnvSeedsLocal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/9", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r, _ := newRunner(t, mux)

	s := &Suite{
		Name: "seeded",
		Env:  &env.Env{Local: env.FromStringMap(map[string]string{"user_id": "9"})},
		Cases: []Case{
			{Name: "lookup", Request: &RequestSpec{URL: "/users/{{.env.user_id}}"}, Response: &ResponseSpec{Status: 200}},
		},
	}
	res := r.Run(context.Background(), s)
	if res.Failed != 0 {
		t.Fatalf("unexpected failures: %+v", res.Results)
	}
	// The run clone keeps saved state out of the base environment.
	if _, ok := r.Env.Lookup("user_id"); ok {
		t.Fatal("base env must not see suite-local values")
	}
}

func TestRunner_EmptyCaseFails(t *testing.T) {
	r, _ := newRunner(t, http.NewServeMux())
	s := &Suite{Name: "empty", Cases: []Case{{Name: "nothing"}}}
	res := r.Run(context.Background(), s)
	if res.Failed != 1 {
		t.Fatalf("expected failure, got %+v", res.Results)
	}
	if !strings.Contains(res.Results[0].Err.Error(), "neither") {
		t.Fatalf("err=%v", res.Results[0].Err)
	}
}

func TestRunner_DBCase(t *testing.T) {
	dbc := db.NewClient(&db.Config{Driver: db.DriverSqlite, Path: filepath.Join(t.TempDir(), "qa.db")})
	ctx := context.Background()
	for _, stmt := range []string{
		`CREATE TABLE Users (id INTEGER PRIMARY KEY, name TEXT)`,
		`INSERT INTO Users(name) VALUES('ada')`,
	} {
		res, err := dbc.Exec(ctx, stmt)
		if err != nil || !res.Success {
			t.Fatalf("seed %q: err=%v res=%+v", stmt, err, res)
		}
	}

	r := &Runner{DB: dbc, Env: env.New()}
	exists := true
	s := &Suite{
		Name: "db-only",
		Cases: []Case{
			{Name: "user exists", DB: &DBSpec{Table: "Users", Where: "name = 'ada'", Exists: &exists}},
			{Name: "field value", DB: &DBSpec{Table: "Users", Where: "id = 1", Field: "name", Value: "ada"}},
		},
	}
	res := r.Run(ctx, s)
	if res.Failed != 0 {
		t.Fatalf("unexpected failures: %+v", res.Results)
	}
}

func TestDBSpec_TableCheckRequiresAssertion(t *testing.T) {
	dbc := db.NewClient(&db.Config{Driver: db.DriverSqlite, Path: filepath.Join(t.TempDir(), "qa.db")})
	d := DBSpec{Table: "Users", Where: "id = 1"}
	err := d.Execute(context.Background(), dbc, env.New())
	if err == nil || !strings.Contains(err.Error(), "requires exists, count or field") {
		t.Fatalf("err=%v", err)
	}
}

func TestRunner_DBCaseWithoutClient(t *testing.T) {
	r := &Runner{Env: env.New()}
	s := &Suite{Name: "no-db", Cases: []Case{{Name: "check", DB: &DBSpec{Query: "SELECT 1"}}}}
	res := r.Run(context.Background(), s)
	if res.Failed != 1 {
		t.Fatalf("expected failure, got %+v", res.Results)
	}
}

func TestRunner_RequestCaseWithoutClient(t *testing.T) {
	r := &Runner{Env: env.New()}
	s := &Suite{
		Name:  "no-http",
		Cases: []Case{{Name: "ping", Request: &RequestSpec{URL: "/ping"}}},
	}
	res := r.Run(context.Background(), s)
	if res.Failed != 1 {
		t.Fatalf("expected failure, got %+v", res.Results)
	}
	if !strings.Contains(res.Results[0].Err.Error(), "no http client") {
		t.Fatalf("err=%v", res.Results[0].Err)
	}
}
