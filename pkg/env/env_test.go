package env

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRender_LocalOverridesGlobal(t *testing.T) {
	e := New()
	e.Global = FromStringMap(map[string]string{"user_id": "1", "base_url": "https://qa.example.com"})
	e.Local = FromStringMap(map[string]string{"user_id": "42"})

	got := e.Render("{{.env.base_url}}/users/{{.env.user_id}}")
	want := "https://qa.example.com/users/42"
	if got != want {
		t.Fatalf("Render=%q, want %q", got, want)
	}
}

func TestRender_NonTemplateUnchanged(t *testing.T) {
	e := New()
	for _, s := range []string{"", "/users/1", "plain text"} {
		if got := e.Render(s); got != s {
			t.Fatalf("Render(%q)=%q, want unchanged", s, got)
		}
	}
}

func TestRender_MissingKeyKeepsOriginal(t *testing.T) {
	e := New()
	s := "{{.env.unknown_key}}"
	if got := e.Render(s); got != s {
		t.Fatalf("Render=%q, want original %q", got, s)
	}
}

func TestRenderErr_MissingKeyFails(t *testing.T) {
	e := New()
	if _, err := e.RenderErr("{{.env.unknown_key}}"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestRender_AuthValues(t *testing.T) {
	e := New()
	e.Auth["backend"] = Str("Bearer tok-123")
	got := e.Render("{{.auth.backend}}")
	if got != "Bearer tok-123" {
		t.Fatalf("Render=%q", got)
	}
}

func TestRender_LazyAuthValue(t *testing.T) {
	e := New()
	calls := 0
	e.Auth["svc"] = e.MakeLazy(func(*Env) (string, error) {
		calls++
		return "Bearer lazy", nil
	})

	if calls != 0 {
		t.Fatalf("lazy value evaluated on registration")
	}
	if got := e.Render("{{.auth.svc}}"); got != "Bearer lazy" {
		t.Fatalf("Render=%q", got)
	}
	if calls == 0 {
		t.Fatal("lazy value never evaluated")
	}
}

func TestSealBlocksWrites(t *testing.T) {
	e := New()
	e.Seal()
	if err := e.SetString("local", "k", "v"); err == nil {
		t.Fatal("expected error writing to sealed env")
	}
	e.Unseal()
	if err := e.SetString("local", "k", "v"); err != nil {
		t.Fatalf("unexpected error after unseal: %v", err)
	}
	if got := e.GetString("local", "k"); got != "v" {
		t.Fatalf("GetString=%q", got)
	}
}

func TestClone_IsIndependent(t *testing.T) {
	e := New()
	_ = e.SetString("global", "base_url", "https://qa.example.com")
	_ = e.SetString("local", "saved", "one")

	c := e.Clone()
	_ = c.SetString("local", "saved", "two")

	if got, _ := e.Lookup("saved"); got != "one" {
		t.Fatalf("original mutated: %q", got)
	}
	if got, _ := c.Lookup("saved"); got != "two" {
		t.Fatalf("clone value: %q", got)
	}
	if got, _ := c.Lookup("base_url"); got != "https://qa.example.com" {
		t.Fatalf("clone missing global: %q", got)
	}
}

func TestLookup_Precedence(t *testing.T) {
	e := New()
	_ = e.SetString("global", "k", "g")
	if v, ok := e.Lookup("k"); !ok || v != "g" {
		t.Fatalf("Lookup=%q,%v", v, ok)
	}
	_ = e.SetString("local", "k", "l")
	if v, _ := e.Lookup("k"); v != "l" {
		t.Fatalf("local should win, got %q", v)
	}
	if _, ok := e.Lookup("absent"); ok {
		t.Fatal("expected miss")
	}
}

func TestUnmarshalYAML(t *testing.T) {
	var e Env
	doc := "user_id: \"7\"\nname: ada\n"
	if err := yaml.Unmarshal([]byte(doc), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := e.GetString("local", "user_id"); got != "7" {
		t.Fatalf("user_id=%q", got)
	}
	if got := e.GetString("local", "name"); got != "ada" {
		t.Fatalf("name=%q", got)
	}
}
