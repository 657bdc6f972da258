package target

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolve_KnownNames(t *testing.T) {
	for name, want := range builtin {
		got := Resolve(name)
		if got.BaseURL != want.BaseURL {
			t.Fatalf("%s: expected base url %q, got %q", name, want.BaseURL, got.BaseURL)
		}
		if got.Name != name {
			t.Fatalf("%s: expected name %q, got %q", name, name, got.Name)
		}
	}
}

func TestResolve_IsCaseInsensitive(t *testing.T) {
	got := Resolve("  QA ")
	if got.Name != "qa" {
		t.Fatalf("expected qa, got %q", got.Name)
	}
}

func TestResolve_UnknownFallsBackToDefault(t *testing.T) {
	got := Resolve("does-not-exist")
	if got.Name != Default.Name || got.BaseURL != Default.BaseURL {
		t.Fatalf("expected default config, got %+v", got)
	}
}

func TestFromProcessEnv(t *testing.T) {
	t.Setenv(EnvVar, "")
	if got := FromProcessEnv(); got != DefaultName {
		t.Fatalf("expected %q, got %q", DefaultName, got)
	}
	t.Setenv(EnvVar, "staging")
	if got := FromProcessEnv(); got != "staging" {
		t.Fatalf("expected staging, got %q", got)
	}
}

func TestResolve_EmptyNameUsesProcessEnv(t *testing.T) {
	t.Setenv(EnvVar, "prod")
	got := Resolve("")
	if got.Name != "prod" {
		t.Fatalf("expected prod, got %q", got.Name)
	}
}

func TestResolveDir_ArtifactOverridesTable(t *testing.T) {
	dir := t.TempDir()
	artifact := "base_url: https://qa7.internal.example\nenvironment: qa\nvars:\n  api_version: v2\n"
	if err := os.WriteFile(filepath.Join(dir, "qa.yaml"), []byte(artifact), 0o600); err != nil {
		t.Fatal(err)
	}

	got := ResolveDir("qa", dir)
	if got.BaseURL != "https://qa7.internal.example" {
		t.Fatalf("expected artifact base url, got %q", got.BaseURL)
	}
	if got.Vars["api_version"] != "v2" {
		t.Fatalf("expected artifact vars, got %+v", got.Vars)
	}
}

func TestResolveDir_MissingArtifactFallsBackToTable(t *testing.T) {
	got := ResolveDir("staging", t.TempDir())
	if got.BaseURL != builtin["staging"].BaseURL {
		t.Fatalf("expected table entry, got %q", got.BaseURL)
	}
}

func TestResolveDir_MalformedArtifactFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dev.yaml"), []byte("{not yaml: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	got := ResolveDir("dev", dir)
	if got.BaseURL != builtin["dev"].BaseURL {
		t.Fatalf("expected table entry after malformed artifact, got %q", got.BaseURL)
	}
}

func TestResolveDir_ArtifactWithoutBaseURLFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "prod.yaml"), []byte("environment: prod\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got := ResolveDir("prod", dir)
	if got.BaseURL != builtin["prod"].BaseURL {
		t.Fatalf("expected table entry, got %q", got.BaseURL)
	}
}

func TestResolveDir_UnknownEverywhereUsesDefault(t *testing.T) {
	got := ResolveDir("nowhere", t.TempDir())
	if got.Name != Default.Name || got.BaseURL != Default.BaseURL {
		t.Fatalf("expected default, got %+v", got)
	}
}
