package report

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cposada23/qaharness/pkg/suite"
)

func sampleRun() Run {
	return Run{
		Target:    "qa",
		BaseURL:   "https://qa.example.com",
		StartedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Duration:  1500 * time.Millisecond,
		Suites: []suite.SuiteResult{
			{
				Name:   "users",
				Passed: 1,
				Failed: 1,
				Results: []suite.CaseResult{
					{Name: "get user", Passed: true, StatusCode: 200, Duration: 40 * time.Millisecond},
					{Name: "delete user", Passed: false, StatusCode: 500, Err: errors.New("expected status 204, got 500"), Duration: 90 * time.Millisecond},
				},
				Duration: 130 * time.Millisecond,
			},
		},
	}
}

func TestRunTotals(t *testing.T) {
	run := sampleRun()
	if run.Passed() != 1 || run.Failed() != 1 {
		t.Fatalf("passed=%d failed=%d", run.Passed(), run.Failed())
	}
	if run.OK() {
		t.Fatal("run with a failure must not be OK")
	}
	if !(Run{}).OK() {
		t.Fatal("empty run is OK")
	}
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.html")
	if err := WriteHTML(path, sampleRun()); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{
		"qa", "https://qa.example.com",
		"get user", "delete user",
		"PASS", "FAIL",
		"expected status 204, got 500",
		"1 passed, 1 failed",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestPrintConsole(t *testing.T) {
	var buf bytes.Buffer
	PrintConsole(&buf, sampleRun(), false)
	out := buf.String()
	for _, want := range []string{
		"users",
		"✓ get user",
		"✗ delete user",
		"expected status 204, got 500",
		"1 passed, 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q in:\n%s", want, out)
		}
	}
	// No ANSI escapes without color.
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected ANSI codes:\n%s", out)
	}

	buf.Reset()
	PrintConsole(&buf, sampleRun(), true)
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("expected ANSI codes with color enabled")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(250 * time.Millisecond); got != "250ms" {
		t.Fatalf("got %q", got)
	}
	if got := formatDuration(1500 * time.Millisecond); got != "1.50s" {
		t.Fatalf("got %q", got)
	}
}
