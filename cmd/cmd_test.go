package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCommand executes the root command with args against the sample site.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	source, err := filepath.Abs(filepath.Join("..", "testdata", "sample_site"))
	if err != nil {
		t.Fatal(err)
	}
	return runCommandWithSource(t, source, args...)
}

func runCommandWithSource(t *testing.T, source string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DAILYBRIEF_SOURCE", source)
	t.Setenv("DAILYBRIEF_LOG__LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "dailybrief ") {
		t.Errorf("got %q, want dailybrief prefix", out)
	}
}

func TestRenderToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if _, err := runCommand(t, "render", "--source", "latest", "--out", path); err != nil {
		t.Fatalf("render: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	page := string(data)
	for _, want := range []string{
		"Updated on 2026-02-02",
		"1. Open-weight model tops reasoning leaderboard",
		"Primary opportunity",
		"Distillation",
		"Sparse Mixture Routing at Scale",
		"2026-02-01",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("rendered page missing %q", want)
		}
	}
}

func TestRenderRejectsUnknownSource(t *testing.T) {
	_, err := runCommand(t, "render", "--source", "../../etc/passwd", "--out", filepath.Join(t.TempDir(), "x.html"))
	if err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestSiteCommand(t *testing.T) {
	t.Setenv("CI", "true")
	out := filepath.Join(t.TempDir(), "public")
	if _, err := runCommand(t, "site", "--output", out); err != nil {
		t.Fatalf("site: %v", err)
	}
	for _, name := range []string{"index.html", "brief_2026-02-01.html", "brief_2026-01-31.html", "search-index.json"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestServeWatchNeedsLocalSource(t *testing.T) {
	_, err := runCommandWithSource(t, "http://127.0.0.1:1/site", "serve", "--watch", "--port", "0")
	if err == nil {
		t.Fatal("expected error for --watch with a URL source")
	}
	if !strings.Contains(err.Error(), "needs a local source directory") {
		t.Errorf("error = %v, want local source message", err)
	}
}

func TestSiteWatchNeedsLocalSource(t *testing.T) {
	t.Setenv("CI", "true")
	out := filepath.Join(t.TempDir(), "public")
	_, err := runCommandWithSource(t, "http://127.0.0.1:1/site", "site", "--output", out, "--watch")
	if err == nil || !strings.Contains(err.Error(), "needs a local source directory") {
		t.Errorf("error = %v, want local source message", err)
	}
}
