package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"sitedirectory/internal/domain"
	"sitedirectory/internal/watcher"
)

const testFixture = `
scope: https://contoso.example
hubs:
  - id: 11111111-1111-4111-8111-111111111111
    title: HR
    url: https://contoso.example/sites/hr
    associated:
      - site_id: p1
        title: Payroll
        url: https://contoso.example/sites/payroll
  - id: 22222222-2222-4222-8222-222222222222
    title: Not a hub
    url: https://contoso.example/sites/member
    hub_pointer: 11111111-1111-4111-8111-111111111111
sites:
  - hub: 11111111-1111-4111-8111-111111111111
    title: Benefits
    url: https://contoso.example/sites/benefits
  - hub: 11111111-1111-4111-8111-111111111111
    title: Payroll (indexed)
    url: https://contoso.example/sites/payroll
`

// run executes the CLI with captured output
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stderr}
	root := newRootCommand(a)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSnapshotImportAndResolve(t *testing.T) {
	dir := t.TempDir()
	fixture := writeFile(t, dir, "fixture.yaml", testFixture)
	cfgPath := writeFile(t, dir, "sitedir.yaml", "log:\n  level: error\n")
	db := filepath.Join(dir, "directory.db")

	out, err := run(t, "--config", cfgPath, "snapshot", "import", fixture, "--db", db)
	if err != nil {
		t.Fatalf("snapshot import: %v", err)
	}
	if !strings.Contains(out, "Imported 2 hubs") {
		t.Errorf("unexpected import output: %q", out)
	}

	out, err = run(t, "--config", cfgPath, "resolve",
		"--snapshot", db, "--scope", "https://contoso.example", "--format", "json")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var tree domain.DirectoryTree
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if len(tree.Hubs) != 1 {
		t.Fatalf("expected member site to be dropped, got %d hubs", len(tree.Hubs))
	}

	hub := tree.Hubs[0]
	if hub.Record.Title != "HR" {
		t.Errorf("expected HR hub, got %q", hub.Record.Title)
	}
	var urls []string
	for _, s := range hub.AssociatedSites {
		urls = append(urls, s.URL)
	}
	want := []string{"https://contoso.example/sites/payroll", "https://contoso.example/sites/benefits"}
	if strings.Join(urls, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, urls)
	}
	if hub.AssociatedSites[0].Title != "Payroll" {
		t.Errorf("expected declared title to win, got %q", hub.AssociatedSites[0].Title)
	}
}

func TestResolveWithoutScope(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "sitedir.yaml", "log:\n  level: error\n")
	if _, err := run(t, "--config", cfgPath, "resolve"); err == nil {
		t.Error("expected error when no scope is configured")
	}
}

func TestResolveUnknownFormat(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "sitedir.yaml", "log:\n  level: error\n")
	_, err := run(t, "--config", cfgPath, "resolve", "--scope", "https://x.example", "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "sitedir.toml", `
[directory]
base_url = "https://contoso.example"
token = "secret"
verify_policy = "fail-closed"

[log]
level = "error"
`)
	out, err := run(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "secret") {
		t.Error("expected token to be redacted")
	}
	for _, want := range []string{"base_url: https://contoso.example", "verify_policy: fail-closed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "sitedir.yaml", "directory:\n  verify_policy: sometimes\n")
	if _, err := run(t, "--config", cfgPath, "config", "show"); err == nil {
		t.Error("expected invalid verify policy to be rejected")
	}
}

func TestResolveRejectsUnknownPolicy(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "sitedir.yaml", "log:\n  level: error\n")
	_, err := run(t, "--config", cfgPath, "resolve",
		"--scope", "http://127.0.0.1:1", "--verify-policy", "fail-close")
	if err == nil || !strings.Contains(err.Error(), "invalid --verify-policy") {
		t.Errorf("expected invalid policy error before any fetch, got %v", err)
	}
}

func TestUnknownPolicyFromEnv(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), "sitedir.yaml", "log:\n  level: error\n")
	t.Setenv("SITEDIR_VERIFY_POLICY", "closd")
	if _, err := run(t, "--config", cfgPath, "config", "show"); err == nil {
		t.Error("expected mistyped policy in the environment to be rejected")
	}
}

func TestRunWatcherLogsSetupFailure(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	missing := filepath.Join(t.TempDir(), "gone", "fixture.yaml")
	noop := func(context.Context) error { return nil }

	runWatcher(context.Background(), log, watcher.New(missing, noop, zerolog.Nop()))

	if !strings.Contains(buf.String(), "fixture watcher stopped") {
		t.Errorf("expected watcher failure to be logged, got %q", buf.String())
	}
}

func TestRunWatcherQuietOnCancel(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	path := writeFile(t, t.TempDir(), "fixture.yaml", testFixture)
	noop := func(context.Context) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runWatcher(ctx, log, watcher.New(path, noop, zerolog.Nop()))

	if buf.Len() != 0 {
		t.Errorf("expected no log on cancel, got %q", buf.String())
	}
}
