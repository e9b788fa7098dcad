package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kingrea/standup-issues/internal/protocol"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestRenderThenParseCommands(t *testing.T) {
	drafts := `
- title: Fix login bug
  body: "## Tasks\n- raise TTL"
  assignees: [alice]
  labels: [bug]
- title: Write notes
`
	doc, _, err := execute(t, drafts, "render", "--locale", "ja")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(doc, "# Fix login bug @alice <[bug]>") || !strings.Contains(doc, "## 背景") {
		t.Fatalf("unexpected document:\n%s", doc)
	}

	out, stderr, err := execute(t, doc+"\n---\n## Tasks\n- orphan\n", "parse")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var result protocol.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(result.Issues) != 2 || result.Issues[0].Labels[0] != "bug" {
		t.Fatalf("issues = %+v", result.Issues)
	}
	if !strings.Contains(stderr, "warning: block 3") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestParseYAMLFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "review.md")
	if err := os.WriteFile(path, []byte("# Book the room @bob\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "", "parse", "--format", "yaml", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, "title: Book the room") || !strings.Contains(out, "- bob") {
		t.Fatalf("yaml output:\n%s", out)
	}
	if _, _, err := execute(t, "", "parse", "--format", "xml", path); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestInitSavesRepo(t *testing.T) {
	for _, key := range []string{"STANDUP_REPO", "STANDUP_PROJECT", "STANDUP_SLACK_WEBHOOK", "STANDUP_SERVER_PORT"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	out, _, err := execute(t, "", "init", "--dir", dir, "--repo", "acme/app")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Repo:    acme/app") {
		t.Fatalf("output:\n%s", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, ".standup", "config.yaml"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(data), "repo: acme/app") {
		t.Fatalf("config:\n%s", data)
	}
	out, _, err = execute(t, "", "history", "--dir", dir)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet.") {
		t.Fatalf("history output:\n%s", out)
	}
}

func TestVersionFlag(t *testing.T) {
	out, _, err := execute(t, "", "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Fatalf("version output = %q", out)
	}
}
