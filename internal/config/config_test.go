package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, projectDir, body string) {
	t.Helper()
	dir := filepath.Join(projectDir, StandupDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"STANDUP_REPO", "STANDUP_PROJECT", "STANDUP_SLACK_WEBHOOK", "STANDUP_SERVER_PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", cfg.Project.Version)
	}
	if cfg.Project.Locale != "en" {
		t.Fatalf("expected default locale en, got %q", cfg.Project.Locale)
	}
	if cfg.Project.LLM.Model != defaultLLMModel || cfg.Project.Server.Port != defaultServerPort {
		t.Fatalf("unexpected defaults: %+v", cfg.Project)
	}
	if want := filepath.Join(projectDir, ".custom-instructions"); cfg.InstructionsPath() != want {
		t.Fatalf("instructions path = %q, want %q", cfg.InstructionsPath(), want)
	}
	if want := filepath.Join(projectDir, StandupDir, "state", "history.db"); cfg.HistoryPath() != want {
		t.Fatalf("history path = %q, want %q", cfg.HistoryPath(), want)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	writeConfig(t, projectDir, strings.TrimSpace(`
version: 1
repo: acme/backlog
project: Sprint Board
locale: JA
editor: code --wait
llm:
  base_url: http://localhost:1234/v1/
  model: qwen
  timeout_seconds: 30
  instructions_file: prompts/extra.txt
slack:
  webhook_url: https://hooks.slack.com/services/T/B/X
server:
  port: 9100
`))
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	p := cfg.Project
	if p.Repo != "acme/backlog" || p.Project != "Sprint Board" {
		t.Fatalf("repo/project = %q/%q", p.Repo, p.Project)
	}
	if p.Locale != "ja" {
		t.Fatalf("locale = %q, want ja", p.Locale)
	}
	if p.Editor != "code --wait" {
		t.Fatalf("editor = %q", p.Editor)
	}
	if p.LLM.BaseURL != "http://localhost:1234/v1" || p.LLM.Model != "qwen" || p.LLM.TimeoutSeconds != 30 {
		t.Fatalf("llm = %+v", p.LLM)
	}
	if p.LLM.APIKeyEnv != defaultLLMKeyEnv {
		t.Fatalf("api key env should keep default, got %q", p.LLM.APIKeyEnv)
	}
	if want := filepath.Join(projectDir, "prompts", "extra.txt"); p.LLM.InstructionsFile != want {
		t.Fatalf("instructions = %q, want %q", p.LLM.InstructionsFile, want)
	}
	if p.Server.Port != 9100 || p.Server.Host != defaultServerHost {
		t.Fatalf("server = %+v", p.Server)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"locale":  "locale: fr\n",
		"repo":    "repo: not-a-repo\n",
		"port":    "server:\n  port: 70000\n",
		"webhook": "slack:\n  webhook_url: hooks.slack.com\n",
		"yaml":    "repo: [unterminated\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			projectDir := t.TempDir()
			writeConfig(t, projectDir, body)
			if _, err := Load(projectDir); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STANDUP_REPO", "env/repo")
	t.Setenv("STANDUP_PROJECT", "Roadmap")
	t.Setenv("STANDUP_SLACK_WEBHOOK", "https://hooks.example.test/x")
	t.Setenv("STANDUP_SERVER_PORT", "9001")
	projectDir := t.TempDir()
	writeConfig(t, projectDir, "repo: file/repo\n")
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := cfg.Project
	if p.Repo != "env/repo" || p.Project != "Roadmap" || p.Slack.WebhookURL != "https://hooks.example.test/x" || p.Server.Port != 9001 {
		t.Fatalf("env overrides not applied: %+v", p)
	}
}

func TestInitDirWritesDefaultConfig(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	for _, sub := range []string{"logs", "state"} {
		if info, err := os.Stat(filepath.Join(projectDir, StandupDir, sub)); err != nil || !info.IsDir() {
			t.Fatalf("missing %s dir: %v", sub, err)
		}
	}
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("default config must load: %v", err)
	}
	if cfg.Project.Server.Port != defaultServerPort {
		t.Fatalf("port = %d", cfg.Project.Server.Port)
	}
	// A second init keeps user edits.
	writeConfig(t, projectDir, "repo: kept/repo\n")
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir again: %v", err)
	}
	cfg, err = Load(projectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Project.Repo != "kept/repo" {
		t.Fatalf("InitDir overwrote config, repo = %q", cfg.Project.Repo)
	}
}

func TestSetRepoPersists(t *testing.T) {
	clearEnv(t)
	projectDir := t.TempDir()
	if err := InitDir(projectDir); err != nil {
		t.Fatalf("InitDir: %v", err)
	}
	cfg, err := Load(projectDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.SetRepo("acme/app"); err != nil {
		t.Fatalf("SetRepo: %v", err)
	}
	reloaded, err := Load(projectDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Project.Repo != "acme/app" {
		t.Fatalf("repo = %q, want acme/app", reloaded.Project.Repo)
	}
	if reloaded.InstructionsPath() != filepath.Join(projectDir, ".custom-instructions") {
		t.Fatalf("instructions path not preserved: %q", reloaded.InstructionsPath())
	}
	if err := cfg.SetRepo("  "); err == nil {
		t.Fatalf("expected error for empty repo")
	}
}
