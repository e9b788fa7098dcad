// internal/config/config.go
//
// This package handles configuration and the .standup directory structure.
// Every project that uses standup gets a .standup/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// StandupDir is the name of the directory we create in each project
	StandupDir = ".standup"

	defaultLocale          = "en"
	defaultLLMBaseURL      = "https://api.openai.com/v1"
	defaultLLMModel        = "gpt-4o-mini"
	defaultLLMKeyEnv       = "OPENAI_API_KEY"
	defaultLLMTimeout      = 120
	defaultInstructions    = ".custom-instructions"
	defaultServerHost      = "127.0.0.1"
	defaultServerPort      = 8787
	defaultMaxRequestBytes = 1 << 20
)

const defaultProjectConfigYAML = `# standup project configuration
version: 1

# Tracker repository issues are created in (owner/name).
repo: ""
# Project board every created issue is added to. Leave empty to skip.
project: ""

# Language of the review document comments and section headings: en or ja.
locale: en

# Editor command line. Falls back to $VISUAL, $EDITOR, then vi.
editor: ""

llm:
  base_url: https://api.openai.com/v1
  model: gpt-4o-mini
  api_key_env: OPENAI_API_KEY
  timeout_seconds: 120
  # Extra instructions appended to every prompt, relative to the project root.
  instructions_file: .custom-instructions

slack:
  # Incoming webhook that receives the minutes and created issue links.
  webhook_url: ""

server:
  host: 127.0.0.1
  port: 8787
`

// LLMConfig configures the chat completions endpoint used for extraction.
type LLMConfig struct {
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	APIKeyEnv        string `yaml:"api_key_env"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	InstructionsFile string `yaml:"instructions_file,omitempty"`
}

// SlackConfig configures the minutes notification.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// ServerConfig configures `standup serve`.
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	MaxRequestBytes int64  `yaml:"max_request_bytes,omitempty"`
}

// ProjectConfig models .standup/config.yaml.
type ProjectConfig struct {
	Version int          `yaml:"version"`
	Repo    string       `yaml:"repo"`
	Project string       `yaml:"project"`
	Locale  string       `yaml:"locale"`
	Editor  string       `yaml:"editor"`
	LLM     LLMConfig    `yaml:"llm"`
	Slack   SlackConfig  `yaml:"slack"`
	Server  ServerConfig `yaml:"server"`
}

// Config holds the runtime configuration for standup.
type Config struct {
	// ProjectDir is the directory where the user ran `standup` from
	ProjectDir string

	// StandupProjectDir is ProjectDir/.standup
	StandupProjectDir string

	Project ProjectConfig
}

// InitDir creates the .standup directory structure in the given project directory.
//
// Structure created:
// .standup/
// ├── config.yaml
// ├── logs/     <- run journal
// └── state/    <- history database
func InitDir(projectDir string) error {
	dir := filepath.Join(projectDir, StandupDir)
	for _, sub := range []string{"logs", "state"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return err
		}
	}
	return ensureProjectConfig(filepath.Join(dir, "config.yaml"))
}

// Load reads .standup/config.yaml (defaults when missing) and applies
// environment overrides.
func Load(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:        projectDir,
		StandupProjectDir: filepath.Join(projectDir, StandupDir),
		Project:           defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	cfg.Project.applyEnvOverrides()
	if err := cfg.Project.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StandupProjectDir, "logs")
}

// LogPath returns the run journal file.
func (c *Config) LogPath() string {
	return filepath.Join(c.LogsDir(), "standup.log")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.StandupProjectDir, "state")
}

// HistoryPath returns the SQLite database recording past runs.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.StateDir(), "history.db")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.StandupProjectDir, "config.yaml")
}

// InstructionsPath returns the custom prompt instructions file, or "" when unset.
func (c *Config) InstructionsPath() string {
	return c.Project.LLM.InstructionsFile
}

// APIKey reads the LLM key from the configured environment variable.
func (c *Config) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.Project.LLM.APIKeyEnv))
}

// SetRepo updates the tracker repository and persists it to .standup/config.yaml.
func (c *Config) SetRepo(repo string) error {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return fmt.Errorf("config: repo is required")
	}
	c.Project.Repo = repo
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.Project.normalize(c.ProjectDir)
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Locale:  defaultLocale,
		LLM: LLMConfig{
			BaseURL:          defaultLLMBaseURL,
			Model:            defaultLLMModel,
			APIKeyEnv:        defaultLLMKeyEnv,
			TimeoutSeconds:   defaultLLMTimeout,
			InstructionsFile: defaultInstructions,
		},
		Server: ServerConfig{
			Host:            defaultServerHost,
			Port:            defaultServerPort,
			MaxRequestBytes: defaultMaxRequestBytes,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Locale) == "" {
		pc.Locale = defaultLocale
	}
	if strings.TrimSpace(pc.LLM.BaseURL) == "" {
		pc.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(pc.LLM.Model) == "" {
		pc.LLM.Model = defaultLLMModel
	}
	if strings.TrimSpace(pc.LLM.APIKeyEnv) == "" {
		pc.LLM.APIKeyEnv = defaultLLMKeyEnv
	}
	if pc.LLM.TimeoutSeconds <= 0 {
		pc.LLM.TimeoutSeconds = defaultLLMTimeout
	}
	if strings.TrimSpace(pc.Server.Host) == "" {
		pc.Server.Host = defaultServerHost
	}
	if pc.Server.Port == 0 {
		pc.Server.Port = defaultServerPort
	}
	if pc.Server.MaxRequestBytes <= 0 {
		pc.Server.MaxRequestBytes = defaultMaxRequestBytes
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Repo = strings.TrimSpace(pc.Repo)
	pc.Project = strings.TrimSpace(pc.Project)
	pc.Locale = strings.ToLower(strings.TrimSpace(pc.Locale))
	pc.Editor = strings.TrimSpace(pc.Editor)
	pc.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(pc.LLM.BaseURL), "/")
	pc.LLM.Model = strings.TrimSpace(pc.LLM.Model)
	pc.LLM.APIKeyEnv = strings.TrimSpace(pc.LLM.APIKeyEnv)
	pc.LLM.InstructionsFile = resolvePath(base, pc.LLM.InstructionsFile)
	pc.Slack.WebhookURL = strings.TrimSpace(pc.Slack.WebhookURL)
	pc.Server.Host = strings.TrimSpace(pc.Server.Host)
}

func (pc *ProjectConfig) applyEnvOverrides() {
	if repo := strings.TrimSpace(os.Getenv("STANDUP_REPO")); repo != "" {
		pc.Repo = repo
	}
	if project := strings.TrimSpace(os.Getenv("STANDUP_PROJECT")); project != "" {
		pc.Project = project
	}
	if webhook := strings.TrimSpace(os.Getenv("STANDUP_SLACK_WEBHOOK")); webhook != "" {
		pc.Slack.WebhookURL = webhook
	}
	if port := strings.TrimSpace(os.Getenv("STANDUP_SERVER_PORT")); port != "" {
		if parsed, err := strconv.Atoi(port); err == nil && isValidPort(parsed) {
			pc.Server.Port = parsed
		}
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Locale {
	case "en", "ja":
	default:
		return fmt.Errorf("locale must be 'en' or 'ja'")
	}
	if pc.Repo != "" && strings.Count(pc.Repo, "/") != 1 {
		return fmt.Errorf("repo must look like owner/name, got %q", pc.Repo)
	}
	if !isValidPort(pc.Server.Port) {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if pc.Slack.WebhookURL != "" && !strings.HasPrefix(pc.Slack.WebhookURL, "https://") && !strings.HasPrefix(pc.Slack.WebhookURL, "http://") {
		return fmt.Errorf("slack.webhook_url must be an http(s) URL")
	}
	return nil
}

func isValidPort(port int) bool {
	return port > 0 && port <= 65535
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StandupProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure standup dir: %w", err)
	}
	saved := c.Project
	if rel, err := filepath.Rel(c.ProjectDir, saved.LLM.InstructionsFile); err == nil && saved.LLM.InstructionsFile != "" && !strings.HasPrefix(rel, "..") {
		saved.LLM.InstructionsFile = rel
	}
	data, err := yaml.Marshal(saved)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
