// internal/config/config.go
//
// This package handles configuration and the .codex directory structure.
// Every project that uses codex gets a .codex/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// CodexDir is the name of the directory we create in each project
	CodexDir = ".codex"

	defaultServerAddr       = ":7333"
	defaultFuzzyThreshold   = 40
	defaultSessionRetention = 50
)

const defaultProjectConfigYAML = `# codex project configuration
version: 1

corpus:
  # Extra glob patterns scanned for guide documents, relative to the project root.
  include:
    - "docs/**/*.md"
  exclude:
    - "node_modules/**"
    - ".git/**"

lint:
  # Rule IDs listed here are skipped.
  disabled: []
  # Language tags accepted by the fence-language rule.
  fence_languages:
    - go
    - bash
    - sh
    - json
    - yaml
    - markdown
    - text
    - ts
    - tsx
    - astro

compose:
  # Minimum fuzzy score (0-100) for a skill trigger to activate.
  fuzzy_threshold: 40

sessions:
  # Number of recorded sessions kept by prune.
  retention: 50

server:
  addr: ":7333"
`

// CorpusConfig controls which files outside .codex/ join the corpus.
type CorpusConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// LintConfig controls rule selection and the fence language allow-list.
type LintConfig struct {
	Disabled       []string `yaml:"disabled,omitempty"`
	FenceLanguages []string `yaml:"fence_languages,omitempty"`
}

// ComposeConfig controls context assembly.
type ComposeConfig struct {
	FuzzyThreshold int `yaml:"fuzzy_threshold,omitempty"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	Retention int `yaml:"retention,omitempty"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// ProjectConfig models .codex/config.yaml.
type ProjectConfig struct {
	Version  int           `yaml:"version"`
	Corpus   CorpusConfig  `yaml:"corpus,omitempty"`
	Lint     LintConfig    `yaml:"lint,omitempty"`
	Compose  ComposeConfig `yaml:"compose,omitempty"`
	Sessions SessionConfig `yaml:"sessions,omitempty"`
	Server   ServerConfig  `yaml:"server,omitempty"`
}

// Config holds the runtime configuration for codex.
type Config struct {
	// ProjectDir is the directory where the user ran `codex` from
	ProjectDir string

	// CodexProjectDir is ProjectDir/.codex
	CodexProjectDir string

	Project ProjectConfig
}

// InitCodexDir creates the .codex directory structure in the given project
// directory. Called by `codex init` and before the TUI starts.
//
// Structure created:
// .codex/
// ├── skills/      <- SKILL.md bundles, one folder per slug
// ├── templates/   <- Blueprint templates
// ├── checklists/  <- Review checklists
// ├── rules/       <- Custom lint rule files (interpreted Go)
// ├── state/
// │   └── sessions/ <- Recorded compose/review sessions
// └── logs/        <- Journey log for the TUI
func InitCodexDir(projectDir string) error {
	codexDir := filepath.Join(projectDir, CodexDir)

	dirs := []string{
		filepath.Join(codexDir, "skills"),
		filepath.Join(codexDir, "templates"),
		filepath.Join(codexDir, "checklists"),
		filepath.Join(codexDir, "rules"),
		filepath.Join(codexDir, "state", "sessions"),
		filepath.Join(codexDir, "logs"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return ensureProjectConfig(filepath.Join(codexDir, "config.yaml"))
}

// NewConfig creates a Config populated with project settings. An absent
// config file yields defaults.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:      projectDir,
		CodexProjectDir: filepath.Join(projectDir, CodexDir),
		Project:         defaultProjectConfig(),
	}

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SkillsDir returns the directory holding SKILL.md bundles.
func (c *Config) SkillsDir() string {
	return filepath.Join(c.CodexProjectDir, "skills")
}

// TemplatesDir returns the directory holding blueprint templates.
func (c *Config) TemplatesDir() string {
	return filepath.Join(c.CodexProjectDir, "templates")
}

// ChecklistsDir returns the directory holding review checklists.
func (c *Config) ChecklistsDir() string {
	return filepath.Join(c.CodexProjectDir, "checklists")
}

// RulesDir returns the directory holding custom lint rule files.
func (c *Config) RulesDir() string {
	return filepath.Join(c.CodexProjectDir, "rules")
}

// StateDir returns the path to the state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.CodexProjectDir, "state")
}

// SessionsDir returns the directory holding recorded sessions.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.StateDir(), "sessions")
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.CodexProjectDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.CodexProjectDir, "config.yaml")
}

// FuzzyThreshold returns the compose fuzzy activation threshold.
func (c *Config) FuzzyThreshold() int {
	return c.Project.Compose.FuzzyThreshold
}

// SessionRetention returns how many sessions prune keeps.
func (c *Config) SessionRetention() int {
	return c.Project.Sessions.Retention
}

// ServerAddr returns the configured HTTP bind address.
func (c *Config) ServerAddr() string {
	return c.Project.Server.Addr
}

// RuleDisabled reports whether a lint rule ID is switched off.
func (c *Config) RuleDisabled(id string) bool {
	for _, disabled := range c.Project.Lint.Disabled {
		if strings.EqualFold(strings.TrimSpace(disabled), id) {
			return true
		}
	}
	return false
}

// FenceLanguages returns the accepted fence language tags.
func (c *Config) FenceLanguages() []string {
	return c.Project.Lint.FenceLanguages
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	cfg := ProjectConfig{Version: 1}
	cfg.applyDefaults()
	return cfg
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Compose.FuzzyThreshold == 0 {
		pc.Compose.FuzzyThreshold = defaultFuzzyThreshold
	}
	if pc.Sessions.Retention == 0 {
		pc.Sessions.Retention = defaultSessionRetention
	}
	if strings.TrimSpace(pc.Server.Addr) == "" {
		pc.Server.Addr = defaultServerAddr
	}
	if len(pc.Lint.FenceLanguages) == 0 {
		pc.Lint.FenceLanguages = defaultFenceLanguages()
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Corpus.Include = trimList(pc.Corpus.Include)
	pc.Corpus.Exclude = trimList(pc.Corpus.Exclude)
	pc.Lint.Disabled = trimList(pc.Lint.Disabled)
	pc.Lint.FenceLanguages = lowerList(pc.Lint.FenceLanguages)
	pc.Server.Addr = strings.TrimSpace(pc.Server.Addr)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Compose.FuzzyThreshold < 0 || pc.Compose.FuzzyThreshold > 100 {
		return fmt.Errorf("compose.fuzzy_threshold must be between 0 and 100")
	}
	if pc.Sessions.Retention < 1 {
		return fmt.Errorf("sessions.retention must be >= 1")
	}
	if pc.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

func defaultFenceLanguages() []string {
	return []string{"go", "bash", "sh", "json", "yaml", "markdown", "text", "ts", "tsx", "astro"}
}

func trimList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func lowerList(values []string) []string {
	out := trimList(values)
	for i, v := range out {
		out[i] = strings.ToLower(v)
	}
	return out
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

// Save persists the current project configuration back to .codex/config.yaml.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.CodexProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure codex dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
