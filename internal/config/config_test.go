package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitCodexDir(t *testing.T) {
	root := t.TempDir()
	if err := InitCodexDir(root); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, dir := range []string{"skills", "templates", "checklists", "rules", "logs", filepath.Join("state", "sessions")} {
		info, err := os.Stat(filepath.Join(root, CodexDir, dir))
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	if _, err := os.Stat(filepath.Join(root, CodexDir, "config.yaml")); err != nil {
		t.Fatalf("expected default config: %v", err)
	}
}

func TestInitCodexDirKeepsExistingConfig(t *testing.T) {
	root := t.TempDir()
	if err := InitCodexDir(root); err != nil {
		t.Fatalf("init: %v", err)
	}
	custom := []byte("version: 1\nserver:\n  addr: \":9000\"\n")
	path := filepath.Join(root, CodexDir, "config.yaml")
	if err := os.WriteFile(path, custom, 0o644); err != nil {
		t.Fatalf("write custom: %v", err)
	}
	if err := InitCodexDir(root); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != string(custom) {
		t.Fatalf("re-init overwrote existing config")
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ServerAddr() != ":7333" {
		t.Fatalf("unexpected addr: %s", cfg.ServerAddr())
	}
	if cfg.FuzzyThreshold() != 40 {
		t.Fatalf("unexpected threshold: %d", cfg.FuzzyThreshold())
	}
	if cfg.SessionRetention() != 50 {
		t.Fatalf("unexpected retention: %d", cfg.SessionRetention())
	}
	if len(cfg.FenceLanguages()) == 0 {
		t.Fatalf("expected default fence languages")
	}
}

func TestNewConfigLoadsFile(t *testing.T) {
	root := t.TempDir()
	if err := InitCodexDir(root); err != nil {
		t.Fatalf("init: %v", err)
	}
	content := `version: 1
lint:
  disabled:
    - path-exists
  fence_languages:
    - GO
server:
  addr: ":8088"
`
	if err := os.WriteFile(filepath.Join(root, CodexDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := NewConfig(root)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ServerAddr() != ":8088" {
		t.Fatalf("unexpected addr: %s", cfg.ServerAddr())
	}
	if !cfg.RuleDisabled("path-exists") {
		t.Fatalf("expected path-exists disabled")
	}
	if cfg.RuleDisabled("link-resolves") {
		t.Fatalf("link-resolves should stay enabled")
	}
	if langs := cfg.FenceLanguages(); len(langs) != 1 || langs[0] != "go" {
		t.Fatalf("expected lowercased languages, got %v", langs)
	}
}

func TestNewConfigRejectsBadThreshold(t *testing.T) {
	root := t.TempDir()
	if err := InitCodexDir(root); err != nil {
		t.Fatalf("init: %v", err)
	}
	content := "version: 1\ncompose:\n  fuzzy_threshold: 250\n"
	if err := os.WriteFile(filepath.Join(root, CodexDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := NewConfig(root); err == nil {
		t.Fatalf("expected threshold validation error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg, err := NewConfig(root)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	cfg.Project.Server.Addr = ":9999"
	if err := cfg.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	reloaded, err := NewConfig(root)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ServerAddr() != ":9999" {
		t.Fatalf("save lost addr: %s", reloaded.ServerAddr())
	}
}
