package lint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherSeesNewBundleDirectory(t *testing.T) {
	cfg := fixtureConfig(t)
	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	results := make(chan string, 8)
	watcher, err := NewWatcher(cfg, runner, func(rel string, findings []Finding) {
		results <- rel
	})
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	// Give the watcher time to register the existing directories, then
	// create the bundle directory before its SKILL.md exists.
	time.Sleep(250 * time.Millisecond)
	bundle := filepath.Join(cfg.SkillsDir(), "gamma")
	if err := os.Mkdir(bundle, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	time.Sleep(250 * time.Millisecond)
	writeFile(t, filepath.Join(bundle, "SKILL.md"),
		"---\nname: gamma\ndescription: g\nkind: skill\n---\n\nok\n")

	select {
	case rel := <-results:
		if rel != ".codex/skills/gamma/SKILL.md" {
			t.Fatalf("unexpected document re-linted: %s", rel)
		}
	case <-ctx.Done():
		t.Fatalf("new bundle never re-linted")
	}

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		t.Fatalf("watcher run: %v", err)
	}
}
