package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/corpus"
)

// WatchHandler receives the findings for a re-linted document.
type WatchHandler func(rel string, findings []Finding)

// Watcher re-lints corpus documents as they change on disk.
type Watcher struct {
	cfg     *config.Config
	runner  *Runner
	handler WatchHandler
}

// NewWatcher builds a watcher that reports through handler.
func NewWatcher(cfg *config.Config, runner *Runner, handler WatchHandler) (*Watcher, error) {
	if cfg == nil || runner == nil {
		return nil, fmt.Errorf("lint: watcher requires config and runner")
	}
	if handler == nil {
		handler = func(string, []Finding) {}
	}
	return &Watcher{cfg: cfg, runner: runner, handler: handler}, nil
}

// Run blocks until ctx is cancelled, re-linting any corpus document that is
// created or written. The index is rescanned per event so new documents are
// picked up without a restart.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("lint: start watcher: %w", err)
	}
	defer watcher.Close()

	idx, err := corpus.Scan(w.cfg)
	if err != nil {
		return err
	}
	if err := addWatchDirs(watcher, w.cfg, idx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				// A created directory may be a new skill bundle; watch it
				// so the SKILL.md written next is seen.
				if event.Op&fsnotify.Create != 0 && isDir(event.Name) {
					idx, err = corpus.Scan(w.cfg)
					if err != nil {
						return err
					}
					if err := addWatchDirs(watcher, w.cfg, idx); err != nil {
						return err
					}
					// Vanished between event and add; next event resyncs.
					_ = watcher.Add(event.Name)
				}
				continue
			}
			idx, err = corpus.Scan(w.cfg)
			if err != nil {
				return err
			}
			// New bundle directories need watching too.
			if err := addWatchDirs(watcher, w.cfg, idx); err != nil {
				return err
			}
			rel, relErr := filepath.Rel(w.cfg.ProjectDir, event.Name)
			if relErr != nil {
				continue
			}
			entry, found := idx.Lookup(filepath.ToSlash(rel))
			if !found {
				continue
			}
			findings, lintErr := w.runner.LintEntry(entry)
			if lintErr != nil {
				continue
			}
			w.handler(entry.Rel, findings)
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// addWatchDirs registers every directory that holds corpus documents.
// Re-adding an already watched directory is a no-op for fsnotify.
func addWatchDirs(watcher *fsnotify.Watcher, cfg *config.Config, idx *corpus.Index) error {
	seen := map[string]struct{}{}
	add := func(dir string) error {
		if _, dup := seen[dir]; dup {
			return nil
		}
		seen[dir] = struct{}{}
		if err := watcher.Add(dir); err != nil {
			// Directories may vanish between scan and watch; skip them.
			return nil
		}
		return nil
	}
	if err := add(cfg.ProjectDir); err != nil {
		return err
	}
	for _, sub := range []string{cfg.SkillsDir(), cfg.TemplatesDir(), cfg.ChecklistsDir()} {
		if err := add(sub); err != nil {
			return err
		}
	}
	for _, entry := range idx.Documents() {
		if err := add(filepath.Dir(entry.Path)); err != nil {
			return err
		}
	}
	return nil
}
