package review

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// DefaultChecklist is the name of the bundled review checklist.
const DefaultChecklist = "code-review"

//go:embed library/*.md
var bundled embed.FS

// EnsureAll installs the bundled checklists under the provided directory.
// Existing files are overwritten so upgrades refresh stale bundles.
func EnsureAll(baseDir string) error {
	if baseDir == "" {
		return fmt.Errorf("review: base directory is empty")
	}
	entries, err := bundled.ReadDir("library")
	if err != nil {
		return fmt.Errorf("review: read embedded checklists: %w", err)
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return fmt.Errorf("review: prepare checklist directory %s: %w", baseDir, err)
	}
	for _, entry := range entries {
		data, err := bundled.ReadFile(path.Join("library", entry.Name()))
		if err != nil {
			return fmt.Errorf("review: read embedded checklist %s: %w", entry.Name(), err)
		}
		target := filepath.Join(baseDir, entry.Name())
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("review: write checklist %s: %w", target, err)
		}
	}
	return nil
}
