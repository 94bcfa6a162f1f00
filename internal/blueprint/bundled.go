package blueprint

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// DefaultTemplate is the bundled implementation blueprint.
const DefaultTemplate = "implementation-blueprint"

var bundledTemplates = []string{DefaultTemplate}

//go:embed library/*.md
var bundled embed.FS

// EnsureAll installs the bundled templates into the provided directory.
func EnsureAll(baseDir string) error {
	if baseDir == "" {
		return fmt.Errorf("blueprint: base directory is empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return fmt.Errorf("blueprint: prepare template directory: %w", err)
	}
	for _, name := range bundledTemplates {
		data, err := bundled.ReadFile(path.Join("library", name+".md"))
		if err != nil {
			return fmt.Errorf("blueprint: read embedded template %s: %w", name, err)
		}
		target := filepath.Join(baseDir, name+".md")
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("blueprint: write template %s: %w", name, err)
		}
	}
	return nil
}
