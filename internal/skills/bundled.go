package skills

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// Slug identifies a bundled skill by its canonical folder name.
type Slug string

const (
	CodeReview        Slug = "code-review"
	BlueprintPlanning Slug = "blueprint-planning"
)

type descriptor struct {
	source string
	target string
}

var bundledSkills = map[Slug]descriptor{
	CodeReview:        {source: "code-review/SKILL.md", target: "SKILL.md"},
	BlueprintPlanning: {source: "blueprint-planning/SKILL.md", target: "SKILL.md"},
}

//go:embed library/*/SKILL.md
var bundled embed.FS

// Ensure writes the requested skill into the provided base directory and
// returns the on-disk path. Existing files are overwritten so upgrades
// refresh stale bundles.
func Ensure(baseDir string, slug Slug) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("skills: base directory is empty")
	}
	desc, ok := bundledSkills[slug]
	if !ok {
		return "", fmt.Errorf("skills: %s is not bundled", slug)
	}
	data, err := bundled.ReadFile(path.Join("library", desc.source))
	if err != nil {
		return "", fmt.Errorf("skills: read embedded skill %s: %w", slug, err)
	}
	targetDir := filepath.Join(baseDir, string(slug))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("skills: prepare skill directory %s: %w", targetDir, err)
	}
	targetPath := filepath.Join(targetDir, desc.target)
	if err := os.WriteFile(targetPath, data, 0o644); err != nil {
		return "", fmt.Errorf("skills: write skill %s: %w", slug, err)
	}
	return targetPath, nil
}

// EnsureAll installs every bundled skill under the provided base directory.
func EnsureAll(baseDir string) error {
	for slug := range bundledSkills {
		if _, err := Ensure(baseDir, slug); err != nil {
			return err
		}
	}
	return nil
}
