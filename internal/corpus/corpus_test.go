package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/document"
)

const testSkill = `---
name: code-review
description: Structured review of a change set.
kind: skill
triggers:
  - review
---

# Code Review
`

const testChecklist = `---
name: go-review
kind: checklist
---

## Correctness

- [ ] Errors are wrapped with context. lint:link-resolves
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func scanFixture(t *testing.T) (*config.Config, *Index) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "AGENTS.md"), "# House rules\n")
	writeFile(t, filepath.Join(root, "web", "AGENTS.md"), "# Frontend rules\n")
	writeFile(t, filepath.Join(root, ".codex", "skills", "code-review", "SKILL.md"), testSkill)
	writeFile(t, filepath.Join(root, ".codex", "skills", "code-review", "scripts", "run.sh"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(root, ".codex", "checklists", "go-review.md"), testChecklist)
	writeFile(t, filepath.Join(root, "docs", "style.md"), "# Style guide\n")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "README.md"), "# ignore me\n")

	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Project.Corpus.Include = []string{"docs/**/*.md"}
	cfg.Project.Corpus.Exclude = []string{"node_modules/**"}

	idx, err := Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return cfg, idx
}

func TestScanFindsAllKinds(t *testing.T) {
	_, idx := scanFixture(t)
	if got := len(idx.ByKind(document.KindAgents)); got != 2 {
		t.Fatalf("expected 2 agents files, got %d", got)
	}
	if got := len(idx.Skills()); got != 1 {
		t.Fatalf("expected 1 skill, got %d", got)
	}
	if got := len(idx.ByKind(document.KindChecklist)); got != 1 {
		t.Fatalf("expected 1 checklist, got %d", got)
	}
	if got := len(idx.ByKind(document.KindGuide)); got != 1 {
		t.Fatalf("expected 1 guide, got %d", got)
	}
	if _, found := idx.Lookup("node_modules/pkg/README.md"); found {
		t.Fatalf("excluded path leaked into index")
	}
}

func TestScanSkillResources(t *testing.T) {
	_, idx := scanFixture(t)
	skill, ok := idx.Skill("code-review")
	if !ok {
		t.Fatalf("skill not indexed")
	}
	if len(skill.Resources.Scripts) != 1 || skill.Resources.Scripts[0] != "scripts/run.sh" {
		t.Fatalf("unexpected resources: %+v", skill.Resources)
	}
	if skill.Meta.Name != "code-review" {
		t.Fatalf("unexpected meta: %+v", skill.Meta)
	}
}

func TestScanEmptyProject(t *testing.T) {
	cfg, err := config.NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	idx, err := Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(idx.Documents()) != 0 {
		t.Fatalf("expected empty index, got %d entries", len(idx.Documents()))
	}
}

func TestNearestAgentsOrdering(t *testing.T) {
	_, idx := scanFixture(t)
	chain := idx.NearestAgents("web/components/Button.tsx")
	if len(chain) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(chain))
	}
	if chain[0].Rel != "AGENTS.md" || chain[1].Rel != "web/AGENTS.md" {
		t.Fatalf("wrong order: %s, %s", chain[0].Rel, chain[1].Rel)
	}

	rootOnly := idx.NearestAgents("docs/style.md")
	if len(rootOnly) != 1 || rootOnly[0].Rel != "AGENTS.md" {
		t.Fatalf("expected root AGENTS.md only, got %+v", rootOnly)
	}
}

func TestScanIndexesInvalidDocuments(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".codex", "skills", "good", "SKILL.md"), testSkill)
	writeFile(t, filepath.Join(root, ".codex", "skills", "broken", "SKILL.md"),
		"---\nname: broken\nkind: skill\n---\n\nno description\n")
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	idx, err := Scan(cfg)
	if err != nil {
		t.Fatalf("scan must tolerate bad frontmatter: %v", err)
	}
	if got := len(idx.Skills()); got != 2 {
		t.Fatalf("expected both skills indexed, got %d", got)
	}
	broken, ok := idx.Lookup(".codex/skills/broken/SKILL.md")
	if !ok {
		t.Fatalf("broken skill missing from index")
	}
	if broken.Ready() || broken.State != document.StateInvalid {
		t.Fatalf("expected invalid state, got %q", broken.State)
	}
	good, ok := idx.Skill("good")
	if !ok || !good.Ready() {
		t.Fatalf("valid skill should stay ready: %+v", good)
	}
}

func TestNearestAgentsDottedDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "AGENTS.md"), "# House rules\n")
	writeFile(t, filepath.Join(root, "pkg.v2", "AGENTS.md"), "# Module rules\n")
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	idx, err := Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	chain := idx.NearestAgents("pkg.v2")
	if len(chain) != 2 {
		t.Fatalf("dotted directory lost its own AGENTS.md: %+v", chain)
	}
	if chain[1].Rel != "pkg.v2/AGENTS.md" {
		t.Fatalf("wrong order: %+v", chain)
	}
	// A file inside still resolves through the directory.
	inner := idx.NearestAgents("pkg.v2/conn.go")
	if len(inner) != 2 {
		t.Fatalf("expected 2 entries for nested file, got %+v", inner)
	}
}

func TestMatchGlob(t *testing.T) {
	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"docs/**/*.md", "docs/style.md", true},
		{"docs/**/*.md", "docs/deep/nested/file.md", true},
		{"docs/**/*.md", "src/style.md", false},
		{"node_modules/**", "node_modules/pkg/index.js", true},
		{"*.md", "README.md", true},
		{"*.md", "docs/README.md", false},
	}
	for _, tc := range cases {
		if got := matchGlob(tc.pattern, tc.path); got != tc.want {
			t.Fatalf("matchGlob(%q, %q) = %v, want %v", tc.pattern, tc.path, got, tc.want)
		}
	}
}
