package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/corpus"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func fixtureConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "AGENTS.md"), "# rules\n\n[missing](gone.md)\n")
	writeFile(t, filepath.Join(root, ".codex", "skills", "alpha", "SKILL.md"),
		"---\nname: alpha\ndescription: a\nkind: skill\ntriggers:\n  - deploy\n---\n\nok\n")
	writeFile(t, filepath.Join(root, ".codex", "skills", "beta", "SKILL.md"),
		"---\nname: alpha\ndescription: b\nkind: skill\ntriggers:\n  - deploy\n---\n\nok\n")
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func TestRunnerLint(t *testing.T) {
	cfg := fixtureConfig(t)
	idx, err := corpus.Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	findings, err := runner.Lint(context.Background(), idx)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}

	byRule := map[string]int{}
	for _, f := range findings {
		byRule[f.Rule]++
	}
	if byRule[RuleLinkResolves] != 1 {
		t.Fatalf("expected 1 link finding, got %d (%+v)", byRule[RuleLinkResolves], findings)
	}
	// beta duplicates alpha's name and trigger.
	if byRule[RuleSkillUnique] != 2 {
		t.Fatalf("expected 2 uniqueness findings, got %d (%+v)", byRule[RuleSkillUnique], findings)
	}
	if !HasErrors(findings) {
		t.Fatalf("expected errors")
	}
}

func TestRunnerReportsBadFrontmatter(t *testing.T) {
	cfg := fixtureConfig(t)
	writeFile(t, filepath.Join(cfg.ProjectDir, ".codex", "skills", "broken", "SKILL.md"),
		"---\nname: broken\nkind: skill\n---\n\nmissing description\n")
	idx, err := corpus.Scan(cfg)
	if err != nil {
		t.Fatalf("scan must index the broken skill: %v", err)
	}
	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	findings, err := runner.Lint(context.Background(), idx)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	var hit bool
	for _, f := range findings {
		if f.Rule == RuleFrontmatterValid && f.Path == ".codex/skills/broken/SKILL.md" {
			hit = true
		}
	}
	if !hit {
		t.Fatalf("no frontmatter finding for the broken skill: %+v", findings)
	}
}

func TestRunnerRespectsDisabledRules(t *testing.T) {
	cfg := fixtureConfig(t)
	cfg.Project.Lint.Disabled = []string{RuleLinkResolves, RuleSkillUnique}
	idx, err := corpus.Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	findings, err := runner.Lint(context.Background(), idx)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	for _, f := range findings {
		if f.Rule == RuleLinkResolves || f.Rule == RuleSkillUnique {
			t.Fatalf("disabled rule still ran: %+v", f)
		}
	}
}

func TestRunnerDeterministicOrder(t *testing.T) {
	cfg := fixtureConfig(t)
	idx, err := corpus.Scan(cfg)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	runner, err := NewRunner(cfg)
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	first, err := runner.Lint(context.Background(), idx)
	if err != nil {
		t.Fatalf("lint: %v", err)
	}
	for range 5 {
		again, err := runner.Lint(context.Background(), idx)
		if err != nil {
			t.Fatalf("lint: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("finding count changed between runs")
		}
		for i := range again {
			if again[i] != first[i] {
				t.Fatalf("order changed at %d: %+v vs %+v", i, again[i], first[i])
			}
		}
	}
}

func TestLoadRuleDir(t *testing.T) {
	dir := t.TempDir()
	ruleFile := `package rules

func Rules() []map[string]any {
	return []map[string]any{{
		"id":       "no-todo",
		"pattern":  "TODO",
		"message":  "instruction files must not carry TODOs",
		"severity": "warning",
	}}
}
`
	writeFile(t, filepath.Join(dir, "no_todo.go"), ruleFile)
	rules, err := LoadRuleDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(rules) != 1 || rules[0].ID() != "no-todo" {
		t.Fatalf("unexpected rules: %+v", rules)
	}
	target := NewTarget("/x/doc.md", "doc.md", "/x", []byte("TODO later\n"))
	if findings := rules[0].Check(target); len(findings) != 1 {
		t.Fatalf("custom rule did not fire: %+v", findings)
	}
}

func TestLoadRuleDirMissing(t *testing.T) {
	rules, err := LoadRuleDir(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	if rules != nil {
		t.Fatalf("expected nil rules, got %v", rules)
	}
}

func TestLoadRuleDirRejectsBadSeverity(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.go"), `package rules

func Rules() []map[string]any {
	return []map[string]any{{"id": "x", "pattern": "y", "severity": "fatal"}}
}
`)
	if _, err := LoadRuleDir(dir); err == nil {
		t.Fatalf("expected severity validation error")
	}
}
