package lint

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/document"
)

// Runner evaluates the enabled rule set against corpus documents.
type Runner struct {
	cfg    *config.Config
	custom []Rule
}

// RunnerOption customizes a Runner during construction.
type RunnerOption func(*Runner)

// WithRules appends extra rules to the builtin set. Used by tests and by
// the custom rule loader.
func WithRules(rules ...Rule) RunnerOption {
	return func(r *Runner) {
		r.custom = append(r.custom, rules...)
	}
}

// NewRunner builds a runner, loading custom pattern rules from
// .codex/rules when present.
func NewRunner(cfg *config.Config, opts ...RunnerOption) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("lint: config is required")
	}
	runner := &Runner{cfg: cfg}
	custom, err := LoadRuleDir(cfg.RulesDir())
	if err != nil {
		return nil, err
	}
	runner.custom = append(runner.custom, custom...)
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

func (r *Runner) rulesFor(kind document.Kind) []Rule {
	rules := []Rule{
		FrontmatterRule{Kind: kind},
		LinkRule{},
		PathRule{},
		FenceRule{Languages: r.cfg.FenceLanguages()},
	}
	rules = append(rules, r.custom...)
	enabled := rules[:0]
	for _, rule := range rules {
		if !r.cfg.RuleDisabled(rule.ID()) {
			enabled = append(enabled, rule)
		}
	}
	return enabled
}

// LintEntry lints a single corpus document.
func (r *Runner) LintEntry(entry corpus.Entry) ([]Finding, error) {
	content, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, fmt.Errorf("lint: read %s: %w", entry.Path, err)
	}
	target := NewTarget(entry.Path, entry.Rel, r.cfg.ProjectDir, content)
	var findings []Finding
	for _, rule := range r.rulesFor(entry.Kind) {
		findings = append(findings, rule.Check(target)...)
	}
	return findings, nil
}

// Lint evaluates every document in the index concurrently and returns the
// aggregate findings in deterministic order.
func (r *Runner) Lint(ctx context.Context, idx *corpus.Index) ([]Finding, error) {
	entries := idx.Documents()
	results := make([][]Finding, len(entries))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i, entry := range entries {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			findings, err := r.LintEntry(entry)
			if err != nil {
				return err
			}
			results[i] = findings
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var findings []Finding
	for _, chunk := range results {
		findings = append(findings, chunk...)
	}
	if !r.cfg.RuleDisabled(RuleSkillUnique) {
		findings = append(findings, checkSkillUniqueness(idx)...)
	}
	SortFindings(findings)
	return findings, nil
}

// checkSkillUniqueness is corpus-wide: no two skills may share a frontmatter
// name or a trigger phrase.
func checkSkillUniqueness(idx *corpus.Index) []Finding {
	var findings []Finding
	names := make(map[string]string)
	triggers := make(map[string]string)
	for _, entry := range idx.Skills() {
		name := strings.ToLower(strings.TrimSpace(entry.Meta.Name))
		if name != "" {
			if prev, dup := names[name]; dup {
				findings = append(findings, Finding{
					Path:     entry.Rel,
					Line:     1,
					Rule:     RuleSkillUnique,
					Severity: SeverityError,
					Message:  fmt.Sprintf("skill name %q already used by %s", entry.Meta.Name, prev),
				})
			} else {
				names[name] = entry.Rel
			}
		}
		for _, trigger := range entry.Meta.Triggers {
			key := strings.ToLower(strings.TrimSpace(trigger))
			if key == "" {
				continue
			}
			if prev, dup := triggers[key]; dup && prev != entry.Rel {
				findings = append(findings, Finding{
					Path:     entry.Rel,
					Line:     1,
					Rule:     RuleSkillUnique,
					Severity: SeverityError,
					Message:  fmt.Sprintf("trigger %q already claimed by %s", trigger, prev),
				})
			} else if !dup {
				triggers[key] = entry.Rel
			}
		}
	}
	return findings
}
