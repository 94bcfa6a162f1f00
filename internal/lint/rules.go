package lint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sota-codex/codex/internal/document"
)

// Builtin rule IDs, referenced by config lint.disabled and checklist tags.
const (
	RuleLinkResolves     = "link-resolves"
	RulePathExists       = "path-exists"
	RuleFenceLanguage    = "fence-language"
	RuleFrontmatterValid = "frontmatter-valid"
	RuleSkillUnique      = "skill-unique"
)

var (
	// [text](target) and ![alt](target); target stops at whitespace or ).
	markdownLinkPattern = regexp.MustCompile(`!?\[[^\]]*\]\(([^)\s]+)[^)]*\)`)
	// `inline code` spans that look like repository paths.
	inlineCodePattern = regexp.MustCompile("`([^`\n]+)`")
	// Opening fence with optional language tag.
	fenceOpenPattern = regexp.MustCompile("^```([A-Za-z0-9_+.-]*)\\s*$")
)

// pathLikeExtensions marks inline-code spans the path-exists rule cares
// about. Anything else in backticks is treated as prose.
var pathLikeExtensions = map[string]struct{}{
	".md": {}, ".go": {}, ".sh": {}, ".json": {}, ".yaml": {}, ".yml": {},
	".ts": {}, ".tsx": {}, ".js": {}, ".astro": {}, ".css": {}, ".toml": {},
}

// LinkRule verifies that relative Markdown link targets exist on disk.
type LinkRule struct{}

func (LinkRule) ID() string { return RuleLinkResolves }

func (LinkRule) Check(t *Target) []Finding {
	var findings []Finding
	for i, line := range t.Lines {
		if t.InFence(i + 1) {
			continue
		}
		for _, match := range markdownLinkPattern.FindAllStringSubmatch(line, -1) {
			target := strings.TrimSpace(match[1])
			if skipLinkTarget(target) {
				continue
			}
			if resolved, ok := resolveReference(t, target); !ok {
				findings = append(findings, Finding{
					Path:     t.Rel,
					Line:     i + 1,
					Rule:     RuleLinkResolves,
					Severity: SeverityError,
					Message:  fmt.Sprintf("link target %s does not exist (resolved %s)", target, resolved),
				})
			}
		}
	}
	return findings
}

// PathRule verifies that inline-code spans that look like repository paths
// point at real files.
type PathRule struct{}

func (PathRule) ID() string { return RulePathExists }

func (PathRule) Check(t *Target) []Finding {
	var findings []Finding
	for i, line := range t.Lines {
		if t.InFence(i + 1) {
			continue
		}
		for _, match := range inlineCodePattern.FindAllStringSubmatch(line, -1) {
			span := strings.TrimSpace(match[1])
			if !looksLikePath(span) {
				continue
			}
			if resolved, ok := resolveReference(t, span); !ok {
				findings = append(findings, Finding{
					Path:     t.Rel,
					Line:     i + 1,
					Rule:     RulePathExists,
					Severity: SeverityError,
					Message:  fmt.Sprintf("referenced path %s does not exist (resolved %s)", span, resolved),
				})
			}
		}
	}
	return findings
}

// FenceRule verifies that fenced code blocks declare a recognized language.
type FenceRule struct {
	// Languages is the lowercase allow-list from config.
	Languages []string
}

func (FenceRule) ID() string { return RuleFenceLanguage }

func (r FenceRule) Check(t *Target) []Finding {
	allowed := make(map[string]struct{}, len(r.Languages))
	for _, lang := range r.Languages {
		allowed[strings.ToLower(lang)] = struct{}{}
	}
	var findings []Finding
	open := false
	for i, line := range t.Lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "```") {
			continue
		}
		if open {
			open = false
			continue
		}
		open = true
		match := fenceOpenPattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		lang := strings.ToLower(match[1])
		if lang == "" {
			findings = append(findings, Finding{
				Path:     t.Rel,
				Line:     i + 1,
				Rule:     RuleFenceLanguage,
				Severity: SeverityWarning,
				Message:  "code fence has no language tag",
			})
			continue
		}
		if _, ok := allowed[lang]; !ok {
			findings = append(findings, Finding{
				Path:     t.Rel,
				Line:     i + 1,
				Rule:     RuleFenceLanguage,
				Severity: SeverityError,
				Message:  fmt.Sprintf("code fence language %q is not in the allow-list", lang),
			})
		}
	}
	if open {
		findings = append(findings, Finding{
			Path:     t.Rel,
			Line:     len(t.Lines),
			Rule:     RuleFenceLanguage,
			Severity: SeverityError,
			Message:  "unterminated code fence",
		})
	}
	return findings
}

// FrontmatterRule verifies the frontmatter block parses and satisfies the
// requirements of the document's kind.
type FrontmatterRule struct {
	Kind document.Kind
}

func (FrontmatterRule) ID() string { return RuleFrontmatterValid }

func (r FrontmatterRule) Check(t *Target) []Finding {
	meta, _, err := document.ParseFrontMatter(t.Content)
	if err != nil {
		if errors.Is(err, document.ErrMissingFrontMatter) {
			if r.Kind == document.KindAgents || r.Kind == document.KindGuide {
				return nil
			}
		}
		return []Finding{{
			Path:     t.Rel,
			Line:     1,
			Rule:     RuleFrontmatterValid,
			Severity: SeverityError,
			Message:  err.Error(),
		}}
	}
	if err := meta.ValidateFor(r.Kind); err != nil {
		return []Finding{{
			Path:     t.Rel,
			Line:     1,
			Rule:     RuleFrontmatterValid,
			Severity: SeverityError,
			Message:  err.Error(),
		}}
	}
	return nil
}

// PatternRule is a custom regex rule loaded from .codex/rules.
type PatternRule struct {
	RuleID   string
	Pattern  *regexp.Regexp
	Message  string
	Level    Severity
	Source   string
	InFences bool
}

func (r PatternRule) ID() string { return r.RuleID }

func (r PatternRule) Check(t *Target) []Finding {
	var findings []Finding
	for i, line := range t.Lines {
		if !r.InFences && t.InFence(i+1) {
			continue
		}
		if r.Pattern.MatchString(line) {
			findings = append(findings, Finding{
				Path:     t.Rel,
				Line:     i + 1,
				Rule:     r.RuleID,
				Severity: r.Level,
				Message:  r.Message,
			})
		}
	}
	return findings
}

func skipLinkTarget(target string) bool {
	if target == "" || strings.HasPrefix(target, "#") {
		return true
	}
	if strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:") {
		return true
	}
	return false
}

// resolveReference resolves a document-relative (or root-relative) target
// and reports whether it exists. Fragments are stripped before resolution.
func resolveReference(t *Target, target string) (string, bool) {
	if idx := strings.Index(target, "#"); idx >= 0 {
		target = target[:idx]
	}
	if target == "" {
		return "", true
	}
	var resolved string
	if strings.HasPrefix(target, "/") {
		resolved = filepath.Join(t.Root, filepath.FromSlash(strings.TrimPrefix(target, "/")))
	} else {
		resolved = filepath.Join(filepath.Dir(t.Path), filepath.FromSlash(target))
	}
	if _, err := os.Stat(resolved); err != nil {
		return resolved, false
	}
	return resolved, true
}

func looksLikePath(span string) bool {
	if strings.ContainsAny(span, " \t") || !strings.Contains(span, "/") {
		return false
	}
	if strings.Contains(span, "://") {
		return false
	}
	_, ok := pathLikeExtensions[strings.ToLower(filepath.Ext(span))]
	return ok
}
