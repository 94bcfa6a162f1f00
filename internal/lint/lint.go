// Package lint verifies the documentation-quality properties of a corpus:
// every referenced file path exists, every Markdown link resolves, every
// code fence carries a recognized language tag, frontmatter is well-formed,
// and skill identities stay unique.
package lint

import (
	"sort"
	"strings"
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one rule violation in one document.
type Finding struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Target is a document prepared for linting. Lines are the full raw file
// split on newlines; fenced marks the lines inside code fences so reference
// rules skip example snippets.
type Target struct {
	// Path is absolute, Rel is project-relative with slashes.
	Path    string
	Rel     string
	Root    string
	Content []byte
	Lines   []string
	fenced  []bool
}

// InFence reports whether a 1-based line sits inside a code fence.
func (t *Target) InFence(line int) bool {
	if line < 1 || line > len(t.fenced) {
		return false
	}
	return t.fenced[line-1]
}

// Rule checks one document and reports findings.
type Rule interface {
	ID() string
	Check(t *Target) []Finding
}

// NewTarget prepares a document for rule evaluation.
func NewTarget(path, rel, root string, content []byte) *Target {
	normalized := strings.ReplaceAll(string(content), "\r\n", "\n")
	lines := strings.Split(normalized, "\n")
	target := &Target{
		Path:    path,
		Rel:     rel,
		Root:    root,
		Content: []byte(normalized),
		Lines:   lines,
		fenced:  make([]bool, len(lines)),
	}
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				inFence = false
				continue
			}
			inFence = true
			continue
		}
		target.fenced[i] = inFence
	}
	return target
}

// SortFindings orders findings by file, line, then rule ID so aggregate
// output is deterministic regardless of worker scheduling.
func SortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// HasErrors reports whether any finding carries error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}
