// Package document defines the on-disk contract for managed corpus files.
// Every managed file is Markdown, optionally starting with a YAML frontmatter
// fence that declares what the document is and how agents should load it.

package document

import (
	"fmt"
	"strings"
)

// Kind captures the role a document plays inside the corpus.
type Kind string

const (
	// KindAgents represents an AGENTS.md instruction file.
	KindAgents Kind = "agents"
	// KindSkill represents a SKILL.md bundle entry point.
	KindSkill Kind = "skill"
	// KindChecklist represents a structured review checklist.
	KindChecklist Kind = "checklist"
	// KindTemplate represents a fill-in blueprint template.
	KindTemplate Kind = "template"
	// KindGuide represents free-form style or rule documentation.
	KindGuide Kind = "guide"
)

// Kinds lists every recognized document kind in display order.
var Kinds = []Kind{KindAgents, KindSkill, KindChecklist, KindTemplate, KindGuide}

// Valid reports whether the kind is one of the recognized values.
func (k Kind) Valid() bool {
	switch k {
	case KindAgents, KindSkill, KindChecklist, KindTemplate, KindGuide:
		return true
	}
	return false
}

// Meta models the YAML frontmatter block of a managed document.
type Meta struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Kind        Kind     `yaml:"kind,omitempty"`
	Version     string   `yaml:"version,omitempty"`
	Triggers    []string `yaml:"triggers,omitempty"`
	Tools       []string `yaml:"tools,omitempty"`
	Fields      []string `yaml:"fields,omitempty"`
}

// Normalized returns a trimmed copy of the metadata.
func (m Meta) Normalized() Meta {
	clone := Meta{
		Name:        strings.TrimSpace(m.Name),
		Description: strings.TrimSpace(m.Description),
		Kind:        Kind(strings.ToLower(strings.TrimSpace(string(m.Kind)))),
		Version:     strings.TrimSpace(m.Version),
	}
	clone.Triggers = trimAll(m.Triggers)
	clone.Tools = trimAll(m.Tools)
	clone.Fields = trimAll(m.Fields)
	return clone
}

// ValidateFor ensures the metadata satisfies the requirements of a kind.
// AGENTS.md files and guides carry no required keys; skills need a name and
// description, templates need a name and at least one field, checklists need
// a name.
func (m Meta) ValidateFor(kind Kind) error {
	normalized := m.Normalized()
	if normalized.Kind != "" && normalized.Kind != kind {
		return fmt.Errorf("document: frontmatter kind %q does not match %q", normalized.Kind, kind)
	}
	switch kind {
	case KindSkill:
		if normalized.Name == "" {
			return fmt.Errorf("document: skill frontmatter requires name")
		}
		if normalized.Description == "" {
			return fmt.Errorf("document: skill %s requires description", normalized.Name)
		}
	case KindTemplate:
		if normalized.Name == "" {
			return fmt.Errorf("document: template frontmatter requires name")
		}
		if len(normalized.Fields) == 0 {
			return fmt.Errorf("document: template %s requires at least one field", normalized.Name)
		}
	case KindChecklist:
		if normalized.Name == "" {
			return fmt.Errorf("document: checklist frontmatter requires name")
		}
	case KindAgents, KindGuide:
		// Frontmatter is optional for these kinds.
	default:
		return fmt.Errorf("document: unknown kind %q", kind)
	}
	return nil
}

// State captures the readiness of a document on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// Document pairs a corpus file with its parsed metadata and body.
type Document struct {
	Path string
	Kind Kind
	Meta Meta
	Body []byte
}

// DisplayName returns the frontmatter name or the path when unnamed.
func (d Document) DisplayName() string {
	if name := strings.TrimSpace(d.Meta.Name); name != "" {
		return name
	}
	return d.Path
}

// CheckResult captures Store.Check results.
type CheckResult struct {
	Path  string
	Kind  Kind
	State State
	Meta  *Meta
	Err   error
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
