// Package compose assembles the instruction context an agent should read
// before working on a task: the AGENTS.md chain governing the target path,
// followed by every skill whose triggers activate for the task description.
package compose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/document"
	"github.com/sota-codex/codex/internal/skills"
)

// Section is one document included in a composed context.
type Section struct {
	Source  string        `json:"source"`
	Kind    document.Kind `json:"kind"`
	Title   string        `json:"title"`
	Trigger string        `json:"trigger,omitempty"`
	Score   int           `json:"score,omitempty"`
	Body    string        `json:"body"`
}

// Context is an ordered instruction context for a task.
type Context struct {
	Task     string    `json:"task"`
	Path     string    `json:"path,omitempty"`
	Sections []Section `json:"sections"`
}

// Builder assembles contexts from a scanned corpus.
type Builder struct {
	cfg   *config.Config
	idx   *corpus.Index
	reg   *skills.Registry
	store *document.Store
}

// NewBuilder wires a builder over an index and registry.
func NewBuilder(cfg *config.Config, idx *corpus.Index, reg *skills.Registry) *Builder {
	return &Builder{
		cfg:   cfg,
		idx:   idx,
		reg:   reg,
		store: document.NewStore(cfg.ProjectDir),
	}
}

// Build assembles the context for a task. The AGENTS.md chain comes first,
// outermost file leading; activated skills follow in score order. Sections
// are deduplicated by source path.
func (b *Builder) Build(task, path string) (Context, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return Context{}, fmt.Errorf("compose: task description is required")
	}
	ctx := Context{Task: task, Path: strings.TrimSpace(path)}
	seen := map[string]struct{}{}

	for _, entry := range b.idx.NearestAgents(path) {
		if !entry.Ready() {
			continue
		}
		section, err := b.sectionFor(entry, "", 0)
		if err != nil {
			return Context{}, err
		}
		if _, dup := seen[section.Source]; dup {
			continue
		}
		seen[section.Source] = struct{}{}
		ctx.Sections = append(ctx.Sections, section)
	}

	for _, match := range b.reg.Match(task, b.cfg.FuzzyThreshold()) {
		entry, ok := b.idx.Skill(match.Definition.Slug)
		if !ok {
			continue
		}
		section, err := b.sectionFor(entry, match.Trigger, match.Score)
		if err != nil {
			return Context{}, err
		}
		if _, dup := seen[section.Source]; dup {
			continue
		}
		seen[section.Source] = struct{}{}
		ctx.Sections = append(ctx.Sections, section)
	}

	return ctx, nil
}

func (b *Builder) sectionFor(entry corpus.Entry, trigger string, score int) (Section, error) {
	doc, err := b.store.Load(entry.Path, entry.Kind)
	if err != nil {
		return Section{}, err
	}
	return Section{
		Source:  entry.Rel,
		Kind:    entry.Kind,
		Title:   doc.DisplayName(),
		Trigger: trigger,
		Score:   score,
		Body:    strings.TrimSpace(string(doc.Body)),
	}, nil
}

// Markdown renders the context for piping into an agent prompt. Every
// section is labelled with its source path so the agent can cite it.
func (c Context) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Instruction context\n\nTask: %s\n", c.Task)
	if c.Path != "" {
		fmt.Fprintf(&sb, "Target: %s\n", c.Path)
	}
	for _, section := range c.Sections {
		fmt.Fprintf(&sb, "\n---\n\n<!-- source: %s -->\n\n%s\n", section.Source, section.Body)
	}
	return sb.String()
}

// JSON renders the context for machine consumers.
func (c Context) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("compose: encode context: %w", err)
	}
	return data, nil
}

// Size returns the rendered Markdown length in bytes, recorded on sessions.
func (c Context) Size() int {
	return len(c.Markdown())
}

// Sources returns the included document paths in order.
func (c Context) Sources() []string {
	out := make([]string, len(c.Sections))
	for i, section := range c.Sections {
		out[i] = section.Source
	}
	return out
}
