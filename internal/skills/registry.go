// Package skills maintains the registry of SKILL.md bundles: validation,
// duplicate detection, trigger matching, and installation of the bundled
// starter skills.
package skills

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/document"
)

const exactMatchScore = 100

// Definition is a registered skill.
type Definition struct {
	Slug      string
	Path      string
	Meta      document.Meta
	Resources corpus.Resources
}

// Validate ensures the definition is loadable by agents.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Slug) == "" {
		return fmt.Errorf("skills: slug is required")
	}
	if strings.ContainsAny(d.Slug, `/\`) {
		return fmt.Errorf("skills: slug %s contains path separator", d.Slug)
	}
	if err := d.Meta.ValidateFor(document.KindSkill); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(d.Meta.Triggers))
	for _, trigger := range d.Meta.Triggers {
		key := strings.ToLower(strings.TrimSpace(trigger))
		if _, dup := seen[key]; dup {
			return fmt.Errorf("skills: %s declares duplicate trigger %q", d.Slug, trigger)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Registry maps slugs to skill definitions.
type Registry struct {
	defs  map[string]Definition
	order []string
	// source path per slug, used in duplicate errors
	sources map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:    make(map[string]Definition),
		sources: make(map[string]string),
	}
}

// Register adds a definition. Registering a duplicate slug fails with both
// source paths in the error.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	if existing, dup := r.sources[def.Slug]; dup {
		return fmt.Errorf("skills: duplicate slug %s (%s and %s)", def.Slug, existing, def.Path)
	}
	r.defs[def.Slug] = def
	r.sources[def.Slug] = def.Path
	r.order = append(r.order, def.Slug)
	sort.Strings(r.order)
	return nil
}

// FromIndex builds a registry from a scanned corpus. Invalid bundles stay
// out of the registry; lint reports them.
func FromIndex(idx *corpus.Index) (*Registry, error) {
	reg := NewRegistry()
	for _, entry := range idx.Skills() {
		if !entry.Ready() {
			continue
		}
		def := Definition{
			Slug:      entry.Slug(),
			Path:      entry.Path,
			Meta:      entry.Meta,
			Resources: entry.Resources,
		}
		if err := reg.Register(def); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Slugs returns every registered slug in sorted order.
func (r *Registry) Slugs() []string {
	return append([]string{}, r.order...)
}

// Lookup returns a definition by slug.
func (r *Registry) Lookup(slug string) (Definition, bool) {
	def, ok := r.defs[strings.TrimSpace(slug)]
	return def, ok
}

// Len returns the number of registered skills.
func (r *Registry) Len() int {
	return len(r.order)
}

// Match is one activated skill with its activation score.
type Match struct {
	Definition Definition
	Trigger    string
	Score      int
}

// Match returns the skills whose triggers activate for a task description,
// best score first. An exact (case-insensitive) phrase containment scores
// 100; otherwise the best fuzzy score at or above threshold activates.
func (r *Registry) Match(task string, threshold int) []Match {
	task = strings.TrimSpace(task)
	if task == "" {
		return nil
	}
	lowered := strings.ToLower(task)
	var out []Match
	for _, slug := range r.order {
		def := r.defs[slug]
		best := Match{Score: -1}
		for _, trigger := range def.Meta.Triggers {
			score := triggerScore(lowered, task, trigger, threshold)
			if score > best.Score {
				best = Match{Definition: def, Trigger: trigger, Score: score}
			}
		}
		if best.Score >= 0 {
			out = append(out, best)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func triggerScore(loweredTask, task, trigger string, threshold int) int {
	trimmed := strings.ToLower(strings.TrimSpace(trigger))
	if trimmed == "" {
		return -1
	}
	if strings.Contains(loweredTask, trimmed) {
		return exactMatchScore
	}
	matches := fuzzy.Find(trimmed, []string{task})
	if len(matches) == 0 {
		return -1
	}
	score := matches[0].Score
	if score < threshold || score >= exactMatchScore {
		if score >= exactMatchScore {
			return exactMatchScore - 1
		}
		return -1
	}
	return score
}
