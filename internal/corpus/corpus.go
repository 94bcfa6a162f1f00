// Package corpus discovers and indexes the managed instruction documents of
// a project: AGENTS.md files through the source tree, SKILL.md bundles under
// .codex/skills, blueprint templates, review checklists, and any guide
// documents matched by the configured include globs.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/document"
)

// AgentsFileName is the instruction file agents look for in each directory.
const AgentsFileName = "AGENTS.md"

// SkillFileName is the entry point of a skill bundle.
const SkillFileName = "SKILL.md"

// Resources lists the auxiliary files shipped inside a skill bundle.
type Resources struct {
	Scripts    []string
	References []string
	Assets     []string
	Templates  []string
}

// Empty reports whether the bundle carries no auxiliary files.
func (r Resources) Empty() bool {
	return len(r.Scripts) == 0 && len(r.References) == 0 && len(r.Assets) == 0 && len(r.Templates) == 0
}

// Entry is one indexed corpus document. Documents with malformed or
// incomplete frontmatter are indexed with StateInvalid and empty metadata
// so lint can report them; consumers that need parsed metadata should skip
// entries that are not Ready.
type Entry struct {
	// Path is absolute; Rel is relative to the project root with slashes.
	Path      string
	Rel       string
	Kind      document.Kind
	Meta      document.Meta
	State     document.State
	Resources Resources
}

// Ready reports whether the document parsed and validated for its kind.
func (e Entry) Ready() bool {
	return e.State == document.StateReady
}

// Slug returns the bundle folder name for skill entries, otherwise the
// frontmatter name.
func (e Entry) Slug() string {
	if e.Kind == document.KindSkill {
		return filepath.Base(filepath.Dir(e.Path))
	}
	if name := strings.TrimSpace(e.Meta.Name); name != "" {
		return name
	}
	return e.Rel
}

// Index holds the scanned corpus in deterministic order.
type Index struct {
	root    string
	entries []Entry
}

// Root returns the project directory the index was scanned from.
func (idx *Index) Root() string {
	return idx.root
}

// Documents returns every entry, sorted by relative path.
func (idx *Index) Documents() []Entry {
	return idx.entries
}

// ByKind returns entries of one kind, preserving index order.
func (idx *Index) ByKind(kind document.Kind) []Entry {
	var out []Entry
	for _, e := range idx.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Skills returns the skill entries.
func (idx *Index) Skills() []Entry {
	return idx.ByKind(document.KindSkill)
}

// Lookup finds an entry by relative path.
func (idx *Index) Lookup(rel string) (Entry, bool) {
	rel = filepath.ToSlash(strings.TrimSpace(rel))
	for _, e := range idx.entries {
		if e.Rel == rel {
			return e, true
		}
	}
	return Entry{}, false
}

// Skill finds a skill entry by bundle slug.
func (idx *Index) Skill(slug string) (Entry, bool) {
	slug = strings.TrimSpace(slug)
	for _, e := range idx.Skills() {
		if e.Slug() == slug {
			return e, true
		}
	}
	return Entry{}, false
}

// NearestAgents returns every AGENTS.md that governs the given path, ordered
// outermost first (project root down to the containing directory). An empty
// path returns only the root file, when present.
func (idx *Index) NearestAgents(path string) []Entry {
	rel := filepath.ToSlash(strings.TrimSpace(path))
	if filepath.IsAbs(path) {
		if r, err := filepath.Rel(idx.root, path); err == nil {
			rel = filepath.ToSlash(r)
		}
	}
	dir := ""
	if rel != "" && rel != "." {
		dir = strings.TrimSuffix(rel, "/")
		if isFile(idx.root, dir) {
			dir = pathDir(dir)
		}
	}
	var out []Entry
	for _, e := range idx.ByKind(document.KindAgents) {
		owner := pathDir(e.Rel)
		if owner == "." {
			owner = ""
		}
		if owner == "" || dir == owner || strings.HasPrefix(dir+"/", owner+"/") {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.Count(out[i].Rel, "/") < strings.Count(out[j].Rel, "/")
	})
	return out
}

// Scan walks the project and builds the corpus index. Missing directories
// mean an empty corpus, not an error.
func Scan(cfg *config.Config) (*Index, error) {
	if cfg == nil {
		return nil, fmt.Errorf("corpus: config is required")
	}
	idx := &Index{root: cfg.ProjectDir}
	store := document.NewStore(cfg.ProjectDir)

	if err := scanAgents(cfg, store, idx); err != nil {
		return nil, err
	}
	if err := scanSkills(cfg, store, idx); err != nil {
		return nil, err
	}
	if err := scanFlatDir(cfg, store, idx, cfg.TemplatesDir(), document.KindTemplate); err != nil {
		return nil, err
	}
	if err := scanFlatDir(cfg, store, idx, cfg.ChecklistsDir(), document.KindChecklist); err != nil {
		return nil, err
	}
	if err := scanIncludes(cfg, store, idx); err != nil {
		return nil, err
	}

	sort.Slice(idx.entries, func(i, j int) bool { return idx.entries[i].Rel < idx.entries[j].Rel })
	return idx, nil
}

func scanAgents(cfg *config.Config, store *document.Store, idx *Index) error {
	return filepath.WalkDir(cfg.ProjectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		rel, relErr := filepath.Rel(cfg.ProjectDir, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == config.CodexDir || excluded(cfg, rel) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() != AgentsFileName || excluded(cfg, rel) {
			return nil
		}
		return appendEntry(store, idx, path, rel, document.KindAgents)
	})
}

func scanSkills(cfg *config.Config, store *document.Store, idx *Index) error {
	entries, err := os.ReadDir(cfg.SkillsDir())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("corpus: read %s: %w", cfg.SkillsDir(), err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		bundleDir := filepath.Join(cfg.SkillsDir(), entry.Name())
		skillPath := filepath.Join(bundleDir, SkillFileName)
		if _, err := os.Stat(skillPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		rel, err := filepath.Rel(cfg.ProjectDir, skillPath)
		if err != nil {
			return err
		}
		resources, err := collectResources(bundleDir)
		if err != nil {
			return err
		}
		checked, err := checkEntry(store, skillPath, document.KindSkill)
		if err != nil {
			return err
		}
		checked.Rel = filepath.ToSlash(rel)
		checked.Resources = resources
		idx.entries = append(idx.entries, checked)
	}
	return nil
}

func scanFlatDir(cfg *config.Config, store *document.Store, idx *Index, dir string, kind document.Kind) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("corpus: read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isMarkdown(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(cfg.ProjectDir, path)
		if err != nil {
			return err
		}
		if err := appendEntry(store, idx, path, filepath.ToSlash(rel), kind); err != nil {
			return err
		}
	}
	return nil
}

func scanIncludes(cfg *config.Config, store *document.Store, idx *Index) error {
	if len(cfg.Project.Corpus.Include) == 0 {
		return nil
	}
	return filepath.WalkDir(cfg.ProjectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		rel, relErr := filepath.Rel(cfg.ProjectDir, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if d.Name() == config.CodexDir || excluded(cfg, rel) {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == AgentsFileName || excluded(cfg, rel) || !isMarkdown(d.Name()) {
			return nil
		}
		if !matchAny(cfg.Project.Corpus.Include, rel) {
			return nil
		}
		if _, dup := idx.Lookup(rel); dup {
			return nil
		}
		return appendEntry(store, idx, path, rel, document.KindGuide)
	})
}

func appendEntry(store *document.Store, idx *Index, path, rel string, kind document.Kind) error {
	checked, err := checkEntry(store, path, kind)
	if err != nil {
		return err
	}
	checked.Rel = rel
	idx.entries = append(idx.entries, checked)
	return nil
}

// checkEntry inspects a document without failing the scan on bad
// frontmatter: invalid documents are indexed so lint can report them.
// Only IO failures abort.
func checkEntry(store *document.Store, path string, kind document.Kind) (Entry, error) {
	result, err := store.Check(path, kind)
	if result.State == document.StateError {
		return Entry{}, fmt.Errorf("corpus: check %s: %w", path, err)
	}
	entry := Entry{Path: path, Kind: kind, State: result.State}
	if result.Meta != nil {
		entry.Meta = *result.Meta
	}
	return entry, nil
}

func collectResources(bundleDir string) (Resources, error) {
	var res Resources
	buckets := map[string]*[]string{
		"scripts":    &res.Scripts,
		"references": &res.References,
		"assets":     &res.Assets,
		"templates":  &res.Templates,
	}
	for name, bucket := range buckets {
		dir := filepath.Join(bundleDir, name)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, relErr := filepath.Rel(bundleDir, path)
			if relErr != nil {
				return relErr
			}
			*bucket = append(*bucket, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return Resources{}, err
		}
		sort.Strings(*bucket)
	}
	return res, nil
}

func excluded(cfg *config.Config, rel string) bool {
	return matchAny(cfg.Project.Corpus.Exclude, rel)
}

// matchAny implements glob matching with ** support across path segments.
func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if matchGlob(filepath.ToSlash(pattern), rel) {
			return true
		}
	}
	return false
}

func matchGlob(pattern, path string) bool {
	pSegs := strings.Split(pattern, "/")
	nSegs := strings.Split(path, "/")
	return matchSegments(pSegs, nSegs)
}

func matchSegments(pattern, name []string) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	if pattern[0] == "**" {
		if matchSegments(pattern[1:], name) {
			return true
		}
		for i := range name {
			if matchSegments(pattern[1:], name[i+1:]) {
				return true
			}
		}
		return false
	}
	if len(name) == 0 {
		return false
	}
	ok, err := filepath.Match(pattern[0], name[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], name[1:])
}

func isMarkdown(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".md")
}

// isFile distinguishes file targets from directories on disk. Directories
// with dots in their names (pkg.v2, app.d) must not be trimmed to their
// parent. For paths that do not exist yet, an extension is the best guess.
func isFile(root, rel string) bool {
	info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
	if err == nil {
		return !info.IsDir()
	}
	return filepath.Ext(rel) != ""
}

func pathDir(rel string) string {
	if idx := strings.LastIndex(rel, "/"); idx >= 0 {
		return rel[:idx]
	}
	return ""
}
