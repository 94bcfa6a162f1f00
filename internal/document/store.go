package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store manages document IO rooted at a corpus directory.
type Store struct {
	root string
}

// NewStore builds a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: filepath.Clean(dir)}
}

// Root returns the corpus root directory.
func (s *Store) Root() string {
	return s.root
}

// resolve joins a relative path onto the corpus root. Absolute paths pass
// through unchanged so callers can check files outside the root.
func (s *Store) resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.root, path)
}

// Check inspects the document on disk and returns its state and metadata.
// Frontmatter problems surface as StateInvalid; IO problems as StateError.
func (s *Store) Check(path string, kind Kind) (CheckResult, error) {
	full := s.resolve(path)
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Path: full, Kind: kind, State: StateMissing}, nil
		}
		return CheckResult{Path: full, Kind: kind, State: StateError, Err: err}, err
	}
	if info.IsDir() {
		err := fmt.Errorf("document: %s is a directory", full)
		return invalidResult(full, kind, err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return CheckResult{Path: full, Kind: kind, State: StateError, Err: err}, err
	}
	meta, _, err := ParseFrontMatter(data)
	if err != nil {
		if errors.Is(err, ErrMissingFrontMatter) && frontmatterOptional(kind) {
			return CheckResult{Path: full, Kind: kind, State: StateReady}, nil
		}
		return invalidResult(full, kind, err)
	}
	if err := meta.ValidateFor(kind); err != nil {
		return invalidResult(full, kind, err)
	}
	return CheckResult{Path: full, Kind: kind, State: StateReady, Meta: &meta}, nil
}

// Load reads and parses a document of the given kind.
func (s *Store) Load(path string, kind Kind) (Document, error) {
	full := s.resolve(path)
	data, err := os.ReadFile(full)
	if err != nil {
		return Document{}, fmt.Errorf("document: read %s: %w", full, err)
	}
	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		if !errors.Is(err, ErrMissingFrontMatter) || !frontmatterOptional(kind) {
			return Document{}, fmt.Errorf("document: %s: %w", full, err)
		}
		meta, body = Meta{}, normalizeNewlines(data)
	}
	if err := meta.ValidateFor(kind); err != nil {
		return Document{}, fmt.Errorf("document: %s: %w", full, err)
	}
	return Document{Path: full, Kind: kind, Meta: meta, Body: body}, nil
}

// Write persists a document, creating parent directories as needed. Documents
// with a named frontmatter block are written with regenerated fences; unnamed
// ones are written as plain Markdown.
func (s *Store) Write(doc Document) error {
	if doc.Path == "" {
		return fmt.Errorf("document: write requires a path")
	}
	full := s.resolve(doc.Path)
	if err := doc.Meta.ValidateFor(doc.Kind); err != nil {
		return err
	}
	content := doc.Body
	if doc.Meta.Normalized().Name != "" {
		rendered, err := WriteFrontMatter(doc.Meta, doc.Body)
		if err != nil {
			return err
		}
		content = rendered
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, content, 0o644)
}

func frontmatterOptional(kind Kind) bool {
	return kind == KindAgents || kind == KindGuide
}

func invalidResult(path string, kind Kind, err error) (CheckResult, error) {
	return CheckResult{Path: path, Kind: kind, State: StateInvalid, Err: err}, err
}
