// Package session records compose and review runs so past instruction
// contexts can be inspected and replayed. Sessions are plain JSON files
// under .codex/state/sessions.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes what produced a session.
type Kind string

const (
	KindCompose Kind = "compose"
	KindReview  Kind = "review"
)

// Record is one persisted session.
type Record struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
	Task        string    `json:"task,omitempty"`
	TargetPath  string    `json:"target_path,omitempty"`
	Documents   []string  `json:"documents,omitempty"`
	ContextSize int       `json:"context_size,omitempty"`
	Findings    int       `json:"findings,omitempty"`
}

// Store manages session files in a directory.
type Store struct {
	dir string
	now func() time.Time
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for session timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = clock
	}
}

// NewStore builds a store rooted at dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Save assigns an ID and timestamp when absent and persists the record.
func (s *Store) Save(record Record) (Record, error) {
	if record.Kind == "" {
		return Record{}, fmt.Errorf("session: kind is required")
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	} else {
		record.CreatedAt = record.CreatedAt.UTC()
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Record{}, fmt.Errorf("session: ensure directory: %w", err)
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("session: encode %s: %w", record.ID, err)
	}
	if err := os.WriteFile(s.path(record.ID), data, 0o644); err != nil {
		return Record{}, fmt.Errorf("session: write %s: %w", record.ID, err)
	}
	return record, nil
}

// Load reads a session by ID.
func (s *Store) Load(id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, fmt.Errorf("session: id is required")
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return Record{}, fmt.Errorf("session: read %s: %w", id, err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return record, nil
}

// List returns every session, newest first. A missing directory means no
// sessions.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("session: read %s: %w", s.dir, err)
	}
	var records []Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		record, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			// Skip corrupt files instead of hiding the healthy ones.
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

// Prune deletes all but the most recent keep sessions.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("session: keep must be >= 1")
	}
	records, err := s.List()
	if err != nil {
		return 0, err
	}
	if len(records) <= keep {
		return 0, nil
	}
	removed := 0
	for _, record := range records[keep:] {
		if err := os.Remove(s.path(record.ID)); err != nil {
			return removed, fmt.Errorf("session: remove %s: %w", record.ID, err)
		}
		removed++
	}
	return removed, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
