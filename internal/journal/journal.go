// Package journal keeps an append-only activity log under .codex/logs so
// the TUI and `codex sessions` can show what the toolchain did recently.
package journal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// FileName is the journal file created under the logs directory.
const FileName = "journal.log"

// Entry is one parsed journal line.
type Entry struct {
	Time    time.Time
	Level   Level
	Message string
}

// Journal persists activity to a plain text file, one entry per line.
type Journal struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Option customizes a Journal during construction.
type Option func(*Journal)

// WithClock overrides the clock used for entry timestamps.
func WithClock(clock func() time.Time) Option {
	return func(j *Journal) {
		j.now = clock
	}
}

// Open creates a journal inside the provided logs directory.
func Open(logsDir string, opts ...Option) (*Journal, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: prepare %s: %w", logsDir, err)
	}
	j := &Journal{path: filepath.Join(logsDir, FileName), now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Path returns the file backing this journal.
func (j *Journal) Path() string {
	if j == nil {
		return ""
	}
	return j.path
}

// Append writes a single entry. Failures are swallowed; the journal is a
// convenience, never a reason to fail the command that produced the entry.
func (j *Journal) Append(level Level, message string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	line := fmt.Sprintf("%s %-5s %s\n",
		j.now().UTC().Format(time.RFC3339),
		string(level),
		strings.TrimSpace(message),
	)
	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	_, _ = file.WriteString(line)
}

// Info appends an informational entry.
func (j *Journal) Info(format string, args ...any) {
	j.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (j *Journal) Warn(format string, args ...any) {
	j.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (j *Journal) Error(format string, args ...any) {
	j.Append(LevelError, fmt.Sprintf(format, args...))
}

// Tail returns up to max of the most recent entries, oldest first.
// Lines that do not parse are kept as messages so nothing disappears.
func (j *Journal) Tail(max int) []Entry {
	if j == nil || max <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	file, err := os.Open(j.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if text := strings.TrimSpace(scanner.Text()); text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, parseLine(line))
	}
	return entries
}

func parseLine(line string) Entry {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) == 3 {
		if ts, err := time.Parse(time.RFC3339, fields[0]); err == nil {
			return Entry{
				Time:    ts,
				Level:   Level(strings.TrimSpace(fields[1])),
				Message: strings.TrimSpace(fields[2]),
			}
		}
	}
	return Entry{Level: LevelInfo, Message: line}
}
