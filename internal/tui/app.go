// internal/tui/app.go
//
// Interactive corpus browser. Built on bubbletea's Elm loop:
// messages update the model, the model renders the view. The left pane
// lists every indexed document with fuzzy filtering; the right pane shows
// a glamour-rendered preview or the current lint findings.

package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/sota-codex/codex/internal/config"
	"github.com/sota-codex/codex/internal/corpus"
	"github.com/sota-codex/codex/internal/journal"
	"github.com/sota-codex/codex/internal/lint"
)

type paneState int

const (
	paneBrowse paneState = iota // list focused, preview follows selection
	paneLint                    // right pane shows lint findings
	paneLog                     // right pane shows recent journal entries
)

const previewWrapMargin = 6

// docItem implements list.Item for one corpus entry.
type docItem struct {
	entry corpus.Entry
}

func (i docItem) Title() string { return i.entry.Rel }

func (i docItem) Description() string {
	desc := strings.TrimSpace(i.entry.Meta.Description)
	if desc == "" {
		desc = string(i.entry.Kind)
	}
	return desc
}

func (i docItem) FilterValue() string {
	return i.entry.Rel + " " + i.entry.Meta.Name
}

type lintDoneMsg struct {
	findings []lint.Finding
	err      error
}

type rescanDoneMsg struct {
	idx *corpus.Index
	err error
}

// App is the bubbletea model holding all TUI state.
type App struct {
	cfg     *config.Config
	idx     *corpus.Index
	runner  *lint.Runner
	journal *journal.Journal

	pane     paneState
	browser  list.Model
	preview  viewport.Model
	renderer *glamour.TermRenderer

	findings []lint.Finding
	linting  bool
	status   string
	err      error

	width  int
	height int
	ready  bool
}

// NewApp scans the project and builds the browser model.
func NewApp(projectDir string) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	idx, err := corpus.Scan(cfg)
	if err != nil {
		return nil, err
	}
	runner, err := lint.NewRunner(cfg)
	if err != nil {
		return nil, err
	}
	jnl, _ := journal.Open(cfg.LogsDir())
	jnl.Info("browser opened, %d documents indexed", len(idx.Documents()))

	browser := list.New(itemsFor(idx), list.NewDefaultDelegate(), 0, 0)
	browser.Title = "codex corpus"
	browser.SetShowStatusBar(false)

	app := &App{
		cfg:     cfg,
		idx:     idx,
		runner:  runner,
		journal: jnl,
		browser: browser,
		preview: viewport.New(0, 0),
		status:  fmt.Sprintf("%d documents", len(idx.Documents())),
	}
	return app, nil
}

func itemsFor(idx *corpus.Index) []list.Item {
	entries := idx.Documents()
	items := make([]list.Item, len(entries))
	for i, entry := range entries {
		items[i] = docItem{entry: entry}
	}
	return items
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.layout()
		a.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(a.previewWidth()-previewWrapMargin),
		)
		a.refreshPreview()
		return a, nil

	case tea.KeyMsg:
		// While the list filter is active, keys belong to the filter.
		if a.browser.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "q", "ctrl+c":
			a.journal.Info("browser closed")
			return a, tea.Quit
		case "l":
			if !a.linting {
				a.linting = true
				a.pane = paneLint
				a.status = "linting..."
				return a, a.lintCmd()
			}
			return a, nil
		case "r":
			a.status = "rescanning..."
			return a, a.rescanCmd()
		case "g":
			a.pane = paneLog
			a.refreshPreview()
			return a, nil
		case "esc":
			if a.pane != paneBrowse {
				a.pane = paneBrowse
				a.refreshPreview()
				return a, nil
			}
		case "enter":
			a.pane = paneBrowse
			a.refreshPreview()
			return a, nil
		}

	case lintDoneMsg:
		a.linting = false
		if msg.err != nil {
			a.err = msg.err
			a.status = "lint failed"
			a.journal.Error("lint failed: %v", msg.err)
		} else {
			a.findings = msg.findings
			a.err = nil
			a.status = fmt.Sprintf("%d findings", len(msg.findings))
			a.journal.Info("lint finished with %d findings", len(msg.findings))
		}
		a.refreshPreview()
		return a, nil

	case rescanDoneMsg:
		if msg.err != nil {
			a.err = msg.err
			a.status = "rescan failed"
			return a, nil
		}
		a.idx = msg.idx
		a.err = nil
		a.status = fmt.Sprintf("%d documents", len(msg.idx.Documents()))
		a.journal.Info("rescan indexed %d documents", len(msg.idx.Documents()))
		cmd := a.browser.SetItems(itemsFor(msg.idx))
		a.refreshPreview()
		return a, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	before := a.browser.Index()
	a.browser, cmd = a.browser.Update(msg)
	cmds = append(cmds, cmd)
	if a.browser.Index() != before && a.pane == paneBrowse {
		a.refreshPreview()
	}
	a.preview, cmd = a.preview.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a *App) lintCmd() tea.Cmd {
	runner, idx := a.runner, a.idx
	return func() tea.Msg {
		findings, err := runner.Lint(context.Background(), idx)
		return lintDoneMsg{findings: findings, err: err}
	}
}

func (a *App) rescanCmd() tea.Cmd {
	cfg := a.cfg
	return func() tea.Msg {
		idx, err := corpus.Scan(cfg)
		return rescanDoneMsg{idx: idx, err: err}
	}
}

func (a *App) layout() {
	listWidth := a.width / 3
	if listWidth < 30 {
		listWidth = 30
	}
	contentHeight := a.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	a.browser.SetSize(listWidth, contentHeight)
	a.preview.Width = a.previewWidth()
	a.preview.Height = contentHeight
}

func (a *App) previewWidth() int {
	w := a.width - a.width/3 - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (a *App) refreshPreview() {
	switch a.pane {
	case paneLint:
		a.preview.SetContent(a.renderFindings())
	case paneLog:
		a.preview.SetContent(a.renderJournal())
	default:
		a.preview.SetContent(a.renderSelection())
	}
	a.preview.GotoTop()
}

func (a *App) renderSelection() string {
	item, ok := a.browser.SelectedItem().(docItem)
	if !ok {
		return "No document selected."
	}
	content, err := os.ReadFile(item.entry.Path)
	if err != nil {
		return fmt.Sprintf("Failed to read %s: %v", item.entry.Rel, err)
	}
	return a.renderMarkdown(string(content))
}

// renderMarkdown falls back to the raw text when glamour is unavailable or
// panics on malformed input.
func (a *App) renderMarkdown(content string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = content
		}
	}()
	if a.renderer == nil {
		return content
	}
	rendered, err := a.renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func (a *App) renderFindings() string {
	if a.linting {
		return "Linting the corpus..."
	}
	if len(a.findings) == 0 {
		return "No findings. The corpus is clean."
	}
	var sb strings.Builder
	for _, finding := range a.findings {
		style := warnStyle
		if finding.Severity == lint.SeverityError {
			style = errStyle
		}
		fmt.Fprintf(&sb, "%s %s:%d %s\n  %s\n",
			style.Render(string(finding.Severity)),
			finding.Path, finding.Line, finding.Rule, finding.Message)
	}
	return sb.String()
}

func (a *App) renderJournal() string {
	entries := a.journal.Tail(30)
	if len(entries) == 0 {
		return "Journal is empty."
	}
	var sb strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&sb, "%s %-5s %s\n",
			entry.Time.Format("15:04:05"), entry.Level, entry.Message)
	}
	return sb.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}
	left := a.browser.View()
	right := paneStyle.Width(a.previewWidth()).Render(a.preview.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	status := a.status
	if a.err != nil {
		status = errStyle.Render(a.err.Error())
	}
	footer := footerStyle.Render(status + "  ·  enter preview · l lint · g log · r rescan · q quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

// Run starts the TUI over the given project directory.
func Run(projectDir string) error {
	app, err := NewApp(projectDir)
	if err != nil {
		return err
	}
	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
