// Package tui provides a Bubble Tea terminal user interface for shelfsync.
//
// The interface reconciles two catalogs, shows what is missing and, once
// confirmed, downloads the missing items with a live progress view.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/shelfsync/internal/download"
	"github.com/handiism/shelfsync/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	bookStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const (
	maxLogs         = 10
	maxPreviewItems = 8
	eventBuffer     = 64
)

// errCancelled is shown when the user aborts a running step.
var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateReconciling State = iota
	StateConfirm
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Batch is the download side of the UI. *download.Orchestrator implements it.
type Batch interface {
	Progress() download.Snapshot
	DownloadAll(ctx context.Context, items []model.CatalogItem) ([]model.DownloadOutcome, model.DownloadSummary, error)
}

// Config wires the UI to the catalogs and the downloader.
type Config struct {
	SourceName  string
	TargetName  string
	Destination string

	// Reverse downloads the items missing from the source instead.
	Reverse bool
	Verbose bool

	// Reconcile fetches and matches both catalogs.
	Reconcile func(ctx context.Context) (*model.ReconciliationResult, error)

	// NewBatch builds the downloader. onProgress must receive every
	// progress event of the batch.
	NewBatch func(onProgress func(download.ProgressEvent)) Batch
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	cfg      Config
	state    State
	spinner  spinner.Model
	progress progress.Model
	logs     []LogEntry
	err      error

	result *model.ReconciliationResult
	items  []model.CatalogItem

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	batch    Batch
	events   chan download.ProgressEvent
	snapshot download.Snapshot
	summary  model.DownloadSummary
	failures []model.DownloadOutcome

	verbose bool
	width   int
}

// NewModel creates a new TUI model.
func NewModel(cfg Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		cfg:      cfg,
		state:    StateReconciling,
		spinner:  sp,
		progress: prog,
		logs:     make([]LogEntry, 0),
		ctx:      ctx,
		cancel:   cancel,
		events:   make(chan download.ProgressEvent, eventBuffer),
		verbose:  cfg.Verbose,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reconcile())
}

// Message types
type (
	// ReconcileDoneMsg is sent when both catalogs have been matched.
	ReconcileDoneMsg struct {
		Result *model.ReconciliationResult
		Err    error
	}

	// ProgressMsg is sent when download progress updates.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// DownloadDoneMsg is sent when the batch completes.
	DownloadDoneMsg struct {
		Outcomes []model.DownloadOutcome
		Summary  model.DownloadSummary
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			switch m.state {
			case StateConfirm:
				return m, tea.Quit
			case StateReconciling, StateDownloading:
				m.cancel()
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateConfirm && len(m.items) > 0 {
				return m.startDownload()
			}

		case "v":
			m.verbose = !m.verbose

		case "q":
			if m.state == StateConfirm || m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ReconcileDoneMsg:
		if m.state != StateReconciling {
			return m, nil
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			return m, nil
		}
		m.result = msg.Result
		m.items = m.missing()
		m.state = StateConfirm

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			return m, tea.Batch(cmds...)
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case DownloadDoneMsg:
		if m.batch != nil {
			m.snapshot = m.batch.Progress()
		}
		m.summary = msg.Summary
		m.failures = m.failures[:0]
		for _, o := range msg.Outcomes {
			if !o.Success {
				m.failures = append(m.failures, o)
			}
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCancelled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from the batch
		if m.batch != nil && m.state == StateDownloading {
			m.snapshot = m.batch.Progress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// missing returns the items the confirmed batch would download.
func (m Model) missing() []model.CatalogItem {
	if m.result == nil {
		return nil
	}
	if m.cfg.Reverse {
		return m.result.MissingInSource
	}
	return m.result.MissingInTarget
}

func (m Model) startDownload() (tea.Model, tea.Cmd) {
	events := m.events
	m.batch = m.cfg.NewBatch(func(ev download.ProgressEvent) {
		select {
		case events <- ev:
		default:
			// UI is behind; the snapshot still carries the counts.
		}
	})
	m.state = StateDownloading
	m.snapshot = download.Snapshot{Total: len(m.items), Remaining: len(m.items)}

	batch, items, ctx := m.batch, m.items, m.ctx
	run := func() tea.Msg {
		outcomes, summary, err := batch.DownloadAll(ctx, items)
		close(events)
		return DownloadDoneMsg{Outcomes: outcomes, Summary: summary, Err: err}
	}
	return m, tea.Batch(run, m.waitForEvent(), m.tickProgress())
}

// reconcile runs the catalog comparison in the background.
func (m Model) reconcile() tea.Cmd {
	fn, ctx := m.cfg.Reconcile, m.ctx
	return func() tea.Msg {
		if fn == nil {
			return ReconcileDoneMsg{Err: errors.New("no catalogs configured")}
		}
		result, err := fn(ctx)
		return ReconcileDoneMsg{Result: result, Err: err}
	}
}

// waitForEvent delivers the next progress event, or nothing once the batch
// has closed the channel.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: ev}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) percent() float64 {
	if m.snapshot.Total == 0 {
		return 0
	}
	return float64(m.snapshot.Completed) / float64(m.snapshot.Total)
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("📚 shelfsync"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.direction()))
	b.WriteString("\n\n")

	switch m.state {
	case StateReconciling:
		b.WriteString(m.viewReconciling())
	case StateConfirm:
		b.WriteString(m.viewConfirm())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) direction() string {
	from, to := m.cfg.SourceName, m.cfg.TargetName
	if m.cfg.Reverse {
		from, to = to, from
	}
	return fmt.Sprintf("Copy books from %s missing on %s", from, to)
}

func (m Model) viewReconciling() string {
	return m.spinner.View() + " " + subtitleStyle.Render("Comparing catalogs...") + "\n"
}

func (m Model) viewConfirm() string {
	var b strings.Builder
	r := m.result

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"%s: %d items | %s: %d items | Matched: %d/%d",
		m.cfg.SourceName, r.SourceTotal,
		m.cfg.TargetName, r.TargetTotal,
		r.MatchedSource(), r.MatchedTarget(),
	)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(successStyle.Render("✓ Nothing to download, catalogs are in sync."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(warningStyle.Render(fmt.Sprintf("Missing %d book(s):", len(m.items))))
	b.WriteString("\n")
	for i, item := range m.items {
		if i == maxPreviewItems {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  … and %d more", len(m.items)-maxPreviewItems)))
			b.WriteString("\n")
			break
		}
		b.WriteString(bookStyle.Render(fmt.Sprintf("  ♪ %s - %s", item.RawAuthor, item.RawTitle)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.cfg.Destination)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")

	s := m.snapshot
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Books: %d/%d | In flight: %d | Failed: %d | Downloaded: %s",
		s.Completed, s.Total, s.InFlight, s.Failed, download.FormatBytes(s.BytesReceived),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Sync Complete!\n\n"+
			"Downloaded: %d\n"+
			"Failed: %d\n"+
			"Size: %s",
		m.summary.Success,
		m.summary.Failed,
		download.FormatBytes(m.snapshot.BytesReceived),
	))
	b.WriteString(box)
	b.WriteString("\n")

	for _, o := range m.failures {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", o.Title, o.Err)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n", m.err.Error())
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateConfirm:
		if len(m.items) == 0 {
			return "q: quit"
		}
		return "enter: download • v: verbose • q/esc: quit"
	case StateReconciling, StateDownloading:
		return "v: verbose • esc: cancel"
	case StateComplete, StateError:
		return "q: quit"
	}
	return ""
}

// Err returns the error that ended the session, if any.
func (m Model) Err() error {
	return m.err
}

// Run starts the TUI application.
func Run(cfg Config) error {
	p := tea.NewProgram(NewModel(cfg), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil && !errors.Is(fm.err, errCancelled) {
		return fm.err
	}
	return nil
}
