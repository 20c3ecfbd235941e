// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-19

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/similigh/fb2gh/internal/migrate"
)

// Brand color
var (
	primaryColor = lipgloss.Color("#ff7300")
	subtleColor  = lipgloss.Color("#626262")
	successColor = lipgloss.Color("#04B575")
	errorColor   = lipgloss.Color("#FF0000")

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	activeStepStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	doneStepStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStepStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	logStyle = lipgloss.NewStyle().
			Foreground(subtleColor)
)

const maxLogLines = 5

// EventMsg carries one migration event.
type EventMsg struct {
	Event migrate.Event
}

// DoneMsg is sent once the event channel is closed.
type DoneMsg struct{}

// Model for the TUI.
type Model struct {
	spinner  spinner.Model
	progress progress.Model
	title    string
	total    int
	done     int
	migrated int
	skipped  int
	failed   int
	current  string
	logs     []string
	stopping bool
	quitting bool
	report   *migrate.Report
	err      error
	events   <-chan migrate.Event
	cancel   func()
}

// NewModel creates a progress view for a run over total cases. cancel is
// called when the user asks to stop; the view keeps running until the
// event channel is closed.
func NewModel(title string, total int, events <-chan migrate.Event, cancel func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)

	p := progress.New(progress.WithSolidFill(string(primaryColor)), progress.WithWidth(40))

	if cancel == nil {
		cancel = func() {}
	}
	return Model{
		spinner:  s,
		progress: p,
		title:    title,
		total:    total,
		events:   events,
		cancel:   cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForActivity(),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			if !m.stopping {
				m.stopping = true
				m.cancel()
				m.addLog("stopping after the current case")
			}
			return m, nil
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.apply(msg.Event)
		return m, m.waitForActivity()

	case DoneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// apply folds one event into the view state.
func (m *Model) apply(ev migrate.Event) {
	switch ev.Kind {
	case migrate.EventRunStarted:
		m.addLog("run " + ev.RunID + " started")
	case migrate.EventCaseMigrated:
		m.done++
		m.migrated++
		m.current = caseLabel(ev)
		m.addLog(fmt.Sprintf("case %d -> #%d", ev.Record.CaseID, ev.Record.IssueNumber))
	case migrate.EventCaseSkipped:
		m.done++
		m.skipped++
		m.current = caseLabel(ev)
	case migrate.EventCaseFailed:
		m.done++
		m.failed++
		m.current = caseLabel(ev)
		m.addLog(fmt.Sprintf("case %d failed: %v", ev.Record.CaseID, ev.Err))
	case migrate.EventRunInterrupted:
		m.addLog("interrupted")
	case migrate.EventRunFinished:
		m.report = ev.Report
		m.err = ev.Err
	}
}

func caseLabel(ev migrate.Event) string {
	return fmt.Sprintf("%d %s", ev.Record.CaseID, ev.Record.Title)
}

func (m *Model) addLog(line string) {
	m.logs = append(m.logs, fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), line))
}

func (m Model) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return DoneMsg{}
		}
		return EventMsg{Event: ev}
	}
}

// Report returns the final report, once the run has finished.
func (m Model) Report() *migrate.Report {
	return m.report
}

// Err returns the run error, if the run aborted.
func (m Model) Err() error {
	return m.err
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render(m.title))
	s.WriteString("\n\n")

	percent := 0.0
	if m.total > 0 {
		percent = float64(m.done) / float64(m.total)
	}
	s.WriteString(m.progress.ViewAs(percent))
	s.WriteString(fmt.Sprintf("  %d/%d\n\n", m.done, m.total))

	s.WriteString(doneStepStyle.Render(fmt.Sprintf("✓ migrated %d", m.migrated)) + "  ")
	s.WriteString(stepStyle.Faint(true).Render(fmt.Sprintf("○ skipped %d", m.skipped)) + "  ")
	s.WriteString(errorStepStyle.Render(fmt.Sprintf("✗ failed %d", m.failed)) + "\n\n")

	if m.current != "" {
		s.WriteString(m.spinner.View() + " " + activeStepStyle.Render(m.current) + "\n")
	}

	s.WriteString("\nLogs:\n")
	start := 0
	if len(m.logs) > maxLogLines {
		start = len(m.logs) - maxLogLines
	}
	for _, log := range m.logs[start:] {
		s.WriteString(logStyle.Render(log) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + errorStepStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	if m.stopping {
		s.WriteString(logStyle.Render("\nStopping...\n"))
	} else {
		s.WriteString(logStyle.Render("\nPress q to stop\n"))
	}

	return s.String()
}
