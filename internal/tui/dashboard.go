package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vinhnx/vtagent-sub002/internal/orchestrator"
	"github.com/vinhnx/vtagent-sub002/internal/pool"
	"github.com/vinhnx/vtagent-sub002/pkg/models"
)

// Status icons for worker states.
const (
	iconAvailable   = "[○]"
	iconBusy        = "[●]"
	iconUnavailable = "[◌]"
	iconError       = "[✗]"
)

// maxLogLines bounds the rolling activity log.
const maxLogLines = 12

// EngineEventMsg delivers one engine event to the dashboard.
type EngineEventMsg struct {
	Event orchestrator.Event
}

// StatusMsg delivers a fresh status snapshot.
type StatusMsg struct {
	Report *orchestrator.SystemStatusReport
}

// DoneMsg signals the session is over and the dashboard should exit.
type DoneMsg struct{}

// logLine is one rendered activity entry.
type logLine struct {
	at   time.Time
	text string
	err  bool
}

// Dashboard is the bubbletea model for the session view.
type Dashboard struct {
	sessionID string
	spinner   spinner.Model
	report    *orchestrator.SystemStatusReport
	log       []logLine
	width     int
	done      bool

	titleStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	busyStyle    lipgloss.Style
	idleStyle    lipgloss.Style
	offStyle     lipgloss.Style
	errStyle     lipgloss.Style
	logTimeStyle lipgloss.Style
	footerStyle  lipgloss.Style
}

// NewDashboard creates the dashboard model.
func NewDashboard(sessionID string) *Dashboard {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return &Dashboard{
		sessionID: sessionID,
		spinner:   s,
		width:     80,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")),

		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("7")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("240")),

		busyStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")), // Green

		idleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),

		offStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")), // Gray

		errStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")), // Red

		logTimeStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),

		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true),
	}
}

// NewDashboardProgram creates a ready-to-run bubbletea program around
// a dashboard.
func NewDashboardProgram(sessionID string) *tea.Program {
	return tea.NewProgram(NewDashboard(sessionID))
}

// Init implements tea.Model.
func (d *Dashboard) Init() tea.Cmd {
	return d.spinner.Tick
}

// Update implements tea.Model.
func (d *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return d, tea.Quit
		}

	case tea.WindowSizeMsg:
		d.width = msg.Width

	case EngineEventMsg:
		d.appendEvent(msg.Event)
		return d, nil

	case StatusMsg:
		d.report = msg.Report
		return d, nil

	case DoneMsg:
		d.done = true
		return d, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd
	}

	return d, nil
}

// appendEvent folds an engine event into the rolling log.
func (d *Dashboard) appendEvent(ev orchestrator.Event) {
	line := logLine{at: ev.Timestamp, text: formatEvent(ev), err: ev.Type == orchestrator.EventTaskFailed || ev.Type == orchestrator.EventNoCapacity}
	d.log = append(d.log, line)
	if len(d.log) > maxLogLines {
		d.log = d.log[len(d.log)-maxLogLines:]
	}
}

// formatEvent renders one engine event as a log line.
func formatEvent(ev orchestrator.Event) string {
	switch ev.Type {
	case orchestrator.EventTaskQueued:
		return fmt.Sprintf("queued %s (%s) %s", ev.TaskID, ev.Role, ev.TaskTitle)
	case orchestrator.EventTaskStarted:
		return fmt.Sprintf("started %s on %s", ev.TaskID, ev.WorkerID)
	case orchestrator.EventTaskVerifying:
		return fmt.Sprintf("verifying %s", ev.TaskID)
	case orchestrator.EventTaskCompleted:
		return fmt.Sprintf("completed %s in %s", ev.TaskID, ev.Duration.Round(time.Millisecond))
	case orchestrator.EventTaskFailed:
		return fmt.Sprintf("failed %s: %s", ev.TaskID, ev.Message)
	case orchestrator.EventNoCapacity:
		return fmt.Sprintf("rejected %s: no %s capacity", ev.TaskID, ev.Role)
	case orchestrator.EventDrainStarted:
		return "shutting down, draining active tasks"
	case orchestrator.EventTaskAbandoned:
		return fmt.Sprintf("abandoned %s at shutdown", ev.TaskID)
	case orchestrator.EventSessionDone:
		return "session stopped"
	default:
		return string(ev.Type)
	}
}

// View implements tea.Model.
func (d *Dashboard) View() string {
	var b strings.Builder

	title := fmt.Sprintf("%s vtagent session %s", d.spinner.View(), d.sessionID)
	if d.done {
		title = fmt.Sprintf("vtagent session %s (stopped)", d.sessionID)
	}
	b.WriteString(d.titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(d.renderWorkers())
	b.WriteString("\n")
	b.WriteString(d.renderLog())
	b.WriteString("\n")
	b.WriteString(d.renderFooter())

	return b.String()
}

func (d *Dashboard) renderWorkers() string {
	if d.report == nil {
		return d.offStyle.Render("waiting for first status snapshot...") + "\n"
	}

	var b strings.Builder
	b.WriteString(d.headerStyle.Render(fmt.Sprintf("%-4s %-14s %-10s %-10s %6s %8s", "", "WORKER", "ROLE", "STATE", "TASKS", "RATE")))
	b.WriteString("\n")

	for _, role := range []models.Role{models.RoleCoder, models.RoleExplorer} {
		for _, w := range d.report.Workers[role] {
			b.WriteString(d.renderWorkerRow(w))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (d *Dashboard) renderWorkerRow(w pool.Snapshot) string {
	var icon, state string
	var style lipgloss.Style

	switch w.Status.Kind {
	case pool.StatusBusy:
		icon, state, style = iconBusy, w.Status.TaskID, d.busyStyle
	case pool.StatusAvailable:
		icon, state, style = iconAvailable, "idle", d.idleStyle
	case pool.StatusUnavailable:
		icon, state, style = iconUnavailable, "offline", d.offStyle
	default:
		icon, state, style = iconError, "error", d.errStyle
	}

	row := fmt.Sprintf("%-4s %-14s %-10s %-10s %6d %7.0f%%",
		icon, w.ID, w.Role, state, w.Stats.TasksCompleted, w.Stats.SuccessRate*100)
	return style.Render(row)
}

func (d *Dashboard) renderLog() string {
	if len(d.log) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(d.headerStyle.Render("ACTIVITY"))
	b.WriteString("\n")
	for _, line := range d.log {
		b.WriteString(d.logTimeStyle.Render(line.at.Format("15:04:05")))
		b.WriteString(" ")
		if line.err {
			b.WriteString(d.errStyle.Render(line.text))
		} else {
			b.WriteString(d.idleStyle.Render(line.text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (d *Dashboard) renderFooter() string {
	var stats string
	if d.report != nil {
		s := d.report.SessionStats
		stats = fmt.Sprintf("active %d · done %d/%d ok · uptime %s · ",
			d.report.ActiveTasks, s.SuccessfulTasks, s.TotalTasks, d.report.Uptime.Round(time.Second))
	}
	return d.footerStyle.Render(stats + "press q to detach")
}
