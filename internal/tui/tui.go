// Package tui is the terminal presentation shell for the tracker: a status
// line, a progress bar toward the daily limit, an info panel and an alert
// banner. All numbers come from the monitor; this package only draws them.
package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/worktime/internal/monitor"
	"github.com/fakeyudi/worktime/internal/session"
	"github.com/fakeyudi/worktime/internal/worklog"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	overStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("214")).
			Foreground(lipgloss.Color("214")).
			Padding(0, 1)
)

// ── Keys ────────────

type keyMap struct {
	Info    key.Binding
	Dismiss key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Info, k.Dismiss, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Info: key.NewBinding(
		key.WithKeys("i", "enter"),
		key.WithHelp("i", "show work time"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("esc", "d"),
		key.WithHelp("esc", "dismiss alert"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "end session & quit"),
	),
}

// ── Alerts ────────────

// Alert is one notification raised by the monitor.
type Alert struct {
	Title   string
	Message string
}

// Alerts collects notifications for the model to display. It implements
// monitor.Notifier and is only touched from the Bubble Tea update loop.
type Alerts struct {
	pending []Alert
}

// NewAlerts returns an empty queue.
func NewAlerts() *Alerts { return &Alerts{} }

// Notify queues an alert.
func (a *Alerts) Notify(title, message string) {
	a.pending = append(a.pending, Alert{Title: title, Message: message})
}

func (a *Alerts) drain() []Alert {
	out := a.pending
	a.pending = nil
	return out
}

// ── Model ────────────

type tickMsg time.Time

// Model is the root Bubble Tea model.
type Model struct {
	mon      *monitor.Monitor
	alerts   *Alerts
	interval time.Duration

	status   monitor.Status
	alert    *Alert
	showInfo bool
	quitting bool

	progress progress.Model
	help     help.Model
	width    int
}

// New creates the model. alerts must be the Notifier the monitor was built
// with so limit alerts reach the screen.
func New(mon *monitor.Monitor, alerts *Alerts, interval time.Duration) Model {
	if interval <= 0 {
		interval = monitor.DefaultInterval
	}
	if alerts == nil {
		alerts = NewAlerts()
	}
	p := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	p.Width = 40
	return Model{
		mon:      mon,
		alerts:   alerts,
		interval: interval,
		status:   mon.Status(),
		progress: p,
		help:     help.New(),
	}
}

// Run starts the program on the current terminal. It returns once the user
// quits or the process is asked to stop; the caller still owns teardown.
func Run(mon *monitor.Monitor, alerts *Alerts, interval time.Duration, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(New(mon, alerts, interval), opts...).Run()
	return err
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	// First tick fires immediately.
	return func() tea.Msg { return tickMsg(time.Now()) }
}

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		m.status = m.mon.Tick()
		if raised := m.alerts.drain(); len(raised) > 0 {
			a := raised[len(raised)-1]
			m.alert = &a
		}
		return m, m.scheduleTick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 4
		if w > 60 {
			w = 60
		}
		if w < 10 {
			w = 10
		}
		m.progress.Width = w
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.mon.RequestQuit()
			return m, tea.Quit
		case key.Matches(msg, keys.Info):
			m.showInfo = !m.showInfo
			m.status = m.mon.Status()
		case key.Matches(msg, keys.Dismiss):
			m.alert = nil
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return "Session ended. " + dimStyle.Render("Logged to "+m.mon.Session().Log().Path()) + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Work Time Tracker"))
	b.WriteString("\n\n")

	elapsed := worklog.FormatDuration(m.status.Elapsed)
	elapsedStyled := timeStyle.Render(elapsed)
	if m.status.Elapsed >= session.WorkTimeLimit {
		elapsedStyled = overStyle.Render(elapsed)
	}
	b.WriteString(labelStyle.Render("Work Time: "))
	b.WriteString(elapsedStyled + dimStyle.Render(" / "+monitor.TargetText))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Estimated Leaving Time: "))
	b.WriteString(timeStyle.Render(worklog.FormatClock(m.status.Leaving)))
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(fraction(m.status.Elapsed)))
	b.WriteString("\n")

	if m.alert != nil {
		b.WriteString("\n")
		b.WriteString(alertStyle.Render(m.alert.Title + "\n\n" + m.alert.Message))
		b.WriteString("\n")
	}

	if m.showInfo {
		b.WriteString("\n")
		b.WriteString(panelStyle.Render(m.mon.Info().String()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(keys))
	b.WriteString("\n")
	return b.String()
}

// fraction is the share of the work limit already used, capped at 1.
func fraction(elapsed time.Duration) float64 {
	f := float64(elapsed) / float64(session.WorkTimeLimit)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
