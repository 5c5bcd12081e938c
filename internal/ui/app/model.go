package app

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analysisdto "medibill/internal/modules/analysis/dto"
	sessiondto "medibill/internal/modules/session/dto"
	apperrors "medibill/internal/platform/errors"
	"medibill/internal/ui/components"
	"medibill/internal/ui/theme"
	dashboardview "medibill/internal/ui/views/dashboard"
	reportview "medibill/internal/ui/views/report"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type guardPort interface {
	Require(ctx context.Context) (sessiondto.UserOutput, error)
	Check(ctx context.Context) (sessiondto.UserOutput, error)
}

type sessionPort interface {
	Logout(ctx context.Context) error
}

type analysisPort interface {
	reportview.Port
	ExportLast(ctx context.Context, dir string) (analysisdto.ExportOutput, error)
}

// ─── phases and tabs ─────────────────────────────────────────────────────────

type phase int

const (
	// phaseResolving lasts until the stored session was checked; nothing
	// protected is rendered meanwhile.
	phaseResolving phase = iota
	phaseAnonymous
	phaseReady
)

type tabID int

const (
	tabDashboard tabID = iota
	tabReport
	tabCount
)

var tabLabels = [tabCount]string{"Dashboard", "Report"}

// hints must stay in sync with executePalette.
var paletteHints = []string{
	"analyze <file>",
	"analyze-ocr <file>",
	"export <dir>",
	"refresh",
	"logout",
}

// ─── async messages ──────────────────────────────────────────────────────────

type sessionResolvedMsg struct {
	user sessiondto.UserOutput
	err  error
}

type loggedOutMsg struct{ err error }

type exportedMsg struct {
	out analysisdto.ExportOutput
	err error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Refresh key.Binding
	Logout  key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Logout:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logout")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Palette, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Palette, k.Refresh},
		{k.Logout, k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It gates every view on the session:
// a spinner while the stored session is checked, a login hint when nobody is
// logged in, and the dashboard and report tabs otherwise.
type Model struct {
	guard    guardPort
	session  sessionPort
	analysis analysisPort

	dashView dashboardview.Model
	repView  reportview.Model

	phase     phase
	user      sessiondto.UserOutput
	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	spinner   spinner.Model
	status    string
	width     int
	height    int
}

func NewModel(guard guardPort, session sessionPort, analysis analysisPort, dashboard dashboardview.Port) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{
		guard:    guard,
		session:  session,
		analysis: analysis,
		dashView: dashboardview.New(dashboard),
		repView:  reportview.New(analysis),
		phase:    phaseResolving,
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(paletteHints),
		spinner:  sp,
		status:   "checking session",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.resolveCmd(), m.spinner.Tick)
}

// ─── update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var paletteCmd tea.Cmd
	if m.palette.Visible() {
		m.palette, paletteCmd = m.palette.Update(msg)
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, paletteCmd
		}
	}
	next, cmd := m.update(msg)
	return next, tea.Batch(paletteCmd, cmd)
}

func (m Model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.dashView.SetWidth(m.width)
		var cmd tea.Cmd
		m.repView, cmd = m.repView.Update(tea.WindowSizeMsg{Width: m.width, Height: m.contentHeight()})
		return m, cmd

	case spinner.TickMsg:
		var cmds []tea.Cmd
		if m.phase == phaseResolving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		var dCmd, rCmd tea.Cmd
		m.dashView, dCmd = m.dashView.Update(msg)
		m.repView, rCmd = m.repView.Update(msg)
		return m, tea.Batch(append(cmds, dCmd, rCmd)...)

	case sessionResolvedMsg:
		return m.applySession(msg.user, msg.err)

	case loggedOutMsg:
		if msg.err != nil {
			m.status = "logout: " + msg.err.Error()
		} else {
			m.status = "logged out"
		}
		m.phase = phaseAnonymous
		m.user = sessiondto.UserOutput{}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "exported to " + msg.out.Path
		}
		return m, nil

	case dashboardview.SummaryLoadedMsg:
		var cmd tea.Cmd
		m.dashView, cmd = m.dashView.Update(msg)
		return m, cmd

	case reportview.LoadedMsg:
		var cmd tea.Cmd
		m.repView, cmd = m.repView.Update(msg)
		return m, cmd

	case reportview.AnalyzedMsg:
		var cmd tea.Cmd
		m.repView, cmd = m.repView.Update(msg)
		if msg.Err != nil {
			m.status = "analysis failed: " + msg.Err.Error()
			// A rejected token invalidates the session; re-check before
			// rendering anything else protected.
			return m, tea.Batch(cmd, m.checkCmd())
		}
		m.status = "analysis complete"
		reload := m.dashView.Reload()
		return m, tea.Batch(cmd, reload)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.phase == phaseReady && m.activeTab == tabReport {
		var cmd tea.Cmd
		m.repView, cmd = m.repView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.phase != phaseReady {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Tab):
		m.activeTab = (m.activeTab + 1) % tabCount
		return m, nil
	case key.Matches(msg, m.keys.Palette):
		cmd := m.palette.Open()
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.refreshCmd()
		return m, cmd
	case key.Matches(msg, m.keys.Logout):
		return m, m.logoutCmd()
	}

	if m.activeTab == tabReport {
		var cmd tea.Cmd
		m.repView, cmd = m.repView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applySession(user sessiondto.UserOutput, err error) (tea.Model, tea.Cmd) {
	switch {
	case err == nil:
		wasReady := m.phase == phaseReady
		m.phase = phaseReady
		m.user = user
		m.dashView.SetUser(user.Username)
		if wasReady {
			return m, nil
		}
		m.status = "logged in as " + user.Username
		return m, tea.Batch(m.dashView.Init(), m.repView.Init())
	case errors.Is(err, apperrors.ErrSessionUnresolved):
		return m, nil
	default:
		m.phase = phaseAnonymous
		m.user = sessiondto.UserOutput{}
		if !errors.Is(err, apperrors.ErrNotAuthenticated) {
			m.status = err.Error()
		}
		return m, nil
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.contentHeight()

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.phase == phaseResolving:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Checking session…")
	case m.phase == phaseAnonymous:
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center,
			theme.Title.Render("Not logged in")+"\n\n"+
				theme.Muted.Render("Run `medibill login` (or `medibill register`) and start the TUI again."))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	case m.activeTab == tabReport:
		content = m.repView.View()
	default:
		content = m.dashView.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) contentHeight() int {
	h := m.height - 4
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) renderHeader() string {
	bar := "medibill"
	if m.phase == phaseReady {
		parts := make([]string, tabCount)
		for i := tabID(0); i < tabCount; i++ {
			if i == m.activeTab {
				parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
			} else {
				parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
			}
		}
		bar += "  " + strings.Join(parts, theme.Muted.Render(" │ "))
	}
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.phase == phaseReady {
		left = theme.Good.Render("● "+m.user.Username) + "  " + left
	}
	right := theme.Muted.Render("?:help  q:quit")
	if m.phase == phaseReady {
		right = theme.Muted.Render("?:help  tab:switch  ::command  r:refresh  l:logout  q:quit")
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(left+strings.Repeat(" ", gap)+right)
}

// ─── palette execution ───────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "analyze", "analyze-ocr":
		if arg == "" {
			m.status = "usage: " + parts[0] + " <file>"
			return m, nil
		}
		if m.repView.Busy() {
			m.status = "an analysis is already running"
			return m, nil
		}
		m.activeTab = tabReport
		m.status = ""
		cmd := m.repView.Analyze(arg, parts[0] == "analyze-ocr")
		return m, cmd
	case "export":
		if arg == "" {
			m.status = "usage: export <dir>"
			return m, nil
		}
		return m, m.exportCmd(arg)
	case "refresh":
		cmd := m.refreshCmd()
		return m, cmd
	case "logout":
		return m, m.logoutCmd()
	default:
		m.status = "unknown command: " + parts[0]
		return m, nil
	}
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) resolveCmd() tea.Cmd {
	return func() tea.Msg {
		user, err := m.guard.Require(context.Background())
		return sessionResolvedMsg{user: user, err: err}
	}
}

func (m Model) checkCmd() tea.Cmd {
	return func() tea.Msg {
		user, err := m.guard.Check(context.Background())
		return sessionResolvedMsg{user: user, err: err}
	}
}

func (m *Model) refreshCmd() tea.Cmd {
	return tea.Batch(m.dashView.Reload(), m.repView.Init(), m.checkCmd())
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return loggedOutMsg{err: m.session.Logout(context.Background())}
	}
}

func (m Model) exportCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.analysis.ExportLast(context.Background(), dir)
		return exportedMsg{out: out, err: err}
	}
}
