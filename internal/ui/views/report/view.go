package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	analysisdto "medibill/internal/modules/analysis/dto"
	apperrors "medibill/internal/platform/errors"
	"medibill/internal/ui/render"
	"medibill/internal/ui/theme"
)

// highMark matches the dashboard's high-compliance threshold.
const highMark = 0.8

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	LastReport(ctx context.Context) (analysisdto.ReportOutput, error)
	Analyze(ctx context.Context, path string, forceOCR bool) (analysisdto.AnalyzeOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Report analysisdto.ReportOutput
	Err    error
}

// AnalyzedMsg is emitted when an upload finished, successfully or not.
type AnalyzedMsg struct {
	Output analysisdto.AnalyzeOutput
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	viewport viewport.Model
	spinner  spinner.Model
	renderer render.Renderer
	report   analysisdto.ReportOutput
	loaded   bool
	busy     string
	err      error
	width    int
	height   int
}

func New(port Port) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{
		port:     port,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		renderer: render.New("dark", 0),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

// Analyze uploads path and shows a spinner until AnalyzedMsg arrives.
func (m *Model) Analyze(path string, forceOCR bool) tea.Cmd {
	m.busy = "Analyzing " + path + "…"
	return tea.Batch(m.analyzeCmd(path, forceOCR), m.spinner.Tick)
}

func (m Model) Busy() bool { return m.busy != "" }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshContent()

	case LoadedMsg:
		m.err = nil
		if msg.Err != nil && !errors.Is(msg.Err, apperrors.ErrNoReport) {
			m.err = msg.Err
		}
		if msg.Err == nil {
			m.report = msg.Report
			m.loaded = true
		}
		m.refreshContent()

	case AnalyzedMsg:
		m.busy = ""
		m.err = msg.Err
		if msg.Err == nil {
			m.report = msg.Output.Report
			m.loaded = true
			m.viewport.GotoTop()
		}
		m.refreshContent()

	case spinner.TickMsg:
		if m.Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := m.renderHeader()
	bodyH := m.height - lipgloss.Height(header)
	if bodyH < 1 {
		bodyH = 1
	}
	if m.Busy() {
		return lipgloss.JoinVertical(lipgloss.Left, header,
			lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.spinner.View()+" "+m.busy))
	}
	vp := m.viewport
	vp.Height = bodyH
	return lipgloss.JoinVertical(lipgloss.Left, header, vp.View())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = m.height - 2
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.renderer = render.New("dark", m.width)
}

func (m *Model) refreshContent() {
	switch {
	case m.err != nil:
		m.viewport.SetContent(theme.Bad.Render("Error: " + m.err.Error()))
	case !m.loaded:
		m.viewport.SetContent(theme.Muted.Render("No report yet. Press : and run analyze <file>."))
	default:
		m.viewport.SetContent(m.renderer.Render(m.report.Markdown))
	}
}

func (m Model) renderHeader() string {
	if !m.loaded {
		return theme.Title.Render("Report") + "\n"
	}
	r := m.report
	parts := []string{
		theme.Title.Render(r.FileName),
		theme.Score(r.ComplianceScore, highMark).Render(fmt.Sprintf("%.0f%%", r.ComplianceScore*100)),
	}
	counts := map[string]int{}
	for _, f := range r.Flags {
		counts[f.Severity]++
	}
	for _, sev := range []string{"error", "warning", "info"} {
		if counts[sev] > 0 {
			parts = append(parts, theme.Severity(sev).Render(fmt.Sprintf("%d %s", counts[sev], sev)))
		}
	}
	return strings.Join(parts, "  ") + theme.Muted.Render("  ↑/↓: scroll") + "\n"
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		r, err := m.port.LastReport(context.Background())
		return LoadedMsg{Report: r, Err: err}
	}
}

func (m Model) analyzeCmd(path string, forceOCR bool) tea.Cmd {
	return func() tea.Msg {
		out, err := m.port.Analyze(context.Background(), path, forceOCR)
		return AnalyzedMsg{Output: out, Err: err}
	}
}
