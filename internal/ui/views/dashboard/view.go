package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	dashboarddto "medibill/internal/modules/dashboard/dto"
	"medibill/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Summary(ctx context.Context) (dashboarddto.SummaryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SummaryLoadedMsg struct {
	Summary dashboarddto.SummaryOutput
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	spinner  spinner.Model
	summary  dashboarddto.SummaryOutput
	username string
	err      error
	loading  bool
	width    int
}

func New(port Port) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{port: port, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

// Reload re-reads the summary, typically after an analysis finished.
func (m *Model) Reload() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadCmd(), m.spinner.Tick)
}

func (m *Model) SetUser(username string) { m.username = username }

func (m *Model) SetWidth(w int) { m.width = w }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SummaryLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil {
			m.summary = msg.Summary
		}
	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	greeting := "Dashboard"
	if m.username != "" {
		greeting = "Welcome back, " + m.username
	}
	sb.WriteString(theme.Title.Render(greeting) + "\n\n")

	switch {
	case m.loading:
		sb.WriteString(m.spinner.View() + " Loading summary…")
	case m.err != nil:
		sb.WriteString(theme.Bad.Render("Error: " + m.err.Error()))
	default:
		sb.WriteString(m.renderStats())
	}
	return sb.String()
}

func (m Model) renderStats() string {
	s := m.summary
	if s.TotalAnalyzed == 0 {
		return theme.Muted.Render("No bills analyzed yet. Press : and run analyze <file>.")
	}
	cards := []string{
		card("Bills analyzed", fmt.Sprintf("%d", s.TotalAnalyzed), theme.Title),
		card("High compliance", fmt.Sprintf("%d (%.0f%%)", s.HighCompliance, s.HighComplianceRate*100), theme.Good),
		card("Flagged issues", fmt.Sprintf("%d", s.FlaggedIssues), theme.Hot),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func card(label, value string, valueStyle lipgloss.Style) string {
	return theme.Pane.Render(theme.Muted.Render(label) + "\n" + valueStyle.Render(value))
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.port.Summary(context.Background())
		return SummaryLoadedMsg{Summary: summary, Err: err}
	}
}
