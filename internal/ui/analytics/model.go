package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/projecthub/internal/api"
	"github.com/nhle/projecthub/internal/keys"
	"github.com/nhle/projecthub/internal/model"
	"github.com/nhle/projecthub/internal/theme"
)

const maxBarWidth = 30

type analyticsLoadedMsg struct {
	summary *model.Analytics
	charts  *model.ChartData
	err     error
}

// Model is the analytics screen: summary numbers plus text bar charts
// for the status, priority and per-member breakdowns.
type Model struct {
	gw      api.Gateway
	keys    *keys.KeyMap
	summary *model.Analytics
	charts  *model.ChartData
	errMsg  string
	loading bool
	width   int
	height  int
}

// New creates the analytics screen model.
func New(gw api.Gateway, k *keys.KeyMap, width, height int) Model {
	return Model{gw: gw, keys: k, width: width, height: height}
}

// Init fetches both analytics payloads.
func (m Model) Init() tea.Cmd {
	m.loading = true
	return m.load()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case analyticsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Failed to load analytics: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.summary = msg.summary
		m.charts = msg.charts
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) {
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m Model) load() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		ctx := context.Background()
		summary, err := gw.Analytics(ctx)
		if err != nil {
			return analyticsLoadedMsg{err: err}
		}
		charts, err := gw.DetailedAnalytics(ctx)
		if err != nil {
			return analyticsLoadedMsg{err: err}
		}
		return analyticsLoadedMsg{summary: summary, charts: charts}
	}
}

// View renders the analytics screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render("Analytics"))
	b.WriteString("\n\n")

	switch {
	case m.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.errMsg))
	case m.loading && m.summary == nil:
		b.WriteString(theme.EmptyStyle.Render("Loading analytics..."))
	case m.summary == nil:
		b.WriteString(theme.EmptyStyle.Render("No analytics data"))
	default:
		b.WriteString(m.viewSummary())
		if m.charts != nil {
			b.WriteString("\n")
			b.WriteString(m.viewStatusChart())
			b.WriteString("\n")
			b.WriteString(m.viewPriorityChart())
			b.WriteString("\n")
			b.WriteString(m.viewTeamProgress())
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("r refresh"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewSummary() string {
	s := m.summary
	cells := []string{
		statCard("Projects", s.TotalProjects, theme.ColorBlue),
		statCard("Tasks", s.TotalTasks, theme.ColorMagenta),
		statCard("Completed", s.CompletedTasks, theme.ColorGreen),
		statCard("Members", s.TeamMembersCount, theme.ColorOrange),
		statCard("Overdue", s.TasksOverdue, theme.ColorRed),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n"
}

func statCard(label string, value int, color lipgloss.AdaptiveColor) string {
	num := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%d", value))
	return theme.PanelStyle.Padding(0, 2).Render(num + "\n" + theme.HelpStyle.Render(label))
}

func (m Model) viewStatusChart() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Tasks by status"))
	b.WriteString("\n")

	max := 0
	for _, sc := range m.charts.TasksByStatus {
		if sc.Count > max {
			max = sc.Count
		}
	}
	for _, sc := range m.charts.TasksByStatus {
		b.WriteString(barRow(sc.Status, sc.Count, max, theme.StatusStyle(sc.Status)))
	}
	return b.String()
}

func (m Model) viewPriorityChart() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Tasks by priority"))
	b.WriteString("\n")

	max := 0
	for _, pc := range m.charts.TasksByPriority {
		if pc.Count > max {
			max = pc.Count
		}
	}
	for _, pc := range m.charts.TasksByPriority {
		b.WriteString(barRow(pc.Priority, pc.Count, max, theme.PriorityStyle(pc.Priority)))
	}
	return b.String()
}

func (m Model) viewTeamProgress() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Team progress"))
	b.WriteString("\n")

	if len(m.charts.TeamProgress) == 0 {
		b.WriteString(theme.EmptyStyle.Render("  No member activity"))
		b.WriteString("\n")
		return b.String()
	}

	max := 0
	for _, mp := range m.charts.TeamProgress {
		if total := mp.Completed + mp.Pending; total > max {
			max = total
		}
	}
	for _, mp := range m.charts.TeamProgress {
		done := bar(mp.Completed, max)
		pending := bar(mp.Pending, max)
		line := fmt.Sprintf("  %-14s %s%s %d/%d",
			truncate(mp.Member, 14),
			lipgloss.NewStyle().Foreground(theme.ColorGreen).Render(done),
			lipgloss.NewStyle().Foreground(theme.ColorSubtle).Render(pending),
			mp.Completed, mp.Completed+mp.Pending)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// barRow renders one labeled bar scaled against the largest bucket.
func barRow(label string, count, max int, style lipgloss.Style) string {
	return fmt.Sprintf("  %-12s %s %d\n",
		truncate(label, 12), style.Padding(0).Render(bar(count, max)), count)
}

func bar(count, max int) string {
	if max <= 0 || count <= 0 {
		return ""
	}
	n := count * maxBarWidth / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
