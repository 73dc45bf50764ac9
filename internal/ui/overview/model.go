package overview

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/projecthub/internal/api"
	"github.com/nhle/projecthub/internal/keys"
	"github.com/nhle/projecthub/internal/model"
	"github.com/nhle/projecthub/internal/theme"
)

const recentLimit = 5

type summaryLoadedMsg struct {
	summary *model.Analytics
	err     error
}

// Model is the overview screen: a greeting, the headline numbers and
// the most recent projects and tasks.
type Model struct {
	gw       api.Gateway
	keys     *keys.KeyMap
	userName string
	summary  *model.Analytics
	projects []model.Project
	tasks    []model.Task
	width    int
	height   int
}

// New creates the overview screen model.
func New(gw api.Gateway, k *keys.KeyMap, width, height int) Model {
	return Model{gw: gw, keys: k, width: width, height: height}
}

// Init fetches the summary numbers.
func (m Model) Init() tea.Cmd {
	return m.loadSummary()
}

// SetUser sets the name shown in the greeting.
func (m *Model) SetUser(name string) {
	m.userName = name
}

// SetProjects replaces the project collection (cache seed or refresh).
func (m *Model) SetProjects(projects []model.Project) {
	m.projects = projects
}

// SetTasks replaces the task collection (cache seed or refresh).
func (m *Model) SetTasks(tasks []model.Task) {
	m.tasks = tasks
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case summaryLoadedMsg:
		if msg.err == nil {
			m.summary = msg.summary
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.loadSummary()
		}
	}
	return m, nil
}

func (m Model) loadSummary() tea.Cmd {
	gw := m.gw
	return func() tea.Msg {
		summary, err := gw.Analytics(context.Background())
		return summaryLoadedMsg{summary: summary, err: err}
	}
}

// View renders the overview screen.
func (m Model) View() string {
	var b strings.Builder

	greeting := "Welcome back"
	if m.userName != "" {
		greeting = fmt.Sprintf("Welcome back, %s", m.userName)
	}
	b.WriteString(theme.TitleStyle.Render(greeting))
	b.WriteString("\n\n")

	if m.summary != nil {
		b.WriteString(m.viewSummary())
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Recent projects"))
	b.WriteString("\n")
	if len(m.projects) == 0 {
		b.WriteString(theme.EmptyStyle.Render("  No projects yet"))
		b.WriteString("\n")
	} else {
		for _, p := range recentProjects(m.projects) {
			b.WriteString(theme.ListItemStyle.Render(
				p.Name + "  " + theme.HelpStyle.Render(p.Description)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Upcoming tasks"))
	b.WriteString("\n")
	upcoming := upcomingTasks(m.tasks)
	if len(upcoming) == 0 {
		b.WriteString(theme.EmptyStyle.Render("  Nothing due soon"))
		b.WriteString("\n")
	} else {
		for _, t := range upcoming {
			line := t.Title + "  " + theme.StatusStyle(t.Status).Render(t.Status)
			if t.DueDate != nil {
				line += "  " + theme.HelpStyle.Render("due "+t.DueDate.Format("Jan 2"))
			}
			b.WriteString(theme.ListItemStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("2 projects | 3 tasks | 4 team | 5 analytics | r refresh"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewSummary() string {
	s := m.summary
	cells := []string{
		statCard("Projects", s.TotalProjects, theme.ColorBlue),
		statCard("Tasks", s.TotalTasks, theme.ColorMagenta),
		statCard("Completed", s.CompletedTasks, theme.ColorGreen),
		statCard("Overdue", s.TasksOverdue, theme.ColorRed),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...) + "\n"
}

func statCard(label string, value int, color lipgloss.AdaptiveColor) string {
	num := lipgloss.NewStyle().Bold(true).Foreground(color).Render(fmt.Sprintf("%d", value))
	return theme.PanelStyle.Padding(0, 2).Render(num + "\n" + theme.HelpStyle.Render(label))
}

// recentProjects returns the newest few projects.
func recentProjects(projects []model.Project) []model.Project {
	if len(projects) <= recentLimit {
		return projects
	}
	return projects[:recentLimit]
}

// upcomingTasks returns incomplete tasks with the nearest due dates.
func upcomingTasks(tasks []model.Task) []model.Task {
	var due []model.Task
	for _, t := range tasks {
		if t.Status == model.StatusCompleted || t.DueDate == nil {
			continue
		}
		due = append(due, t)
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].DueDate.Before(*due[j].DueDate)
	})
	if len(due) > recentLimit {
		due = due[:recentLimit]
	}
	return due
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
