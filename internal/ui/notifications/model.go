package notifications

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/projecthub/internal/keys"
	"github.com/nhle/projecthub/internal/model"
	"github.com/nhle/projecthub/internal/notify"
	"github.com/nhle/projecthub/internal/theme"
)

// CloseMsg signals the parent to close the notification panel.
type CloseMsg struct{}

// Model is the notification panel: the sole consumer of the feed.
// Opening it never marks anything read; acknowledgement is always an
// explicit per-item or mark-all action.
type Model struct {
	feed        *notify.Feed
	keys        *keys.KeyMap
	selectedIdx int
	width       int
	height      int
}

// New creates the notification panel model.
func New(feed *notify.Feed, k *keys.KeyMap, width, height int) Model {
	return Model{
		feed:   feed,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case notify.ChangedMsg:
		m.clampSelection()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	events := m.feed.Events()

	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Notifications):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(events) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(events)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(events) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(events) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkRead):
		if m.selectedIdx < len(events) {
			m.feed.MarkRead(events[m.selectedIdx].ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if m.selectedIdx < len(events) {
			m.feed.Remove(events[m.selectedIdx].ID)
			m.clampSelection()
		}
		return m, nil

	case key.Matches(msg, m.keys.MarkAllRead):
		m.feed.MarkAllRead()
		return m, nil

	case key.Matches(msg, m.keys.ClearAll):
		m.feed.ClearAll()
		m.selectedIdx = 0
		return m, nil
	}

	return m, nil
}

// clampSelection keeps the cursor inside the feed after removals.
func (m *Model) clampSelection() {
	n := m.feed.Len()
	if m.selectedIdx >= n && m.selectedIdx > 0 {
		m.selectedIdx = n - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

// View renders the panel.
func (m Model) View() string {
	events := m.feed.Events()
	now := time.Now()

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("Notifications"))
	b.WriteString("\n\n")

	if len(events) == 0 {
		b.WriteString(theme.EmptyStyle.Render("No notifications yet"))
		b.WriteString("\n")
		b.WriteString(theme.EmptyStyle.Render("Create, update and delete actions will appear here"))
	} else {
		for i, e := range events {
			kindStyle := theme.KindStyle(e.Kind)

			title := e.Title
			if !e.IsRead {
				title = "● " + title
			}

			line := notify.Icon(e.Kind) + " " + title
			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(line))
			} else if e.IsRead {
				b.WriteString(theme.ListItemStyle.Foreground(theme.ColorGray).Render(line))
			} else {
				b.WriteString(theme.ListItemStyle.Render(line))
			}
			b.WriteString("\n")

			detail := "    " + e.Message
			b.WriteString(theme.HelpStyle.Render(detail))
			b.WriteString("\n")

			meta := "    " +
				kindStyle.Render(notify.BadgeLabel(e.Operation, e.EntityType)) +
				"  " + notify.FormatAge(e.CreatedAt, now)
			b.WriteString(theme.HelpStyle.Render(meta))
			b.WriteString("\n\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render(m.hints(events)))

	return theme.PanelStyle.Width(m.panelWidth()).Render(b.String())
}

// hints composes the action hints; mark-read is omitted when the
// selected row is already read, and the bulk actions only show for a
// non-empty feed.
func (m Model) hints(events []model.Event) string {
	parts := []string{"esc close"}

	if len(events) > 0 {
		if m.selectedIdx < len(events) && !events[m.selectedIdx].IsRead {
			parts = append(parts, "m mark read")
		}
		parts = append(parts, "d remove", "M mark all read", "C clear all")
	}

	return strings.Join(parts, " | ")
}

func (m Model) panelWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 72 {
		w = 72
	}
	return w
}
