package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/projecthub/internal/theme"
)

// Heights of the fixed chrome rows.
const (
	headerHeight    = 1
	statusBarHeight = 1
)

// Layout computes where the header, content area, status bar, and the
// notification dropdown go for the current terminal size.
type Layout struct {
	Width  int
	Height int
}

// NewLayout creates a Layout for the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{Width: width, Height: height}
}

// ContentWidth returns the width available for the main content area.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content
// area, between the header and the status bar.
func (l Layout) ContentHeight() int {
	h := l.Height - headerHeight - statusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the top bar: title on the left, the
// notification bell pinned to the right edge.
func (l Layout) RenderHeader(title, bell string) string {
	left := theme.HeaderStyle.Render(title)
	right := theme.HeaderStyle.Render(bell)

	middle := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if middle < 0 {
		middle = 0
	}
	spacer := lipgloss.NewStyle().
		Width(middle).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, spacer, right)
}

// RenderStatusBar renders the bottom bar with keyboard hints,
// stretched across the full width.
func (l Layout) RenderStatusBar(hints string) string {
	return theme.StatusBarStyle.Width(l.Width).Render(hints)
}

// PlacePanel positions the notification dropdown in the content area,
// anchored to the top right under the bell it belongs to.
func (l Layout) PlacePanel(panel string) string {
	return lipgloss.Place(
		l.ContentWidth(), l.ContentHeight(),
		lipgloss.Right, lipgloss.Top,
		panel,
	)
}

// RenderWithFrame stacks the header, content area, and status bar
// into the full terminal view.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}
