package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeightAccountsForChrome(t *testing.T) {
	l := NewLayout(80, 24)
	assert.Equal(t, 22, l.ContentHeight())
	assert.Equal(t, 80, l.ContentWidth())
}

func TestContentHeightNeverNegative(t *testing.T) {
	l := NewLayout(80, 1)
	assert.Equal(t, 0, l.ContentHeight())
}

func TestHeaderSpansFullWidth(t *testing.T) {
	l := NewLayout(60, 24)

	header := l.RenderHeader("ProjectHub", "🔔")

	assert.Equal(t, 60, lipgloss.Width(header))
	assert.Contains(t, header, "ProjectHub")
	assert.Contains(t, header, "🔔")
}

func TestPlacePanelFillsContentArea(t *testing.T) {
	l := NewLayout(60, 24)

	placed := l.PlacePanel("panel")

	assert.Equal(t, 60, lipgloss.Width(placed))
	assert.Equal(t, 22, lipgloss.Height(placed))

	// Anchored right: the panel text sits at the end of the first line.
	firstLine := strings.Split(placed, "\n")[0]
	assert.True(t, strings.HasSuffix(strings.TrimRight(firstLine, " "), "panel"))
}
