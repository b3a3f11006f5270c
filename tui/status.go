package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing
// the world clock, location, danger, weather, and — while a
// clarification session is collecting answers — its progress.
func (m Model) renderStatusBar() string {
	ws := m.engine.State

	left := fmt.Sprintf(" Day %d, %s | %s (danger %d)",
		ws.Clock.Day, ws.Clock.Phase, ws.Location.Name, ws.Location.Danger)

	right := fmt.Sprintf("%s ", ws.Weather)
	if m.engine.Clarifying() {
		answered, total := m.engine.ClarifyProgress()
		right = fmt.Sprintf("clarifying %d/%d | %s", answered, total, right)
	}

	// Quest count fits in when the terminal is wide enough.
	if n := len(ws.Quests); n > 0 {
		candidate := fmt.Sprintf("quests: %d | %s", n, right)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
