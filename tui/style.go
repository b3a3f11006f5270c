package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarrative = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleClarify = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleEncounter = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleSuccess = lipgloss.NewStyle().
			Foreground(lipgloss.Color("40"))

	styleFailure = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarrative lineKind = iota
	kindClarify
	kindEncounter
	kindSuccess
	kindFailure
	kindSystem
	kindError
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[Encounter]"):
		return kindEncounter
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"),
		strings.HasPrefix(line, "[Clarified]"):
		return kindSystem
	case strings.HasSuffix(line, "?"):
		return kindClarify
	case strings.Contains(line, "check succeeds"):
		return kindSuccess
	case strings.Contains(line, "check fails"):
		return kindFailure
	default:
		return kindNarrative
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindClarify:
		return styleClarify.Render(line)
	case kindEncounter:
		return styleEncounter.Render(line)
	case kindSuccess:
		return styleSuccess.Render(line)
	case kindFailure:
		return styleFailure.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleNarrative.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}
