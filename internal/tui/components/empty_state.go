// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/ayrahq/ayra/internal/tui/styles"
)

// EmptyState represents an empty state message with optional suggestions.
type EmptyState struct {
	// Icon is an optional icon to display (e.g., "💬", "🔍").
	Icon string
	// Title is the main empty state message.
	Title string
	// Subtitle is an optional secondary message.
	Subtitle string
	// Suggestions are actionable commands the user can run.
	Suggestions []Suggestion
}

// Suggestion represents a suggested command with description.
type Suggestion struct {
	// Command is the key or CLI command to run (e.g., "ayra scenarios list").
	Command string
	// Description explains what the command does.
	Description string
}

// Render renders the empty state with the given styles.
func (e EmptyState) Render(styleSet styles.Styles) string {
	var lines []string

	titleLine := e.Title
	if e.Icon != "" {
		titleLine = e.Icon + "  " + titleLine
	}
	lines = append(lines, styleSet.Muted.Render(titleLine))

	if e.Subtitle != "" {
		lines = append(lines, styleSet.Muted.Render(e.Subtitle))
	}

	if len(e.Suggestions) > 0 {
		lines = append(lines, "")
		lines = append(lines, styleSet.Text.Render("Try:"))
		for _, s := range e.Suggestions {
			cmdLine := fmt.Sprintf("  %s", styleSet.Accent.Render(s.Command))
			if s.Description != "" {
				cmdLine += styleSet.Muted.Render(fmt.Sprintf("  # %s", s.Description))
			}
			lines = append(lines, cmdLine)
		}
	}

	return strings.Join(lines, "\n")
}

// RenderCompact renders a compact single-line empty state.
func (e EmptyState) RenderCompact(styleSet styles.Styles) string {
	line := e.Title
	if e.Icon != "" {
		line = e.Icon + " " + line
	}
	if len(e.Suggestions) > 0 {
		line += fmt.Sprintf(" Try: %s", e.Suggestions[0].Command)
	}
	return styleSet.Muted.Render(line)
}

// EmptyChat is shown before the first reveal of a scenario.
func EmptyChat() EmptyState {
	return EmptyState{
		Icon:     "💬",
		Title:    "Waiting for the first message",
		Subtitle: "Messages appear as the scenario plays.",
		Suggestions: []Suggestion{
			{Command: "r", Description: "restart playback"},
		},
	}
}

// EmptyScenarios is shown when the catalog has nothing to play.
func EmptyScenarios() EmptyState {
	return EmptyState{
		Icon:     "📭",
		Title:    "No scenarios available",
		Subtitle: "Scenarios are YAML files in the scenarios directory.",
		Suggestions: []Suggestion{
			{Command: "ayra init", Description: "write the default config and scenarios"},
			{Command: "ayra scenarios list", Description: "check what was loaded"},
		},
	}
}

// EmptyScenarioFiltered is shown when a scenario name matches nothing.
func EmptyScenarioFiltered(name string) EmptyState {
	return EmptyState{
		Icon:     "🔍",
		Title:    fmt.Sprintf("No scenario named '%s'", name),
		Subtitle: "Pick a context with n/p and press enter.",
	}
}
