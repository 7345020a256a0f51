package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/tui/styles"
)

// RenderPlaybackBadge renders a session state with icon and color.
func RenderPlaybackBadge(styleSet styles.Styles, state playback.State) string {
	icon, label, style := stateDescriptor(styleSet, state)
	return style.Render(fmt.Sprintf("%s %s", icon, label))
}

func stateDescriptor(styleSet styles.Styles, state playback.State) (string, string, lipgloss.Style) {
	switch state {
	case playback.StateRevealing:
		return ">", "Playing", styleSet.StatusWork
	case playback.StatePausing:
		return "~", "Looping", styleSet.StatusPaused
	case playback.StateFinished:
		return "OK", "Finished", styleSet.Success
	case playback.StateCancelled:
		return "-", "Stopped", styleSet.Muted
	default:
		return "-", "Idle", styleSet.StatusIdle
	}
}
