package cli

import (
	"fmt"
	"strings"

	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
)

func formatPlaybackState(state playback.State) string {
	label, color := statusLabelForPlayback(state)
	return colorize(formatStatusLabel(label, state.String()), color)
}

func formatTheme(theme models.Theme) string {
	if theme.IsDark() {
		return colorize(string(theme), colorCyan)
	}
	return colorize(string(theme), colorYellow)
}

func statusLabelForPlayback(state playback.State) (string, string) {
	switch state {
	case playback.StateRevealing:
		return "BUSY", colorCyan
	case playback.StatePausing:
		return "WAIT", colorYellow
	case playback.StateFinished:
		return "OK", colorGreen
	case playback.StateCancelled:
		return "WARN", colorMagenta
	default:
		return "WARN", colorYellow
	}
}

func formatStatusLabel(label, status string) string {
	normalized := strings.TrimSpace(status)
	if normalized != "" {
		normalized = strings.ReplaceAll(normalized, "_", " ")
	}
	if normalized == "" {
		return label
	}
	return fmt.Sprintf("%s %s", label, normalized)
}
