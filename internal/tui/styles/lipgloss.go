package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ayrahq/ayra/internal/models"
)

// Styles contains lipgloss styles derived from theme tokens.
type Styles struct {
	Theme        Theme
	Title        lipgloss.Style
	Text         lipgloss.Style
	Muted        lipgloss.Style
	Accent       lipgloss.Style
	Panel        lipgloss.Style
	Border       lipgloss.Style
	Focus        lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Info         lipgloss.Style
	StatusIdle   lipgloss.Style
	StatusWork   lipgloss.Style
	StatusError  lipgloss.Style
	StatusPaused lipgloss.Style
	BubbleIn     lipgloss.Style
	BubbleOut    lipgloss.Style
	Typing       lipgloss.Style
}

// DefaultStyles builds styles for the default theme.
func DefaultStyles() Styles {
	return ForTheme(models.DefaultTheme)
}

// ForTheme builds styles for a stored theme. Unknown themes get the dark palette.
func ForTheme(theme models.Theme) Styles {
	palette, ok := Themes[theme]
	if !ok {
		palette = DarkTheme
	}
	return BuildStyles(palette)
}

// BuildStyles converts theme tokens into lipgloss styles.
func BuildStyles(theme Theme) Styles {
	tokens := theme.Tokens
	bubble := lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Padding(0, 1)

	return Styles{
		Theme:        theme,
		Title:        lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Bold(true),
		Text:         lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)),
		Muted:        lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)),
		Accent:       lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Accent)),
		Panel:        lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Text)).Background(lipgloss.Color(tokens.Panel)).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(tokens.Border)),
		Border:       lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Border)),
		Focus:        lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Focus)).Bold(true),
		Success:      lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Success)),
		Warning:      lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Warning)),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Error)),
		Info:         lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Info)),
		StatusIdle:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.TextMuted)),
		StatusWork:   lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Success)),
		StatusError:  lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Error)),
		StatusPaused: lipgloss.NewStyle().Foreground(lipgloss.Color(tokens.Warning)),
		BubbleIn:     bubble.Copy().Background(lipgloss.Color(tokens.BubbleIn)),
		BubbleOut:    bubble.Copy().Background(lipgloss.Color(tokens.BubbleOut)),
		Typing:       bubble.Copy().Background(lipgloss.Color(tokens.BubbleIn)).Foreground(lipgloss.Color(tokens.TextMuted)).Italic(true),
	}
}
