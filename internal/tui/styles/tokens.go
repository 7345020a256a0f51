package styles

import "github.com/ayrahq/ayra/internal/models"

// ThemeTokens defines the semantic color roles for the TUI.
type ThemeTokens struct {
	Background string
	Panel      string
	Text       string
	TextMuted  string
	Border     string
	Accent     string
	Focus      string
	Success    string
	Warning    string
	Error      string
	Info       string

	// BubbleIn and BubbleOut are the chat bubble backgrounds.
	BubbleIn  string
	BubbleOut string
}

// Theme bundles a palette with a name.
type Theme struct {
	Name   string
	Tokens ThemeTokens
}

// Themes lists available palettes by theme.
var Themes = map[models.Theme]Theme{
	models.ThemeDark:  DarkTheme,
	models.ThemeLight: LightTheme,
}
