package models

import (
	"fmt"
	"strings"
)

// Theme is the display theme preference.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// DefaultTheme is used when no preference has been stored.
const DefaultTheme = ThemeDark

// ThemePreferenceKey is the fixed key the theme is stored under.
const ThemePreferenceKey = "ayra-theme"

// ParseTheme validates a theme name.
func ParseTheme(raw string) (Theme, error) {
	switch theme := Theme(strings.ToLower(strings.TrimSpace(raw))); theme {
	case ThemeDark, ThemeLight:
		return theme, nil
	default:
		return "", fmt.Errorf("unknown theme %q", raw)
	}
}

// Toggled returns the opposite theme.
func (t Theme) Toggled() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// IsDark reports whether the theme is dark. Unknown values count as dark.
func (t Theme) IsDark() bool {
	return t != ThemeLight
}
