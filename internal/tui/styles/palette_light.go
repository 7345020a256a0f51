package styles

// LightTheme mirrors the site's light palette.
var LightTheme = Theme{
	Name: "light",
	Tokens: ThemeTokens{
		Background: "#FFFFFF",
		Panel:      "#F5F7FA",
		Text:       "#111B21",
		TextMuted:  "#667781",
		Border:     "#D1D7DB",
		Accent:     "#128C7E",
		Focus:      "#2F5BD3",
		Success:    "#1A7F37",
		Warning:    "#9A6700",
		Error:      "#CF222E",
		Info:       "#027EB5",
		BubbleIn:   "#FFFFFF",
		BubbleOut:  "#D9FDD3",
	},
}
