package styles

// DarkTheme mirrors the site's dark palette.
var DarkTheme = Theme{
	Name: "dark",
	Tokens: ThemeTokens{
		Background: "#0B0F14",
		Panel:      "#121821",
		Text:       "#E6EDF3",
		TextMuted:  "#8B9AAE",
		Border:     "#223043",
		Accent:     "#25D366",
		Focus:      "#7AA2F7",
		Success:    "#3FB950",
		Warning:    "#D29922",
		Error:      "#F85149",
		Info:       "#53BDEB",
		BubbleIn:   "#1F2C34",
		BubbleOut:  "#005C4B",
	},
}
