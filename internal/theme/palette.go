package theme

// Palette is the colour scheme a display uses for a theme class
type Palette struct {
	BackgroundTop    string `json:"background_top"`
	BackgroundBottom string `json:"background_bottom"`
	Card             string `json:"card"`
	Text             string `json:"text"`
	TextMuted        string `json:"text_muted"`
	Accent           string `json:"accent"`
}

// DefaultPalette is used for classes without a curated palette
var DefaultPalette = Palette{
	BackgroundTop:    "#4a90c8",
	BackgroundBottom: "#87ceeb",
	Card:             "rgba(255, 255, 255, 0.2)",
	Text:             "#ffffff",
	TextMuted:        "rgba(255, 255, 255, 0.75)",
	Accent:           "#ffd166",
}

var palettes = map[Class]Palette{
	ClassSunrise: {
		BackgroundTop:    "#ff9a8b",
		BackgroundBottom: "#ffd3a5",
		Card:             "rgba(255, 255, 255, 0.25)",
		Text:             "#3d2c29",
		TextMuted:        "#7a5a50",
		Accent:           "#ff6a3d",
	},
	ClassSunset: {
		BackgroundTop:    "#2e1f47",
		BackgroundBottom: "#f77062",
		Card:             "rgba(0, 0, 0, 0.2)",
		Text:             "#fff4e6",
		TextMuted:        "#f2c6b4",
		Accent:           "#fe5196",
	},
	ClassClearDay: DefaultPalette,
	ClassClearNight: {
		BackgroundTop:    "#0b1026",
		BackgroundBottom: "#2b3a67",
		Card:             "rgba(255, 255, 255, 0.08)",
		Text:             "#e8ecff",
		TextMuted:        "#9aa5ce",
		Accent:           "#c3cfe2",
	},
	ClassMidnight: {
		BackgroundTop:    "#000000",
		BackgroundBottom: "#141e30",
		Card:             "rgba(255, 255, 255, 0.05)",
		Text:             "#d6dcf5",
		TextMuted:        "#6f7aa3",
		Accent:           "#8e9eff",
	},
	ClassCloudy: {
		BackgroundTop:    "#757f9a",
		BackgroundBottom: "#d7dde8",
		Card:             "rgba(255, 255, 255, 0.25)",
		Text:             "#22262e",
		TextMuted:        "#4b5260",
		Accent:           "#5b6b8c",
	},
	ClassRain: {
		BackgroundTop:    "#3a4a5c",
		BackgroundBottom: "#6b7f95",
		Card:             "rgba(255, 255, 255, 0.12)",
		Text:             "#eef3f8",
		TextMuted:        "#b4c2d1",
		Accent:           "#7fb3e6",
	},
	ClassThunderstorm: {
		BackgroundTop:    "#141517",
		BackgroundBottom: "#3c3f58",
		Card:             "rgba(255, 255, 255, 0.08)",
		Text:             "#f1f1f6",
		TextMuted:        "#a3a6bd",
		Accent:           "#f9f871",
	},
	ClassSnow: {
		BackgroundTop:    "#bfd4e6",
		BackgroundBottom: "#f4f8fb",
		Card:             "rgba(255, 255, 255, 0.45)",
		Text:             "#243447",
		TextMuted:        "#5d7389",
		Accent:           "#4a7fb0",
	},
}

// PaletteFor returns the palette for a class, or DefaultPalette when none is defined
func PaletteFor(class Class) Palette {
	if p, ok := palettes[class]; ok {
		return p
	}
	return DefaultPalette
}
