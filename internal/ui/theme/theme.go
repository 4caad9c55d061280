// Package theme provides the semantic color palettes for the dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Palette is the set of semantic colors every view draws with.
type Palette struct {
	Primary   lipgloss.AdaptiveColor // focused borders, header
	Secondary lipgloss.AdaptiveColor // field labels
	Accent    lipgloss.AdaptiveColor // issue keys

	Error   lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Success lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	Text      lipgloss.AdaptiveColor
	TextMuted lipgloss.AdaptiveColor

	Background lipgloss.AdaptiveColor
	Selected   lipgloss.AdaptiveColor // selected card or row

	Border        lipgloss.AdaptiveColor
	BorderFocused lipgloss.AdaptiveColor

	// Column header colors, in board order.
	ToDo       lipgloss.AdaptiveColor
	InProgress lipgloss.AdaptiveColor
	Done       lipgloss.AdaptiveColor
}

func c(dark, light string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Dark: dark, Light: light}
}

func init() {
	Register("tokyonight", Palette{
		Primary: c("#82aaff", "#2e7de9"), Secondary: c("#c099ff", "#9854f1"), Accent: c("#ff966c", "#b15c00"),
		Error: c("#ff757f", "#f52a65"), Warning: c("#ffc777", "#8c6c3e"), Success: c("#c3e88d", "#587539"), Info: c("#7dcfff", "#0db9d7"),
		Text: c("#c8d3f5", "#3760bf"), TextMuted: c("#636da6", "#848cb5"),
		Background: c("#222436", "#e1e2e7"), Selected: c("#2f334d", "#c8c9ce"),
		Border: c("#3b4261", "#a8aecb"), BorderFocused: c("#82aaff", "#2e7de9"),
		ToDo: c("#7dcfff", "#0db9d7"), InProgress: c("#ffc777", "#8c6c3e"), Done: c("#c3e88d", "#587539"),
	})
	Register("gruvbox", Palette{
		Primary: c("#83a598", "#076678"), Secondary: c("#d3869b", "#8f3f71"), Accent: c("#fabd2f", "#b57614"),
		Error: c("#fb4934", "#9d0006"), Warning: c("#fe8019", "#af3a03"), Success: c("#b8bb26", "#79740e"), Info: c("#83a598", "#076678"),
		Text: c("#ebdbb2", "#3c3836"), TextMuted: c("#a89984", "#7c6f64"),
		Background: c("#282828", "#fbf1c7"), Selected: c("#504945", "#ebdbb2"),
		Border: c("#504945", "#bdae93"), BorderFocused: c("#83a598", "#076678"),
		ToDo: c("#83a598", "#076678"), InProgress: c("#fabd2f", "#b57614"), Done: c("#b8bb26", "#79740e"),
	})
	Register("catppuccin", Palette{
		Primary: c("#89b4fa", "#1e66f5"), Secondary: c("#cba6f7", "#8839ef"), Accent: c("#fab387", "#fe640b"),
		Error: c("#f38ba8", "#d20f39"), Warning: c("#f9e2af", "#df8e1d"), Success: c("#a6e3a1", "#40a02b"), Info: c("#89dceb", "#04a5e5"),
		Text: c("#cdd6f4", "#4c4f69"), TextMuted: c("#6c7086", "#9ca0b0"),
		Background: c("#1e1e2e", "#eff1f5"), Selected: c("#313244", "#e6e9ef"),
		Border: c("#45475a", "#ccd0da"), BorderFocused: c("#89b4fa", "#1e66f5"),
		ToDo: c("#89dceb", "#04a5e5"), InProgress: c("#f9e2af", "#df8e1d"), Done: c("#a6e3a1", "#40a02b"),
	})
	Register("dracula", Palette{
		Primary: c("#bd93f9", "#7e57c2"), Secondary: c("#ff79c6", "#c2185b"), Accent: c("#ffb86c", "#e65100"),
		Error: c("#ff5555", "#d32f2f"), Warning: c("#f1fa8c", "#f9a825"), Success: c("#50fa7b", "#2e7d32"), Info: c("#8be9fd", "#0097a7"),
		Text: c("#f8f8f2", "#282a36"), TextMuted: c("#6272a4", "#6272a4"),
		Background: c("#282a36", "#f8f8f2"), Selected: c("#44475a", "#e0e0e0"),
		Border: c("#44475a", "#bdbdbd"), BorderFocused: c("#bd93f9", "#7e57c2"),
		ToDo: c("#8be9fd", "#0097a7"), InProgress: c("#f1fa8c", "#f9a825"), Done: c("#50fa7b", "#2e7d32"),
	})
}
