package ui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Theme defines a color theme
type Theme struct {
	Name string

	// Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
	Text      lipgloss.Color
	Subtext   lipgloss.Color
	Overlay   lipgloss.Color
	Surface   lipgloss.Color
	Base      lipgloss.Color

	// Role colors
	UserRole      lipgloss.Color
	AssistantRole lipgloss.Color

	// Glamour style for the preview pane
	Markdown string
}

// fromFlavor maps a Catppuccin flavor onto theme slots
func fromFlavor(name string, f catppuccin.Flavor, markdown string) Theme {
	c := func(col catppuccin.Color) lipgloss.Color { return lipgloss.Color(col.Hex) }
	return Theme{
		Name:          name,
		Primary:       c(f.Pink()),
		Secondary:     c(f.Sapphire()),
		Success:       c(f.Green()),
		Warning:       c(f.Peach()),
		Error:         c(f.Red()),
		Muted:         c(f.Overlay1()),
		Text:          c(f.Text()),
		Subtext:       c(f.Subtext1()),
		Overlay:       c(f.Overlay0()),
		Surface:       c(f.Surface0()),
		Base:          c(f.Base()),
		UserRole:      c(f.Peach()),
		AssistantRole: c(f.Lavender()),
		Markdown:      markdown,
	}
}

// Available themes
var Themes = map[string]Theme{
	"Catppuccin Mocha":     fromFlavor("Catppuccin Mocha", catppuccin.Mocha, "dark"),
	"Catppuccin Macchiato": fromFlavor("Catppuccin Macchiato", catppuccin.Macchiato, "dark"),
	"Catppuccin Frappe":    fromFlavor("Catppuccin Frappe", catppuccin.Frappe, "dark"),
	"Catppuccin Latte":     fromFlavor("Catppuccin Latte", catppuccin.Latte, "light"),
	"Dracula": {
		Name:          "Dracula",
		Primary:       lipgloss.Color("#ff79c6"), // pink
		Secondary:     lipgloss.Color("#8be9fd"), // cyan
		Success:       lipgloss.Color("#50fa7b"), // green
		Warning:       lipgloss.Color("#ffb86c"), // orange
		Error:         lipgloss.Color("#ff5555"), // red
		Muted:         lipgloss.Color("#6272a4"), // comment
		Text:          lipgloss.Color("#f8f8f2"), // foreground
		Subtext:       lipgloss.Color("#f8f8f2"),
		Overlay:       lipgloss.Color("#44475a"), // current line
		Surface:       lipgloss.Color("#44475a"),
		Base:          lipgloss.Color("#282a36"), // background
		UserRole:      lipgloss.Color("#ffb86c"), // orange
		AssistantRole: lipgloss.Color("#bd93f9"), // purple
		Markdown:      "dracula",
	},
	"Nord": {
		Name:          "Nord",
		Primary:       lipgloss.Color("#88c0d0"), // nord8
		Secondary:     lipgloss.Color("#81a1c1"), // nord9
		Success:       lipgloss.Color("#a3be8c"), // nord14
		Warning:       lipgloss.Color("#ebcb8b"), // nord13
		Error:         lipgloss.Color("#bf616a"), // nord11
		Muted:         lipgloss.Color("#4c566a"), // nord3
		Text:          lipgloss.Color("#eceff4"), // nord6
		Subtext:       lipgloss.Color("#e5e9f0"), // nord5
		Overlay:       lipgloss.Color("#434c5e"), // nord2
		Surface:       lipgloss.Color("#3b4252"), // nord1
		Base:          lipgloss.Color("#2e3440"), // nord0
		UserRole:      lipgloss.Color("#ebcb8b"), // nord13
		AssistantRole: lipgloss.Color("#b48ead"), // nord15
		Markdown:      "dark",
	},
	"Tokyo Night": {
		Name:          "Tokyo Night",
		Primary:       lipgloss.Color("#bb9af7"), // purple
		Secondary:     lipgloss.Color("#7dcfff"), // cyan
		Success:       lipgloss.Color("#9ece6a"), // green
		Warning:       lipgloss.Color("#e0af68"), // yellow
		Error:         lipgloss.Color("#f7768e"), // red
		Muted:         lipgloss.Color("#565f89"), // comment
		Text:          lipgloss.Color("#c0caf5"), // foreground
		Subtext:       lipgloss.Color("#a9b1d6"),
		Overlay:       lipgloss.Color("#414868"),
		Surface:       lipgloss.Color("#24283b"),
		Base:          lipgloss.Color("#1a1b26"), // background
		UserRole:      lipgloss.Color("#e0af68"), // yellow
		AssistantRole: lipgloss.Color("#7aa2f7"), // blue
		Markdown:      "tokyo-night",
	},
	"Gruvbox Dark": {
		Name:          "Gruvbox Dark",
		Primary:       lipgloss.Color("#d3869b"), // purple
		Secondary:     lipgloss.Color("#83a598"), // aqua
		Success:       lipgloss.Color("#b8bb26"), // green
		Warning:       lipgloss.Color("#fe8019"), // orange
		Error:         lipgloss.Color("#fb4934"), // red
		Muted:         lipgloss.Color("#928374"), // gray
		Text:          lipgloss.Color("#ebdbb2"), // fg
		Subtext:       lipgloss.Color("#d5c4a1"),
		Overlay:       lipgloss.Color("#504945"), // bg2
		Surface:       lipgloss.Color("#3c3836"), // bg1
		Base:          lipgloss.Color("#282828"), // bg
		UserRole:      lipgloss.Color("#fe8019"), // orange
		AssistantRole: lipgloss.Color("#83a598"), // aqua
		Markdown:      "dark",
	},
}

// ThemeNames returns theme names in display order
var ThemeNames = []string{
	"Catppuccin Mocha",
	"Catppuccin Macchiato",
	"Catppuccin Frappe",
	"Catppuccin Latte",
	"Dracula",
	"Nord",
	"Tokyo Night",
	"Gruvbox Dark",
}

// DefaultTheme is applied when no theme is configured
const DefaultTheme = "Catppuccin Mocha"

// Styles (updated by ApplyTheme)
var (
	titleStyle          lipgloss.Style
	panelStyle          lipgloss.Style
	activePanelStyle    lipgloss.Style
	tabStyle            lipgloss.Style
	activeTabStyle      lipgloss.Style
	itemStyle           lipgloss.Style
	selectedItemStyle   lipgloss.Style
	emptyItemStyle      lipgloss.Style
	countStyle          lipgloss.Style
	previewTitleStyle   lipgloss.Style
	previewMetaStyle    lipgloss.Style
	userRoleStyle       lipgloss.Style
	assistantRoleStyle  lipgloss.Style
	inputStyle          lipgloss.Style
	helpStyle           lipgloss.Style
	helpKeyStyle        lipgloss.Style
	dialogStyle         lipgloss.Style
	dangerDialogStyle   lipgloss.Style
	dialogTitleStyle    lipgloss.Style
	statusStyle         lipgloss.Style
	statusErrorStyle    lipgloss.Style
	searchPromptStyle   lipgloss.Style
	matchHighlightStyle lipgloss.Style
)

// CurrentTheme is the active theme
var CurrentTheme Theme

func init() {
	ApplyTheme(DefaultTheme)
}

// ApplyTheme applies a theme by name and reports the name actually used
func ApplyTheme(name string) string {
	theme, ok := Themes[name]
	if !ok {
		theme = Themes[DefaultTheme]
	}
	CurrentTheme = theme

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Muted).
		Padding(0, 1)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Base).
		Background(theme.Primary).
		Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
		Foreground(theme.Text)

	selectedItemStyle = lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	emptyItemStyle = lipgloss.NewStyle().
		Foreground(theme.Overlay).
		Italic(true)

	countStyle = lipgloss.NewStyle().
		Foreground(theme.Secondary)

	previewTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary)

	previewMetaStyle = lipgloss.NewStyle().
		Foreground(theme.Muted).
		Italic(true)

	userRoleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.UserRole)

	assistantRoleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.AssistantRole)

	inputStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
		Foreground(theme.Muted)

	helpKeyStyle = lipgloss.NewStyle().
		Foreground(theme.Secondary)

	dialogStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Padding(1, 2)

	dangerDialogStyle = dialogStyle.
		BorderForeground(theme.Error)

	dialogTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.Primary).
		MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
		Foreground(theme.Success)

	statusErrorStyle = lipgloss.NewStyle().
		Foreground(theme.Error).
		Bold(true)

	searchPromptStyle = lipgloss.NewStyle().
		Foreground(theme.Secondary)

	matchHighlightStyle = lipgloss.NewStyle().
		Foreground(theme.Warning).
		Bold(true)

	return theme.Name
}

// NextTheme returns the theme after name in display order
func NextTheme(name string) string {
	for i, n := range ThemeNames {
		if n == name {
			return ThemeNames[(i+1)%len(ThemeNames)]
		}
	}
	return ThemeNames[0]
}

// RoleStyle returns the style for a message role label
func RoleStyle(role string) lipgloss.Style {
	if role == "user" {
		return userRoleStyle
	}
	return assistantRoleStyle
}
