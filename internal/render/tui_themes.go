package render

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color scheme of the chat view.
type TUITheme struct {
	Name        string
	Description string

	Background lipgloss.Color
	Surface    lipgloss.Color
	Border     lipgloss.Color

	// Primary colors the assistant label, Secondary the user label.
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// DefaultTUIThemeName is used when the configured theme is unknown.
const DefaultTUIThemeName = "tokyonight"

var tuiThemes = map[string]TUITheme{
	"tokyonight": {
		Name:        "tokyonight",
		Description: "Tokyo Night, dark with blue accents",
		Background:  "#1a1b26",
		Surface:     "#24283b",
		Border:      "#414868",
		Primary:     "#7aa2f7",
		Secondary:   "#9ece6a",
		Accent:      "#bb9af7",
		Warning:     "#e0af68",
		Error:       "#f7768e",
		Text:        "#c0caf5",
		TextDim:     "#565f89",
		TextMute:    "#3b4261",
	},
	"catppuccin": {
		Name:        "catppuccin",
		Description: "Catppuccin Mocha, warm pastels",
		Background:  "#1e1e2e",
		Surface:     "#313244",
		Border:      "#45475a",
		Primary:     "#89b4fa",
		Secondary:   "#a6e3a1",
		Accent:      "#cba6f7",
		Warning:     "#f9e2af",
		Error:       "#f38ba8",
		Text:        "#cdd6f4",
		TextDim:     "#6c7086",
		TextMute:    "#45475a",
	},
	"nord": {
		Name:        "nord",
		Description: "Nord, cool arctic tones",
		Background:  "#2e3440",
		Surface:     "#3b4252",
		Border:      "#4c566a",
		Primary:     "#88c0d0",
		Secondary:   "#a3be8c",
		Accent:      "#b48ead",
		Warning:     "#ebcb8b",
		Error:       "#bf616a",
		Text:        "#eceff4",
		TextDim:     "#7b88a1",
		TextMute:    "#4c566a",
	},
	"light": {
		Name:        "light",
		Description: "Light background for bright terminals",
		Background:  "#fafafa",
		Surface:     "#eeeeee",
		Border:      "#bdbdbd",
		Primary:     "#1565c0",
		Secondary:   "#2e7d32",
		Accent:      "#6a1b9a",
		Warning:     "#ef6c00",
		Error:       "#c62828",
		Text:        "#212121",
		TextDim:     "#757575",
		TextMute:    "#bdbdbd",
	},
}

var (
	themeMu         sync.RWMutex
	currentTUITheme = tuiThemes[DefaultTUIThemeName]
)

// GetTUITheme returns the active theme.
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme activates a theme by name and reports whether it exists.
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTUITheme = theme
	themeMu.Unlock()
	return true
}

func GetTUIThemeByName(name string) (TUITheme, bool) {
	theme, ok := tuiThemes[name]
	return theme, ok
}

// TUIThemeNames returns the theme names, sorted.
func TUIThemeNames() []string {
	names := make([]string, 0, len(tuiThemes))
	for name := range tuiThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
