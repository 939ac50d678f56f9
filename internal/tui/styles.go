// Package tui provides the terminal chat view for tarschat.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/evolvenxt/tarschat/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	datasetStyle  lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle    lipgloss.Style
	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style

	buttonStyle        lipgloss.Style
	buttonFocusedStyle lipgloss.Style
	buttonRowStyle     lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	noticeStyle     lipgloss.Style
	errorStyle      lipgloss.Style

	selectorBoxStyle      lipgloss.Style
	selectorTitleStyle    lipgloss.Style
	selectorItemStyle     lipgloss.Style
	selectorSelectedStyle lipgloss.Style
	selectorCursorStyle   lipgloss.Style
	selectorActiveStyle   lipgloss.Style
)

// Gradient colors for the waiting animation (fixed colors)
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"),
	lipgloss.Color("#feca57"),
	lipgloss.Color("#48dbfb"),
	lipgloss.Color("#ff9ff3"),
	lipgloss.Color("#54a0ff"),
	lipgloss.Color("#5f27cd"),
	lipgloss.Color("#00d2d3"),
	lipgloss.Color("#1dd1a1"),
}

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles from the active TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	datasetStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(1)

	userBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorSecondary).
		Padding(0, 1).
		MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true).
		MarginLeft(4)

	assistantBubbleStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(0, 1)

	assistantLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	buttonStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Foreground(colorText).
		Padding(0, 1).
		MarginRight(1)

	buttonFocusedStyle = buttonStyle.
		BorderForeground(colorAccent).
		Foreground(colorAccent).
		Bold(true)

	buttonRowStyle = lipgloss.NewStyle().
		MarginLeft(1)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	noticeStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	selectorBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Background(colorSurface).
		Padding(1, 2)

	selectorTitleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	selectorItemStyle = lipgloss.NewStyle().
		Foreground(colorText)

	selectorSelectedStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	selectorCursorStyle = lipgloss.NewStyle().
		Foreground(colorAccent)

	selectorActiveStyle = lipgloss.NewStyle().
		Foreground(colorWarning)
}
