package render

import (
	"sort"

	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names shipped with glamour.
const (
	StyleDark       = styles.DarkStyle
	StyleLight      = styles.LightStyle
	StyleNoTTY      = styles.NoTTYStyle
	StyleTokyoNight = styles.TokyoNightStyle
)

// IsStandardStyle reports whether style names a glamour built-in style
// rather than a path to a style file.
func IsStandardStyle(style string) bool {
	_, ok := styles.DefaultStyles[style]
	return ok
}

// StyleNames returns the built-in markdown style names, sorted.
func StyleNames() []string {
	names := make([]string, 0, len(styles.DefaultStyles))
	for name := range styles.DefaultStyles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
