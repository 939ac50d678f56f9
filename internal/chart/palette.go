package chart

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette splits the hue wheel evenly across n series and returns hex colors.
// The same n always yields the same colors.
func Palette(n int) []string {
	if n <= 0 {
		return nil
	}
	colors := make([]string, n)
	for i := 0; i < n; i++ {
		hue := 360 * float64(i) / float64(n)
		colors[i] = colorful.Hsl(hue, 0.65, 0.55).Hex()
	}
	return colors
}

func paletteColors(n int) []lipgloss.Color {
	hex := Palette(n)
	colors := make([]lipgloss.Color, len(hex))
	for i, h := range hex {
		colors[i] = lipgloss.Color(h)
	}
	return colors
}
