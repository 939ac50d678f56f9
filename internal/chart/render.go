package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	minWidth   = 24
	lineHeight = 8
)

var (
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5"))
)

// Render draws p for a terminal that is width columns wide.
func Render(p *Payload, width int) string {
	if p == nil || len(p.Rows) == 0 || len(p.Series) == 0 {
		return ""
	}
	if width < minWidth {
		width = minWidth
	}

	switch p.Kind {
	case KindPie:
		return renderPie(p, width)
	case KindBar:
		return renderBar(p, width)
	default:
		return renderLine(p, width)
	}
}

func renderPie(p *Payload, width int) string {
	segments := PieSegments(p)
	labelWidth := 0
	for _, s := range segments {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
	}

	barWidth := max(width-labelWidth-10, 10)

	var sb strings.Builder
	for i, s := range segments {
		if i > 0 {
			sb.WriteString("\n")
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color))
		bar := strings.Repeat("█", clamp(s.Percent*barWidth/100, 0, barWidth))
		fmt.Fprintf(&sb, "%s %s %s %3d%%",
			style.Render("■"),
			labelStyle.Render(padRight(s.Label, labelWidth)),
			style.Render(bar),
			s.Percent,
		)
	}
	return sb.String()
}

func renderBar(p *Payload, width int) string {
	colors := paletteColors(len(p.Series))

	nameWidth := 0
	for _, name := range p.Series {
		nameWidth = max(nameWidth, lipgloss.Width(name))
	}

	var peak float64
	valueWidth := 0
	for _, r := range p.Rows {
		for _, v := range r.Values {
			peak = math.Max(peak, math.Abs(v))
			valueWidth = max(valueWidth, len(FormatValue(v)))
		}
	}

	barWidth := max(width-nameWidth-valueWidth-6, 8)

	var sb strings.Builder
	for i, r := range p.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(labelStyle.Bold(true).Render(r.Category))
		for s, v := range r.Values {
			n := 0
			if peak > 0 && v > 0 {
				n = clamp(int(math.Round(v/peak*float64(barWidth))), 0, barWidth)
			}
			style := lipgloss.NewStyle().Foreground(colors[s])
			fmt.Fprintf(&sb, "\n  %s %s %s",
				axisStyle.Render(padRight(p.Series[s], nameWidth)),
				style.Render(strings.Repeat("█", n)),
				FormatValue(v),
			)
		}
	}
	sb.WriteString("\n")
	sb.WriteString(legend(p.Series, colors))
	return sb.String()
}

type cell struct {
	ch    rune
	color int // index into the series palette; -1 for none
}

func renderLine(p *Payload, width int) string {
	colors := paletteColors(len(p.Series))

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range p.Rows {
		for _, v := range r.Values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	topLabel, bottomLabel := FormatValue(hi), FormatValue(lo)
	axisWidth := max(len(topLabel), len(bottomLabel))

	plotWidth := width - axisWidth - 2
	slot := 1
	for _, c := range p.Categories() {
		slot = max(slot, lipgloss.Width(c)+1)
	}
	slot = max(slot, 3)
	if slot*len(p.Rows) > plotWidth {
		slot = max(plotWidth/len(p.Rows), 1)
	}
	cols := slot * len(p.Rows)

	grid := make([][]cell, lineHeight)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{ch: ' ', color: -1}
		}
	}

	// Halved so that opposite extremes near the float64 limit do not overflow.
	span := hi/2 - lo/2
	rowFor := func(v float64) float64 {
		if span <= 0 {
			return float64(lineHeight / 2)
		}
		return (hi/2 - v/2) / span * float64(lineHeight-1)
	}
	gridRow := func(y float64) int {
		if math.IsNaN(y) {
			return lineHeight / 2
		}
		return clamp(int(math.Round(y)), 0, lineHeight-1)
	}

	for s := range p.Series {
		values := p.SeriesValues(s)
		for i, v := range values {
			x := i*slot + slot/2
			if i+1 < len(values) {
				nx := (i+1)*slot + slot/2
				for cx := x + 1; cx < nx; cx++ {
					t := float64(cx-x) / float64(nx-x)
					y := gridRow(rowFor(v) + t*(rowFor(values[i+1])-rowFor(v)))
					if grid[y][cx].ch == ' ' {
						grid[y][cx] = cell{ch: '·', color: s}
					}
				}
			}
			grid[gridRow(rowFor(v))][x] = cell{ch: '●', color: s}
		}
	}

	var sb strings.Builder
	for y, line := range grid {
		label := ""
		switch y {
		case 0:
			label = topLabel
		case lineHeight - 1:
			label = bottomLabel
		}
		sb.WriteString(axisStyle.Render(padLeft(label, axisWidth) + " │"))
		for _, c := range line {
			if c.color < 0 {
				sb.WriteRune(c.ch)
				continue
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(colors[c.color]).Render(string(c.ch)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(axisStyle.Render(strings.Repeat(" ", axisWidth) + " └" + strings.Repeat("─", cols)))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", axisWidth+2))
	for _, c := range p.Categories() {
		sb.WriteString(labelStyle.Render(center(truncate(c, slot-1), slot)))
	}
	sb.WriteString("\n")
	sb.WriteString(legend(p.Series, colors))
	return sb.String()
}

func legend(series []string, colors []lipgloss.Color) string {
	items := make([]string, len(series))
	for i, name := range series {
		items[i] = lipgloss.NewStyle().Foreground(colors[i]).Render("●") + " " + labelStyle.Render(name)
	}
	return strings.Join(items, "  ")
}

// FormatValue prints whole numbers without decimals and others with two.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

func center(s string, width int) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
