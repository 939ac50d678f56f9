package chart

import (
	"math"
	"sort"
)

// Segment is one pie slice
type Segment struct {
	Label   string
	Value   float64
	Percent int // rounded share; all segments sum to 100 when the total is positive
	Color   string
}

// PieSegments turns the first series of p into labelled slices, one per row.
// Percentages are rounded with the largest remainder method so that they
// always add up to exactly 100. Negative values count as zero.
func PieSegments(p *Payload) []Segment {
	if p == nil || len(p.Rows) == 0 {
		return nil
	}

	colors := Palette(len(p.Rows))
	segments := make([]Segment, len(p.Rows))
	var peak float64
	for i, r := range p.Rows {
		v := 0.0
		if len(r.Values) > 0 && r.Values[0] > 0 && !math.IsInf(r.Values[0], 1) {
			v = r.Values[0]
		}
		segments[i] = Segment{Label: r.Category, Value: v, Color: colors[i]}
		peak = math.Max(peak, v)
	}
	if peak <= 0 {
		return segments
	}

	// Shares are summed relative to the largest slice so the total stays finite.
	var total float64
	for _, s := range segments {
		total += s.Value / peak
	}

	type remainder struct {
		index int
		frac  float64
	}
	rems := make([]remainder, len(segments))
	assigned := 0
	for i := range segments {
		exact := segments[i].Value / peak / total * 100
		floor := math.Floor(exact)
		segments[i].Percent = int(floor)
		assigned += int(floor)
		rems[i] = remainder{index: i, frac: exact - floor}
	}

	sort.SliceStable(rems, func(a, b int) bool {
		return rems[a].frac > rems[b].frac
	})
	for i := 0; assigned < 100 && i < len(rems); i++ {
		segments[rems[i].index].Percent++
		assigned++
	}

	return segments
}
