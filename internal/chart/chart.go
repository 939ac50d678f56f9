// Package chart parses chart payloads embedded in assistant replies and draws
// them for the terminal.
//
// A payload is a JSON object:
//
//	{"text": "Revenue by quarter", "chart_type": "bar",
//	 "data": [{"period": "Q1", "revenue": 120, "cost": 80}, ...]}
//
// Each row maps a category key ("period" or "year") to one or more numeric
// series. Series keep the order in which they first appear in the rows.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"

	apierrors "github.com/evolvenxt/tarschat/internal/errors"
)

// Marker is the field whose presence flags serialized reply text as a chart.
const Marker = `"chart_type"`

// Kind selects the chart drawing
type Kind string

// Supported chart kinds
const (
	KindLine Kind = "line"
	KindBar  Kind = "bar"
	KindPie  Kind = "pie"
)

// categoryKeys are tried in order before falling back to the first
// non-numeric field of a row.
var categoryKeys = []string{"period", "year"}

// Row is one category with a value per series (aligned with Payload.Series)
type Row struct {
	Category string
	Values   []float64
}

// Payload is a parsed chart
type Payload struct {
	Text        string
	Kind        Kind
	CategoryKey string
	Series      []string
	Rows        []Row
}

// ParseKind maps a chart_type value to a Kind. Anything unrecognised is a line chart.
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindBar:
		return KindBar
	case KindPie:
		return KindPie
	default:
		return KindLine
	}
}

// LooksLikeChart reports whether content carries the chart marker convention.
func LooksLikeChart(content string) bool {
	trimmed := strings.TrimSpace(content)
	return strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, Marker)
}

// Parse decodes a serialized chart payload. Errors are *errors.ChartError.
func Parse(content string) (*Payload, error) {
	content = strings.TrimSpace(content)
	if !gjson.Valid(content) {
		return nil, apierrors.NewChartError("invalid JSON", nil)
	}
	return FromResult(gjson.Parse(content))
}

// FromResult decodes a chart payload that was already located inside a
// larger JSON document (the tagged response envelope).
func FromResult(root gjson.Result) (*Payload, error) {
	if !root.IsObject() {
		return nil, apierrors.NewChartError("payload is not an object", nil)
	}

	p := &Payload{
		Text: firstString(root, "text", "display_text", "response"),
		Kind: ParseKind(root.Get("chart_type").String()),
	}

	data := root.Get("data")
	if !data.Exists() {
		data = root.Get("rows")
	}
	if !data.IsArray() {
		return nil, apierrors.NewChartError("missing data rows", nil)
	}

	seriesIndex := make(map[string]int)
	var raw []map[string]float64

	for i, item := range data.Array() {
		if !item.IsObject() {
			return nil, apierrors.NewChartError(fmt.Sprintf("row %d is not an object", i), nil)
		}

		key := categoryKey(item)
		if key == "" {
			return nil, apierrors.NewChartError(fmt.Sprintf("row %d has no category", i), nil)
		}
		if p.CategoryKey == "" {
			p.CategoryKey = key
		}

		values := make(map[string]float64)
		var overflow string
		item.ForEach(func(k, v gjson.Result) bool {
			name := k.String()
			if name == key || v.Type != gjson.Number {
				return true
			}
			if f := v.Float(); math.IsInf(f, 0) || math.IsNaN(f) {
				overflow = name
				return false
			}
			if _, seen := seriesIndex[name]; !seen {
				seriesIndex[name] = len(p.Series)
				p.Series = append(p.Series, name)
			}
			values[name] = v.Float()
			return true
		})

		if overflow != "" {
			return nil, apierrors.NewChartError(fmt.Sprintf("row %d: %s is out of range", i, overflow), nil)
		}

		p.Rows = append(p.Rows, Row{Category: item.Get(gjson.Escape(key)).String()})
		raw = append(raw, values)
	}

	if len(p.Rows) == 0 {
		return nil, apierrors.NewChartError("no data rows", nil)
	}
	if len(p.Series) == 0 {
		return nil, apierrors.NewChartError("no numeric series", nil)
	}

	// Align values with the final series order; absent values are zero.
	for i := range p.Rows {
		p.Rows[i].Values = make([]float64, len(p.Series))
		for name, v := range raw[i] {
			p.Rows[i].Values[seriesIndex[name]] = v
		}
	}

	return p, nil
}

// Categories returns the category labels in row order
func (p *Payload) Categories() []string {
	labels := make([]string, len(p.Rows))
	for i, r := range p.Rows {
		labels[i] = r.Category
	}
	return labels
}

// SeriesValues returns one series' values in row order
func (p *Payload) SeriesValues(series int) []float64 {
	values := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		if series < len(r.Values) {
			values[i] = r.Values[series]
		}
	}
	return values
}

func categoryKey(row gjson.Result) string {
	for _, k := range categoryKeys {
		if row.Get(k).Exists() {
			return k
		}
	}
	var key string
	row.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.String {
			key = k.String()
			return false
		}
		return true
	})
	return key
}

func firstString(root gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := root.Get(k); v.Exists() {
			return v.String()
		}
	}
	return ""
}
