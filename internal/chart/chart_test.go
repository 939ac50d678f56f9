package chart

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/evolvenxt/tarschat/internal/errors"
)

const revenuePayload = `{"text":"Revenue by quarter","chart_type":"bar","data":[
	{"period":"Q1","revenue":120,"cost":80},
	{"period":"Q2","revenue":150,"cost":90},
	{"period":"Q3","cost":70,"revenue":130,"margin":60}
]}`

func TestLooksLikeChart(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    bool
	}{
		{"payload", revenuePayload, true},
		{"leading whitespace", "  \n" + revenuePayload, true},
		{"plain text", "Revenue was 120 in Q1", false},
		{"json without marker", `{"text":"hi"}`, false},
		{"marker inside prose", `The field "chart_type" selects the chart`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeChart(tt.content))
		})
	}
}

func TestParse_KeepsSeriesOrder(t *testing.T) {
	p, err := Parse(revenuePayload)
	require.NoError(t, err)

	assert.Equal(t, "Revenue by quarter", p.Text)
	assert.Equal(t, KindBar, p.Kind)
	assert.Equal(t, "period", p.CategoryKey)
	assert.Equal(t, []string{"revenue", "cost", "margin"}, p.Series)
	assert.Equal(t, []string{"Q1", "Q2", "Q3"}, p.Categories())

	// Values are aligned with series order even when row keys are shuffled
	assert.Equal(t, []float64{130, 70, 60}, p.Rows[2].Values)
	// Missing values are zero
	assert.Equal(t, []float64{120, 80, 0}, p.Rows[0].Values)
}

func TestParse_YearCategory(t *testing.T) {
	p, err := Parse(`{"chart_type":"line","data":[{"year":2022,"sales":10},{"year":2023,"sales":14}]}`)
	require.NoError(t, err)

	assert.Equal(t, KindLine, p.Kind)
	assert.Equal(t, "year", p.CategoryKey)
	assert.Equal(t, []string{"2022", "2023"}, p.Categories())
	assert.Equal(t, []string{"sales"}, p.Series)
}

func TestParse_FallbackCategory(t *testing.T) {
	p, err := Parse(`{"chart_type":"pie","data":[{"region":"EU","share":3},{"region":"US","share":1}]}`)
	require.NoError(t, err)

	assert.Equal(t, "region", p.CategoryKey)
	assert.Equal(t, []string{"EU", "US"}, p.Categories())
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindPie, ParseKind("PIE"))
	assert.Equal(t, KindBar, ParseKind(" bar "))
	assert.Equal(t, KindLine, ParseKind("line"))
	assert.Equal(t, KindLine, ParseKind("scatter"))
	assert.Equal(t, KindLine, ParseKind(""))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"chart_type":"pie","data":[{"period":"Q1"`},
		{"not an object", `[1,2,3]`},
		{"no data", `{"chart_type":"pie"}`},
		{"empty data", `{"chart_type":"pie","data":[]}`},
		{"row not object", `{"chart_type":"pie","data":[1]}`},
		{"no numbers", `{"chart_type":"pie","data":[{"period":"Q1","note":"n/a"}]}`},
		{"no category", `{"chart_type":"pie","data":[{"a":1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content)
			require.Error(t, err)
			assert.True(t, apierrors.IsChartError(err), "want ChartError, got %T", err)
		})
	}
}

func TestPieSegments_SumTo100(t *testing.T) {
	tests := []struct {
		name   string
		values string
	}{
		{"thirds", `[{"period":"a","v":1},{"period":"b","v":1},{"period":"c","v":1}]`},
		{"uneven", `[{"period":"a","v":2},{"period":"b","v":3},{"period":"c","v":7},{"period":"d","v":11}]`},
		{"single", `[{"period":"a","v":42}]`},
		{"sevenths", `[{"period":"a","v":1},{"period":"b","v":1},{"period":"c","v":1},{"period":"d","v":1},{"period":"e","v":1},{"period":"f","v":1},{"period":"g","v":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(`{"chart_type":"pie","data":` + tt.values + `}`)
			require.NoError(t, err)

			segments := PieSegments(p)
			require.Len(t, segments, len(p.Rows))

			sum := 0
			for i, s := range segments {
				assert.Equal(t, p.Rows[i].Category, s.Label)
				sum += s.Percent
			}
			assert.Equal(t, 100, sum)
		})
	}
}

func TestPieSegments_Rounding(t *testing.T) {
	p, err := Parse(`{"chart_type":"pie","data":[{"period":"a","v":1},{"period":"b","v":1},{"period":"c","v":1}]}`)
	require.NoError(t, err)

	segments := PieSegments(p)
	assert.Equal(t, 34, segments[0].Percent)
	assert.Equal(t, 33, segments[1].Percent)
	assert.Equal(t, 33, segments[2].Percent)
}

func TestPieSegments_ZeroTotal(t *testing.T) {
	p, err := Parse(`{"chart_type":"pie","data":[{"period":"a","v":0},{"period":"b","v":-4}]}`)
	require.NoError(t, err)

	for _, s := range PieSegments(p) {
		assert.Equal(t, 0, s.Percent)
	}
}

func TestPalette(t *testing.T) {
	assert.Nil(t, Palette(0))

	colors := Palette(4)
	require.Len(t, colors, 4)
	assert.Equal(t, colors, Palette(4), "palette must be deterministic")

	seen := map[string]bool{}
	for _, c := range colors {
		assert.True(t, strings.HasPrefix(c, "#") && len(c) == 7, "bad hex %q", c)
		seen[c] = true
	}
	assert.Len(t, seen, 4, "series colors must be distinct")
}

func TestRender(t *testing.T) {
	t.Run("pie shows percentages", func(t *testing.T) {
		p, err := Parse(`{"chart_type":"pie","data":[{"period":"Q1","v":1},{"period":"Q2","v":3}]}`)
		require.NoError(t, err)

		out := Render(p, 60)
		assert.Contains(t, out, "Q1")
		assert.Contains(t, out, "25%")
		assert.Contains(t, out, "75%")
	})

	t.Run("bar shows every series per category", func(t *testing.T) {
		p, err := Parse(revenuePayload)
		require.NoError(t, err)

		out := Render(p, 60)
		for _, want := range []string{"Q1", "Q2", "Q3", "revenue", "cost", "margin", "150"} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("line plots categories on the x axis", func(t *testing.T) {
		p, err := Parse(`{"chart_type":"line","data":[{"year":2021,"a":1,"b":4},{"year":2022,"a":3,"b":2}]}`)
		require.NoError(t, err)

		out := Render(p, 60)
		assert.Contains(t, out, "2021")
		assert.Contains(t, out, "2022")
		assert.Contains(t, out, "●")
		assert.Contains(t, out, "4")
	})

	t.Run("flat line", func(t *testing.T) {
		p, err := Parse(`{"chart_type":"line","data":[{"period":"a","v":5},{"period":"b","v":5}]}`)
		require.NoError(t, err)
		assert.NotEmpty(t, Render(p, 10))
	})

	t.Run("nil payload", func(t *testing.T) {
		assert.Empty(t, Render(nil, 80))
	})
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "120", FormatValue(120))
	assert.Equal(t, "-3", FormatValue(-3))
	assert.Equal(t, "1.50", FormatValue(1.5))
}

func TestParse_RejectsOutOfRangeNumbers(t *testing.T) {
	_, err := Parse(`{"chart_type":"bar","data":[{"period":"Q1","revenue":1e400}]}`)
	require.Error(t, err)
	assert.True(t, apierrors.IsChartError(err))
	assert.Contains(t, err.Error(), "revenue")
}

func TestRender_ExtremeValues(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"line at float limits", `{"chart_type":"line","data":[{"period":"Q1","v":1e308},{"period":"Q2","v":-1e308}]}`},
		{"bar at float limit", `{"chart_type":"bar","data":[{"period":"Q1","v":1.7e308},{"period":"Q2","v":-1.7e308}]}`},
		{"pie at float limit", `{"chart_type":"pie","data":[{"period":"A","v":1.7e308},{"period":"B","v":1.7e308},{"period":"C","v":1e308}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.payload)
			require.NoError(t, err)
			var out string
			assert.NotPanics(t, func() { out = Render(p, 80) })
			assert.NotEmpty(t, out)
		})
	}
}

func TestRender_NonFiniteValues(t *testing.T) {
	inf := math.Inf(1)
	for _, kind := range []Kind{KindLine, KindBar, KindPie} {
		p := &Payload{
			Kind:   kind,
			Series: []string{"v"},
			Rows: []Row{
				{Category: "Q1", Values: []float64{inf}},
				{Category: "Q2", Values: []float64{-inf}},
				{Category: "Q3", Values: []float64{math.NaN()}},
			},
		}
		assert.NotPanics(t, func() { Render(p, 80) }, "kind %v", kind)
	}
}

func TestPieSegments_HugeValuesSumTo100(t *testing.T) {
	p, err := Parse(`{"chart_type":"pie","data":[{"period":"A","v":1.7e308},{"period":"B","v":1.7e308},{"period":"C","v":1.7e308}]}`)
	require.NoError(t, err)

	sum := 0
	for _, s := range PieSegments(p) {
		sum += s.Percent
	}
	assert.Equal(t, 100, sum)
}
