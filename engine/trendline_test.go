package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesRows(values ...float64) []Row {
	rows := make([]Row, len(values))
	for i, v := range values {
		rows[i] = Row{"region": string(rune('a' + i)), "revenue": v}
	}
	return rows
}

func trendConfig(tls ...Trendline) ChartConfig {
	return ChartConfig{
		Axis:       AxisAssignment{X: "region", Y: []string{"revenue"}},
		Trendlines: tls,
	}
}

func TestLinearTrendline(t *testing.T) {
	out := configureT(t, ChartLine, seriesRows(1, 2, 3, 4),
		trendConfig(Trendline{Type: TrendLinear, ColumnID: "revenue"}))

	require.Len(t, out.Data.Datasets, 2)
	tl := out.Data.Datasets[1]
	assert.Equal(t, "trendline_linear_regression_revenue", tl.ID)
	assert.True(t, tl.Trendline)
	assert.Equal(t, "line", tl.Type)
	assert.Equal(t, []float64{6, 4}, tl.BorderDash)
	assert.Equal(t, out.Data.Datasets[0].BorderColor, tl.BorderColor)
	require.Len(t, tl.Data, 4)
	for i, p := range tl.Data {
		assert.Equal(t, out.Data.Labels[i], p.X)
		assert.InDelta(t, float64(i+1), *p.Y, 1e-9)
	}
}

func TestPolynomialTrendline(t *testing.T) {
	out := configureT(t, ChartBar, seriesRows(0, 1, 4, 9, 16),
		trendConfig(Trendline{Type: TrendPolynomial, ColumnID: "revenue", PolynomialOrder: 2, LineColor: "#ff0000"}))

	require.Len(t, out.Data.Datasets, 2)
	tl := out.Data.Datasets[1]
	assert.Equal(t, "#ff0000", tl.BorderColor)
	for i, p := range tl.Data {
		assert.InDelta(t, float64(i*i), *p.Y, 1e-6)
	}
}

func TestConstantTrendlines(t *testing.T) {
	cases := map[TrendlineType]float64{
		TrendAverage: 2.5,
		TrendMedian:  2.5,
		TrendMin:     1,
		TrendMax:     4,
	}
	for typ, want := range cases {
		out := configureT(t, ChartLine, seriesRows(4, 1, 3, 2),
			trendConfig(Trendline{Type: typ, ColumnID: "revenue", TrendlineLabel: "Reference"}))

		require.Len(t, out.Data.Datasets, 2, "type %s", typ)
		tl := out.Data.Datasets[1]
		assert.Equal(t, "Reference", tl.Label)
		for _, p := range tl.Data {
			assert.InDelta(t, want, *p.Y, 1e-9, "type %s", typ)
		}
	}
}

func TestTrendlineSkipped(t *testing.T) {
	hidden := false
	out := configureT(t, ChartLine, seriesRows(1, 2, 3),
		trendConfig(Trendline{Type: TrendLinear, ColumnID: "revenue", Show: &hidden}))
	assert.Len(t, out.Data.Datasets, 1, "hidden trendlines are not built")

	out = configureT(t, ChartPie, seriesRows(1, 2, 3),
		trendConfig(Trendline{Type: TrendAverage, ColumnID: "revenue"}))
	assert.Len(t, out.Data.Datasets, 1, "pie charts never get trendlines")

	out = configureT(t, ChartLine, seriesRows(5),
		trendConfig(Trendline{Type: TrendLinear, ColumnID: "revenue"}))
	assert.Len(t, out.Data.Datasets, 1, "regression needs at least two points")
}

func TestTrendlineExcludedFromHeadline(t *testing.T) {
	cfg := trendConfig(Trendline{Type: TrendAverage, ColumnID: "revenue"})
	cfg.ShowLegendHeadline = HeadlineTotal

	out := configureT(t, ChartLine, seriesRows(1, 2, 3), cfg)

	h := out.Options.Plugins.Legend.Headline
	require.NotNil(t, h)
	require.Len(t, h.Values, 1)
	assert.Equal(t, "revenue", h.Values[0].DatasetID)
}

func TestTrendlineUnknownColumn(t *testing.T) {
	_, err := Configure(ChartLine, seriesRows(1, 2), salesColumns,
		trendConfig(Trendline{Type: TrendLinear, ColumnID: "profit"}))
	assert.Equal(t, "trendlines.columnId", configErrField(t, err))
}
