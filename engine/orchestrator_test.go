package engine

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// ORCHESTRATOR TESTS
// ============================================================================

func TestConfigureUnknownChartType(t *testing.T) {
	cfg := ChartConfig{Axis: AxisAssignment{X: "region", Y: []string{"revenue"}}}

	out, err := Configure("radar-unsupported", trendRows, salesColumns, cfg)

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "selectedChartType", ce.Field)
	assert.Equal(t, "radar-unsupported", ce.Value)
}

func TestConfigureFallsBackToConfigChartType(t *testing.T) {
	cfg := ChartConfig{
		ChartType: ChartPie,
		Axis:      AxisAssignment{X: "region", Y: []string{"revenue"}},
	}

	out, err := Configure("", trendRows, salesColumns, cfg)

	require.NoError(t, err)
	assert.Equal(t, ChartPie, out.Type)
}

func TestConfigureEveryChartTypeHasBothSections(t *testing.T) {
	rows := []Row{
		{"region": "a", "units": 1.0, "revenue": 2.0, "margin": 0.1},
		{"region": "b", "units": 2.0, "revenue": 3.0, "margin": 0.2},
	}
	for _, typ := range SupportedChartTypes() {
		cfg := ChartConfig{Axis: AxisAssignment{X: "region", Y: []string{"revenue"}}}
		if typ == ChartScatter {
			cfg.Axis.X = "units"
		}

		out, err := Configure(typ, rows, salesColumns, cfg)

		require.NoError(t, err, "type %s", typ)
		assert.Equal(t, typ, out.Type)
		assert.NotEmpty(t, out.Data.Datasets, "type %s", typ)
		assert.NotNil(t, out.Options.Scales, "type %s", typ)

		b, err := json.Marshal(out)
		require.NoError(t, err)
		var generic map[string]any
		require.NoError(t, json.Unmarshal(b, &generic))
		assert.Contains(t, generic, "data")
		assert.Contains(t, generic, "options")
	}
}

func TestConfigureIsIdempotentBelowThreshold(t *testing.T) {
	gaps := false
	cfg := ChartConfig{
		Axis:               AxisAssignment{X: "region", Y: []string{"revenue"}, Category: "channel"},
		BarSortBy:          []SortDirection{SortDesc, SortAsc},
		ShowLegendHeadline: HeadlineMedian,
		ColumnSettings:     map[string]ColumnSettingsOverride{"revenue": {MissingAsZero: &gaps}},
		Trendlines:         []Trendline{{Type: TrendLinear, ColumnID: "revenue"}},
	}
	rows := []Row{
		{"region": "a", "channel": "web", "revenue": 3.0},
		{"region": "b", "channel": "store", "revenue": 1.0},
		{"region": "c", "channel": "web", "revenue": nil},
		{"region": "a", "channel": "store", "revenue": 2.0},
	}

	first, err := Configure(ChartBar, rows, salesColumns, cfg)
	require.NoError(t, err)
	second, err := Configure(ChartBar, rows, salesColumns, cfg)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestConfigureValidatesDirectives(t *testing.T) {
	cfg := ChartConfig{
		Axis:               AxisAssignment{X: "region", Y: []string{"revenue"}},
		ShowLegendHeadline: "mode",
	}

	_, err := Configure(ChartLine, trendRows, salesColumns, cfg)

	assert.Equal(t, "showLegendHeadline", configErrField(t, err))
}

func TestConfigureSeededSamplingIsReproducible(t *testing.T) {
	rows := make([]Row, 300)
	for i := range rows {
		rows[i] = Row{"units": float64(i), "revenue": float64(i % 17)}
	}
	cfg := ChartConfig{Axis: AxisAssignment{X: "units", Y: []string{"revenue"}}}
	opts := []Option{WithSampleThreshold(30), WithSeedKey("query-7")}

	a, err := Configure(ChartScatter, rows, salesColumns, cfg, opts...)
	require.NoError(t, err)
	b, err := Configure(ChartScatter, rows, salesColumns, cfg, opts...)
	require.NoError(t, err)

	assert.Len(t, a.Data.Datasets[0].Data, 30)
	assert.Equal(t, a.Data.Datasets[0].Data, b.Data.Datasets[0].Data)
}

// ── Pipeline ─────────────────────────────────────────────────────────────

func TestPipelineMemoizes(t *testing.T) {
	p, err := NewPipeline(WithCacheSize(4))
	require.NoError(t, err)
	cfg := ChartConfig{Axis: AxisAssignment{X: "region", Y: []string{"revenue"}}}

	first, err := p.Configure(ChartBar, trendRows, salesColumns, cfg)
	require.NoError(t, err)
	second, err := p.Configure(ChartBar, trendRows, salesColumns, cfg)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, p.Len())

	// Structurally equal config built separately hits the same entry.
	again := ChartConfig{Axis: AxisAssignment{X: "region", Y: []string{"revenue"}}}
	third, err := p.Configure(ChartBar, trendRows, salesColumns, again)
	require.NoError(t, err)
	assert.Same(t, first, third)
}

func TestPipelineKeysOnInputs(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)
	cfg := ChartConfig{Axis: AxisAssignment{X: "region", Y: []string{"revenue"}}}

	bar, err := p.Configure(ChartBar, trendRows, salesColumns, cfg)
	require.NoError(t, err)
	line, err := p.Configure(ChartLine, trendRows, salesColumns, cfg)
	require.NoError(t, err)
	assert.NotSame(t, bar, line)

	sorted := cfg
	sorted.BarSortBy = []SortDirection{SortDesc}
	bySort, err := p.Configure(ChartBar, trendRows, salesColumns, sorted)
	require.NoError(t, err)
	assert.NotSame(t, bar, bySort)

	copied := append([]Row(nil), trendRows...)
	otherRows, err := p.Configure(ChartBar, copied, salesColumns, cfg)
	require.NoError(t, err)
	assert.NotSame(t, bar, otherRows, "a different rows slice is a different input")

	assert.Equal(t, 4, p.Len())
	p.Purge()
	assert.Equal(t, 0, p.Len())
}

func TestPipelineDoesNotCacheErrors(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)

	_, err = p.Configure("radar-unsupported", trendRows, salesColumns, ChartConfig{})

	require.Error(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestPipelineEvicts(t *testing.T) {
	p, err := NewPipeline(WithCacheSize(2))
	require.NoError(t, err)
	cfg := ChartConfig{Axis: AxisAssignment{X: "region", Y: []string{"revenue"}}}

	for _, typ := range []ChartType{ChartBar, ChartLine, ChartPie} {
		_, err := p.Configure(typ, trendRows, salesColumns, cfg)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, p.Len())
}
