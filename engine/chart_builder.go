package engine

import (
	"github.com/rs/zerolog"
)

// ============================================================================
// CHART BUILDER — Shared input and styling for the per-type dataset builders
// ============================================================================
// Every dataset builder follows the same pipeline:
//   1. validate axis assignments against the column metadata
//   2. sample the rows with the shared threshold
//   3. apply its own deterministic transform (group, sort, fold)
//   4. map to backend points and resolve per-column style
// ============================================================================

// BuildInput is everything a dataset or option builder needs.
type BuildInput struct {
	Rows     []Row
	Columns  []ColumnMeta
	Config   ChartConfig
	Settings map[string]ColumnSettings
	Sampler  *Sampler
	Logger   zerolog.Logger

	index   map[string]ColumnMeta
	palette []string // theme palette, used when the config has no colors
}

// NewBuildInput merges column settings and resolves sampling from opts.
func NewBuildInput(rows []Row, columns []ColumnMeta, cfg ChartConfig, opts ...Option) *BuildInput {
	c := applyOptions(opts)
	return newBuildInput(rows, columns, cfg, c)
}

func newBuildInput(rows []Row, columns []ColumnMeta, cfg ChartConfig, c *config) *BuildInput {
	index := make(map[string]ColumnMeta, len(columns))
	for _, col := range columns {
		index[col.Name] = col
	}
	return &BuildInput{
		Rows:     rows,
		Columns:  columns,
		Config:   cfg,
		Settings: MergeColumnSettings(cfg.ColumnSettings, columns),
		Sampler:  c.sampler(),
		Logger:   c.Logger,
		index:    index,
		palette:  c.palette(),
	}
}

func (in *BuildInput) column(name string) (ColumnMeta, bool) {
	if name == "" {
		return ColumnMeta{}, false
	}
	if in.index == nil {
		in.index = make(map[string]ColumnMeta, len(in.Columns))
		for _, col := range in.Columns {
			in.index[col.Name] = col
		}
	}
	c, ok := in.index[name]
	return c, ok
}

func (in *BuildInput) settingsFor(column string) ColumnSettings {
	if s, ok := in.Settings[column]; ok {
		return s
	}
	return DefaultColumnSettings()
}

// seriesLabel prefers a user label, then the column display name.
func (in *BuildInput) seriesLabel(column string) string {
	if l := in.settingsFor(column).Label; l != "" {
		return l
	}
	if meta, ok := in.column(column); ok {
		return meta.Label()
	}
	return column
}

// color resolves a series colour: explicit column colour, then the chart
// palette, then the theme palette, then the default palette.
func (in *BuildInput) color(index int, column string) string {
	if column != "" {
		if c := in.settingsFor(column).Color; c != "" {
			return c
		}
	}
	palette := in.Config.Colors
	if len(palette) == 0 {
		palette = in.palette
	}
	if len(palette) == 0 {
		palette = defaultColors
	}
	return palette[index%len(palette)]
}

// seriesColor keeps an explicit column colour only for unsplit series, so
// category splits of one column stay distinguishable.
func (in *BuildInput) seriesColor(spec seriesSpec) string {
	if spec.split {
		return in.color(spec.index, "")
	}
	return in.color(spec.index, spec.column)
}

// sample applies the shared Sampler.
func (in *BuildInput) sample() []Row {
	if in.Sampler == nil {
		in.Sampler = NewSampler(DefaultSampleThreshold, 0)
	}
	out := in.Sampler.Sample(in.Rows)
	if len(out) != len(in.Rows) {
		in.Logger.Debug().
			Int("rows_in", len(in.Rows)).
			Int("rows_out", len(out)).
			Int("threshold", in.Sampler.Threshold()).
			Bool("seeded", in.Sampler.Seeded()).
			Msg("Sampled oversized result set")
	}
	return out
}

// ============================================================================
// AXIS VALIDATION
// ============================================================================

// validateAxes fails fast when a required role is unassigned or any assigned
// column is missing from the metadata.
func validateAxes(in *BuildInput, t ChartType) error {
	ax := in.Config.Axis
	if ax.X == "" {
		return newMissingAxis("axis.x", t)
	}
	if len(ax.Y) == 0 {
		return newMissingAxis("axis.y", t)
	}

	check := func(field string, names ...string) error {
		for _, n := range names {
			if n == "" {
				continue
			}
			if _, ok := in.column(n); !ok {
				return newMissingColumn(field, n)
			}
		}
		return nil
	}
	if err := check("axis.x", ax.X); err != nil {
		return err
	}
	if err := check("axis.y", ax.Y...); err != nil {
		return err
	}
	if err := check("axis.y2", ax.Y2...); err != nil {
		return err
	}
	if err := check("axis.category", ax.Category); err != nil {
		return err
	}
	if err := check("axis.size", ax.Size); err != nil {
		return err
	}
	if err := check("axis.tooltip", ax.Tooltip...); err != nil {
		return err
	}
	for _, tl := range in.Config.Trendlines {
		if err := check("trendlines.columnId", tl.ColumnID); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================================
// SERIES STYLING
// ============================================================================

func dataLabelsFor(s ColumnSettings) DatasetLabels {
	return DatasetLabels{
		Display:      s.ShowDataLabels,
		AsPercentage: s.ShowDataLabelsAsPercentage,
	}
}

func styleBar(ds *Dataset, s ColumnSettings, color string, group GroupType) {
	ds.Type = string(ChartBar)
	ds.BackgroundColor = color
	ds.BorderColor = color
	ds.BorderRadius = s.BarRoundness / 2
	ds.DataLabels = dataLabelsFor(s)
	if group.Stacked() {
		ds.Stack = "stack"
	}
}

func styleLine(ds *Dataset, s ColumnSettings, color string, group GroupType) {
	ds.Type = string(ChartLine)
	ds.BackgroundColor = color
	ds.BorderColor = color
	ds.BorderWidth = s.LineWidth
	ds.Fill = s.LineStyle == LineStyleArea
	ds.PointRadius = s.LineSymbolSize
	switch s.LineType {
	case LineTypeSmooth:
		ds.Tension = smoothTension
	case LineTypeStep:
		ds.Stepped = true
	}
	ds.DataLabels = dataLabelsFor(s)
	if group.Stacked() {
		ds.Stack = "stack"
	}
}

// styleDot renders a line series as unconnected points.
func styleDot(ds *Dataset, s ColumnSettings, color string) {
	styleLine(ds, s, color, GroupSideBySide)
	ds.ShowLine = boolPtr(false)
	ds.Fill = false
	ds.Tension = 0
	ds.Stepped = false
	ds.PointRadius = max(s.LineSymbolSize, minDotRadius)
}

// seriesDatasets maps an aggregation to one dataset per series with
// categorical points; style resolves the per-series look.
func seriesDatasets(in *BuildInput, agg *aggregation, style func(*Dataset, seriesSpec)) []Dataset {
	out := make([]Dataset, 0, len(agg.series))
	for s, spec := range agg.series {
		points := make([]Point, len(agg.labels))
		for p, label := range agg.labels {
			points[p] = Point{X: label, Y: agg.values[s][p]}
		}
		ds := Dataset{
			ID:     spec.id,
			Label:  spec.label,
			Column: spec.column,
			Data:   points,
		}
		style(&ds, spec)
		out = append(out, ds)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
