package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aclements/go-moremath/stats"
)

// ============================================================================
// OPTION BUILDERS — Scales, legend, headline, label styling
// ============================================================================
// Option builders run after the dataset builder and read the datasets it
// produced, so legend headlines always reflect the sampled, sorted points
// that are actually rendered. Label styling comes from the Theme argument;
// callers without a live theme pass FallbackTheme.
// ============================================================================

// OptionBuilder produces the options section for one chart type.
type OptionBuilder func(in *BuildInput, data ChartData, theme Theme) (ChartOptions, error)

// BuildBarOptions: category x, value y; stacked and horizontal variants.
func BuildBarOptions(in *BuildInput, data ChartData, theme Theme) (ChartOptions, error) {
	cfg := in.Config
	opts := baseOptions(in, data, theme)

	x := categoryScale(in, theme)
	y := valueScale(in, theme, cfg.YAxis, cfg.Axis.Y)
	if cfg.BarGroupType.Stacked() {
		x.Stacked = true
		y.Stacked = true
	}
	if cfg.BarGroupType == GroupPercentageStack {
		y.Max = floatPtr(100)
	}

	if cfg.BarLayout == LayoutHorizontal {
		opts.IndexAxis = "y"
		opts.Scales["x"] = y
		opts.Scales["y"] = x
		opts.Plugins.Annotation = goalLines(in, theme, "x")
		return opts, nil
	}
	opts.Scales["x"] = x
	opts.Scales["y"] = y
	opts.Plugins.Annotation = goalLines(in, theme, "y")
	return opts, nil
}

// BuildLineOptions: category or time x, value y.
func BuildLineOptions(in *BuildInput, data ChartData, theme Theme) (ChartOptions, error) {
	cfg := in.Config
	opts := baseOptions(in, data, theme)

	x := categoryScale(in, theme)
	y := valueScale(in, theme, cfg.YAxis, cfg.Axis.Y)
	if cfg.LineGroupType.Stacked() {
		y.Stacked = true
	}
	if cfg.LineGroupType == GroupPercentageStack {
		y.Max = floatPtr(100)
	}
	opts.Scales["x"] = x
	opts.Scales["y"] = y
	opts.Plugins.Annotation = goalLines(in, theme, "y")
	return opts, nil
}

// BuildPieOptions: no scales, legend shown unless disabled. Goal lines
// have no value axis to sit on and are skipped.
func BuildPieOptions(in *BuildInput, data ChartData, theme Theme) (ChartOptions, error) {
	opts := baseOptions(in, data, theme)
	if in.Config.ShowLegend == nil {
		opts.Plugins.Legend.Display = true
	}
	return opts, nil
}

// BuildScatterOptions: numeric or time x, value y.
func BuildScatterOptions(in *BuildInput, data ChartData, theme Theme) (ChartOptions, error) {
	cfg := in.Config
	opts := baseOptions(in, data, theme)

	x := categoryScale(in, theme)
	if x.Type != "time" {
		x.Type = string(ScaleLinear)
	}
	x.BeginAtZero = false
	opts.Scales["x"] = x
	opts.Scales["y"] = valueScale(in, theme, cfg.YAxis, cfg.Axis.Y)
	opts.Plugins.Annotation = goalLines(in, theme, "y")
	return opts, nil
}

// BuildComboOptions: shared x, left y and an optional right y2.
func BuildComboOptions(in *BuildInput, data ChartData, theme Theme) (ChartOptions, error) {
	cfg := in.Config
	opts := baseOptions(in, data, theme)

	x := categoryScale(in, theme)
	y := valueScale(in, theme, cfg.YAxis, cfg.Axis.Y)
	y.Position = "left"
	if cfg.BarGroupType.Stacked() {
		x.Stacked = true
		y.Stacked = true
	}
	opts.Scales["x"] = x
	opts.Scales["y"] = y

	if len(cfg.Axis.Y2) > 0 {
		y2 := valueScale(in, theme, cfg.Y2Axis, cfg.Axis.Y2)
		y2.Position = "right"
		y2.Grid.Display = false
		opts.Scales["y2"] = y2
	}
	opts.Plugins.Annotation = goalLines(in, theme, "y")
	return opts, nil
}

// ============================================================================
// SHARED PIECES
// ============================================================================

func baseOptions(in *BuildInput, data ChartData, theme Theme) ChartOptions {
	cfg := in.Config

	showLegend := len(data.Datasets) > 1
	if cfg.ShowLegend != nil {
		showLegend = *cfg.ShowLegend
	}

	opts := ChartOptions{
		Scales: map[string]Scale{},
		Plugins: Plugins{
			Legend:  Legend{Display: showLegend, Position: "top"},
			Tooltip: TooltipOptions{Enabled: !cfg.DisableTooltip},
			DataLabels: DataLabelStyle{
				BackgroundColor: theme.LabelBackground,
				BorderColor:     theme.LabelBorder,
				Color:           theme.LabelText,
				BorderWidth:     1,
				BorderRadius:    4,
				Padding:         4,
				FontSize:        theme.FontSize,
			},
		},
	}
	if cfg.ShowLegendHeadline != HeadlineOff {
		opts.Plugins.Legend.Headline = computeHeadline(cfg.ShowLegendHeadline, data.Datasets)
	}
	return opts
}

func gridFor(in *BuildInput, theme Theme) Grid {
	display := true
	if in.Config.GridLines != nil {
		display = *in.Config.GridLines
	}
	return Grid{Display: display, Color: theme.GridColor}
}

// categoryScale is the x axis: "time" for date columns, else "category".
func categoryScale(in *BuildInput, theme Theme) Scale {
	xMeta, _ := in.column(in.Config.Axis.X)
	typ := "category"
	var unit *TimeScale
	if xMeta.SimpleType == TypeDate {
		typ = "time"
		if iv := in.Config.XAxisConfig.TimeInterval; iv != "" {
			unit = &TimeScale{Unit: iv}
		}
	}
	title := in.Config.XAxisTitle
	if title == "" {
		title = xMeta.Label()
	}
	return Scale{
		Type:  typ,
		Time:  unit,
		Title: ScaleTitle{Display: title != "", Text: title, Color: theme.AxisText},
		Grid:  gridFor(in, theme),
	}
}

// valueScale is a linear or log value axis titled after its columns.
func valueScale(in *BuildInput, theme Theme, ax AxisScale, columns []string) Scale {
	typ := ScaleLinear
	if ax.ScaleType == ScaleLog {
		typ = ScaleLog
	}
	beginAtZero := typ == ScaleLinear
	if ax.StartAxisAtZero != nil && typ == ScaleLinear {
		beginAtZero = *ax.StartAxisAtZero
	}

	title := ax.Title
	if title == "" {
		labels := make([]string, 0, len(columns))
		for _, c := range columns {
			labels = append(labels, in.seriesLabel(c))
		}
		title = strings.Join(labels, ", ")
	}
	return Scale{
		Type:        string(typ),
		BeginAtZero: beginAtZero,
		Title:       ScaleTitle{Display: title != "", Text: title, Color: theme.AxisText},
		Grid:        gridFor(in, theme),
	}
}

// goalLines turns shown goal lines into dashed line annotations on the
// value axis. Nil when none are shown.
func goalLines(in *BuildInput, theme Theme, scaleID string) *Annotations {
	var lines []LineAnnotation
	for i, g := range in.Config.GoalLines {
		if !g.Show {
			continue
		}
		lines = append(lines, LineAnnotation{
			ID:          fmt.Sprintf("goal_line_%d", i),
			Type:        "line",
			ScaleID:     scaleID,
			Value:       g.Value,
			BorderColor: theme.AxisText,
			BorderWidth: 1.5,
			BorderDash:  []float64{6, 4},
			Label: AnnotationLabel{
				Display:         g.Label != "",
				Content:         g.Label,
				Color:           theme.LabelText,
				BackgroundColor: theme.LabelBackground,
			},
		})
	}
	if len(lines) == 0 {
		return nil
	}
	return &Annotations{Annotations: lines}
}

// ============================================================================
// LEGEND HEADLINE
// ============================================================================

// computeHeadline aggregates each non-trendline dataset's numeric y values.
func computeHeadline(mode HeadlineMode, datasets []Dataset) *Headline {
	h := &Headline{Mode: mode, Values: make([]HeadlineValue, 0, len(datasets))}
	for _, ds := range datasets {
		if ds.Trendline {
			continue
		}
		h.Values = append(h.Values, HeadlineValue{
			DatasetID: ds.ID,
			Label:     ds.Label,
			Value:     headlineValue(mode, numericY(ds.Data)),
		})
	}
	return h
}

func numericY(points []Point) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		if p.Y != nil {
			out = append(out, *p.Y)
		}
	}
	return out
}

// headlineValue returns nil for an empty series.
func headlineValue(mode HeadlineMode, ys []float64) *float64 {
	if len(ys) == 0 {
		return nil
	}
	switch mode {
	case HeadlineCurrent:
		return floatPtr(ys[len(ys)-1])
	case HeadlineAverage:
		return floatPtr(stats.Mean(ys))
	case HeadlineTotal:
		return floatPtr(stats.Sample{Xs: ys}.Sum())
	case HeadlineMedian:
		return floatPtr(median(ys))
	case HeadlineMin:
		lo, _ := stats.Bounds(ys)
		return floatPtr(lo)
	case HeadlineMax:
		_, hi := stats.Bounds(ys)
		return floatPtr(hi)
	}
	return nil
}

func median(ys []float64) float64 {
	sorted := make([]float64, len(ys))
	copy(sorted, ys)
	sort.Float64s(sorted)
	return stats.Sample{Xs: sorted, Sorted: true}.Quantile(0.5)
}
